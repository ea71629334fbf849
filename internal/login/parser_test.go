package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConcreteScenario(t *testing.T) {
	body := "alice\naabbcc\n20230101.6|2|1|p:a:b:c:d|0\n"
	got, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, Data{
		Username:       "alice",
		PasswordMD5:    "aabbcc",
		ClientVersion:  "20230101.6",
		UTCOffset:      2,
		ShowCity:       1,
		PathMD5:        "p",
		AdaptersString: "a",
		AdaptersMD5:    "b",
		UninstallMD5:   "c",
		DiskSignature:  "d",
		AllowPMs:       0,
	}, got)
}

func TestParseMissingDelimiter(t *testing.T) {
	_, err := Parse([]byte("alice\naabbcc"))
	require.Error(t, err)
	var merr *ErrMalformed
	assert.ErrorAs(t, err, &merr)
}

func TestParseNonNumericField(t *testing.T) {
	_, err := Parse([]byte("alice\naabbcc\n20230101.6|not-a-number|1|p:a:b:c:d|0\n"))
	require.Error(t, err)
}

func TestParseNonUTF8(t *testing.T) {
	body := append([]byte("alice\naabbcc\n20230101.6|2|1|p:a:b:c:d|0\n"), 0xFF, 0xFE)
	_, err := Parse(body)
	require.Error(t, err)
}

func TestParseWrongHashCount(t *testing.T) {
	_, err := Parse([]byte("alice\naabbcc\n20230101.6|2|1|p:a:b:c|0\n"))
	require.Error(t, err)
}
