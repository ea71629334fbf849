package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountryTableHas252Entries(t *testing.T) {
	require.Len(t, countryCodes, 252)
}

func TestCountryIndexKnownCode(t *testing.T) {
	require.Equal(t, uint8(1), CountryIndex("ad"))
	require.Equal(t, uint8(1), CountryIndex("AD"))
}

func TestCountryIndexUnknownCodeIsZero(t *testing.T) {
	require.Equal(t, uint8(0), CountryIndex("zz"))
}
