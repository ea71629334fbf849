package protocol

import (
	"testing"

	"bancho/server/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginReplyConcreteEncoding(t *testing.T) {
	w := codec.NewWriter()
	WriteLoginReply(w, 69)
	assert.Equal(t, []byte{
		0x05, 0x00,
		0x00,
		0x04, 0x00, 0x00, 0x00,
		0x45, 0x00, 0x00, 0x00,
	}, w.Bytes())
}

func TestChangeStatusRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteU8(1)
	w.WriteString("playing")
	w.WriteString("abc123")
	w.WriteU32(ModRelax)
	w.WriteU8(2)
	w.WriteI32(4567)

	r := codec.NewReader(w.Bytes())
	got, err := ReadChangeStatus(r)
	require.NoError(t, err)
	assert.Equal(t, ClientStatus{
		Status:          1,
		StatusText:      "playing",
		BeatmapChecksum: "abc123",
		CurrentMods:     ModRelax,
		PlayMode:        2,
		BeatmapID:       4567,
	}, got)
	assert.Zero(t, r.Remaining())
}

func TestChatMessageRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteString("sender")
	w.WriteString("hello there")
	w.WriteString("#osu")
	w.WriteI32(42)

	r := codec.NewReader(w.Bytes())
	got, err := ReadChatMessage(r)
	require.NoError(t, err)
	assert.Equal(t, BanchoMessage{
		SendingClient: "sender",
		Message:       "hello there",
		Target:        "#osu",
		SenderID:      42,
	}, got)
}

func TestUserPresenceEncode(t *testing.T) {
	w := codec.NewWriter()
	WriteUserPresence(w, BanchoPresence{
		PlayerID:    1,
		Username:    "alice",
		Timezone:    24,
		CountryCode: 38,
		PlayMode:    0,
		Longitude:   1.5,
		Latitude:    -2.5,
		PlayerRank:  100,
	})

	r := codec.NewReader(w.Bytes())
	id, err := r.ReadI16()
	require.NoError(t, err)
	assert.Equal(t, STOC_UserPresence, id)
	_, _ = r.ReadU8() // compression
	_, _ = r.ReadU32()
}
