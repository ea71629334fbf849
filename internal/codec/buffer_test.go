package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadBool(t *testing.T) {
	for _, v := range []bool{false, true} {
		w := NewWriter()
		w.WriteBool(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadBool()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestULEBRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 126, 127, 128, 129, 300, 16384, 1 << 31, (1 << 32) - 1}
	for _, n := range cases {
		w := NewWriter()
		w.WriteULEB(n)
		r := NewReader(w.Bytes())
		got, err := r.ReadULEB()
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestULEBConcreteEncodings(t *testing.T) {
	cases := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
	}
	for _, tc := range cases {
		w := NewWriter()
		w.WriteULEB(tc.in)
		assert.Equal(t, tc.want, w.Bytes())
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "abc", "hello world", "osu!"}
	for _, s := range cases {
		w := NewWriter()
		w.WriteString(s)
		r := NewReader(w.Bytes())
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStringConcreteEncodings(t *testing.T) {
	w := NewWriter()
	w.WriteString("abc")
	assert.Equal(t, []byte{0x0B, 0x03, 'a', 'b', 'c'}, w.Bytes())

	w = NewWriter()
	w.WriteString("")
	assert.Equal(t, []byte{0x00}, w.Bytes())
}

func TestStringStripsSentinelBytes(t *testing.T) {
	w := NewWriter()
	w.WriteU8(stringPresent)
	w.WriteULEB(5)
	w.buf = append(w.buf, 'a', 0x00, 'b', 0x0B, 'c')

	r := NewReader(w.Bytes())
	got, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestPacketFraming(t *testing.T) {
	w := NewWriter()
	w.WritePacket(5, func(w *Writer) {
		w.WriteI32(69)
	})
	assert.Equal(t, []byte{
		0x05, 0x00, // id = 5 LE
		0x00,                   // compression
		0x04, 0x00, 0x00, 0x00, // length = 4 LE
		0x45, 0x00, 0x00, 0x00, // payload: 69 as i32 LE
	}, w.Bytes())
}

func TestReadFramesOrderPreserved(t *testing.T) {
	w := NewWriter()
	w.WritePacket(1, func(w *Writer) { w.WriteString("a") })
	w.WritePacket(2, func(w *Writer) { w.WriteString("b") })
	w.WritePacket(3, func(w *Writer) { w.WriteString("c") })

	frames, err := ReadFrames(w.Bytes())
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i, id := range []int16{1, 2, 3} {
		assert.Equal(t, id, frames[i].ID)
	}
}

func TestReadFramesTrailingShortHeaderIsEndOfStream(t *testing.T) {
	w := NewWriter()
	w.WritePacket(4, func(*Writer) {})
	body := append(w.Bytes(), 0x01, 0x02, 0x03) // 3 trailing bytes, shorter than a header

	frames, err := ReadFrames(body)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, int16(4), frames[0].ID)
}

func TestReadFramesTruncatedPayloadIsMalformed(t *testing.T) {
	w := NewWriter()
	w.WritePacket(4, func(w *Writer) { w.WriteString("hello") })
	body := w.Bytes()[:len(w.Bytes())-2] // chop off the last 2 payload bytes

	_, err := ReadFrames(body)
	assert.Error(t, err)
}

func TestUnknownPacketSkipAdvancesExactly(t *testing.T) {
	w := NewWriter()
	w.WritePacket(99, func(w *Writer) { w.WriteU8(0xAA); w.WriteU8(0xBB) })
	w.WritePacket(63, func(w *Writer) { w.WriteString("#x") })

	frames, err := ReadFrames(w.Bytes())
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, int16(99), frames[0].ID)
	assert.Equal(t, int16(63), frames[1].ID)
}
