// Package codec implements the Bancho wire primitives: little-endian
// integers, ULEB128 lengths, tagged strings, and length-prefixed packet
// framing with a back-patched header.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// headerSize is the fixed size of a packet header: i16 id, u8 compression
// flag, u32 payload length.
const headerSize = 7

// stringEmpty and stringPresent are the tagged-string sentinel bytes.
const (
	stringEmpty   byte = 0x00
	stringPresent byte = 0x0B
)

// Writer accumulates an outgoing byte stream. It is the append-buffer half
// of the codec, used to build server→client packets.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Bytes returns the accumulated bytes. The slice is owned by the Writer;
// callers that need to retain it across further writes should copy it.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteI16(v int16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteI64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteULEB writes n as a ULEB128-encoded unsigned integer: seven payload
// bits per byte, MSB set on every byte but the last.
func (w *Writer) WriteULEB(n uint64) {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		w.buf = append(w.buf, b)
		if n == 0 {
			return
		}
	}
}

// WriteString writes a tagged string: the empty string encodes to a single
// 0x00 sentinel byte with no length or payload; any other string encodes
// as 0x0B, a ULEB length, then the raw UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.buf = append(w.buf, stringEmpty)
		return
	}
	w.buf = append(w.buf, stringPresent)
	w.WriteULEB(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// BeginPacket writes a placeholder 7-byte header for id and returns a token
// that must be passed to FinishPacket once the payload has been written.
// This is the "scoped write-with-header" strategy from the spec: the
// length field can't be known until the payload exists, so it is
// back-patched on scope exit.
func (w *Writer) BeginPacket(id int16) int {
	start := len(w.buf)
	w.WriteI16(id)
	w.WriteU8(0) // compression flag, always 0
	w.WriteU32(0)
	return start
}

// FinishPacket back-patches the length field of the packet started at
// start with the number of payload bytes written since BeginPacket.
func (w *Writer) FinishPacket(start int) {
	length := len(w.buf) - start - headerSize
	binary.LittleEndian.PutUint32(w.buf[start+3:start+7], uint32(length))
}

// WritePacket is a convenience wrapper: it begins a packet, runs fn to
// append the payload, and finishes the header. Most call sites prefer this
// over the raw Begin/Finish pair.
func (w *Writer) WritePacket(id int16, fn func(w *Writer)) {
	start := w.BeginPacket(id)
	fn(w)
	w.FinishPacket(start)
}

// Reader consumes bytes from a fixed byte slice. It is the cursor-buffer
// half of the codec, used to decode client→server packets and frames.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ErrShortBuffer is returned by any read that runs past the end of the
// underlying slice.
var ErrShortBuffer = fmt.Errorf("codec: short buffer")

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return ErrShortBuffer
	}
	return nil
}

func (r *Reader) ReadBool() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadI16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.LittleEndian.Uint16(r.buf[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadULEB reads a ULEB128-encoded unsigned integer using a uniform loop:
// accumulate seven bits per byte at shift 0, 7, 14, ... until a byte with
// the continuation bit clear. The degenerate single-byte case (value fits
// in seven bits) falls out of the same loop, not a special branch — the
// legacy reader this is replacing special-cased it and in doing so
// corrupted multi-byte values (see ReadString).
func (r *Reader) ReadULEB() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadString reads a tagged string per WriteString's format. \0 and \x0B
// bytes are stripped from the decoded result per the invariant that
// usernames and status text never carry them.
//
// The legacy reader this replaces read length+1 bytes and advanced only
// length, and its ULEB decoder discarded the first byte's low bits on
// multi-byte values. Neither bug is reproduced here: exactly length bytes
// are read and the cursor advances by exactly length.
func (r *Reader) ReadString() (string, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	if tag == stringEmpty {
		return "", nil
	}
	n, err := r.ReadULEB()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	raw := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b == 0x00 || b == 0x0B {
			continue
		}
		out = append(out, b)
	}
	return string(out), nil
}

// Skip advances the cursor by n bytes without interpreting them, used to
// discard the payload of an unrecognized packet id.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Frame is one decoded (id, payload) pair from an incoming packet stream.
type Frame struct {
	ID      int16
	Payload []byte
}

// ReadFrames decodes a back-to-back sequence of framed packets from body.
// Trailing bytes shorter than a header mark a clean end of stream; a
// header claiming more payload bytes than remain is a malformed stream.
//
// The legacy loop this replaces advanced its length counter by
// packet_length+1 per frame, which is wrong because the header is 7 bytes,
// not 1. This loop advances the cursor by exactly headerSize+payload_length
// per frame and stops as soon as fewer than headerSize bytes remain.
func ReadFrames(body []byte) ([]Frame, error) {
	r := NewReader(body)
	var frames []Frame
	for r.Remaining() >= headerSize {
		id, err := r.ReadI16()
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadU8(); err != nil { // compression flag, always 0
			return nil, err
		}
		length, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if err := r.need(int(length)); err != nil {
			return nil, fmt.Errorf("codec: frame id %d claims %d payload bytes, only %d remain", id, length, r.Remaining())
		}
		payload := r.buf[r.pos : r.pos+int(length)]
		r.pos += int(length)
		frames = append(frames, Frame{ID: id, Payload: payload})
	}
	return frames, nil
}
