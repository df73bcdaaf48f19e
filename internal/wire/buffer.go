// Package wire implements the fixed-width binary codec used for all
// payloads on the network. Values are written big-endian with no alignment
// padding and no embedded schema; reader and writer must agree on field
// order and types out of band.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf16"
)

var (
	// ErrUnderrun is returned when a read runs past the end of the buffer.
	ErrUnderrun = errors.New("wire: read past end of buffer")
	// ErrOverrun is returned when a length prefix claims more bytes than remain.
	ErrOverrun = errors.New("wire: declared length exceeds remaining bytes")
)

// Writer is an append-only encode buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty write buffer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded contents. The slice aliases the writer's
// internal buffer and is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *Writer) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteString writes a 4-byte byte count followed by the raw bytes.
// No terminator is appended.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteWString writes a 4-byte code-unit count followed by the UTF-16
// code units of s, each big-endian.
func (w *Writer) WriteWString(s string) {
	units := utf16.Encode([]rune(s))
	w.WriteUint32(uint32(len(units)))
	for _, u := range units {
		w.WriteUint16(u)
	}
}

// WriteBytes appends raw bytes with no length prefix. Used for payloads
// that were already encoded elsewhere.
func (w *Writer) WriteBytes(p []byte) {
	w.buf = append(w.buf, p...)
}

// Reader is a sequential cursor over an encoded buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a read cursor over data. The reader does not copy;
// data must not be mutated while reads are in progress.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Rest returns all unread bytes and advances the cursor to the end.
func (r *Reader) Rest() []byte {
	p := r.buf[r.off:]
	r.off = len(r.buf)
	return p
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrUnderrun
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	p, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadString reads a 4-byte byte count followed by that many raw bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if int(n) > r.Remaining() {
		return "", ErrOverrun
	}
	p, _ := r.take(int(n))
	return string(p), nil
}

// ReadWString reads a 4-byte code-unit count followed by UTF-16 code units.
func (r *Reader) ReadWString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if int(n)*2 > r.Remaining() {
		return "", ErrOverrun
	}
	units := make([]uint16, n)
	for i := range units {
		units[i], _ = r.ReadUint16()
	}
	return string(utf16.Decode(units)), nil
}

// ReadFixed reads exactly n raw bytes with no length prefix.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	p, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}
