package classfile

import (
	"bytes"
	"encoding/binary"
)

// byteWriter is a thin big-endian append buffer, in the same hand-rolled
// style as the teacher's binfile.Header (pkg/binfile/binfile.go): every
// multi-byte JVMS field is written with explicit width rather than relying
// on a generic struct encoder, since ClassFile's layout is bit-exact and
// length-prefixed in ways no reflection-based encoder models directly.
type byteWriter struct {
	buf bytes.Buffer
}

func (w *byteWriter) u1(v uint8) {
	w.buf.WriteByte(v)
}

func (w *byteWriter) u2(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *byteWriter) u4(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *byteWriter) u8(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *byteWriter) bytesRaw(b []byte) {
	w.buf.Write(b)
}

func (w *byteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *byteWriter) Len() int {
	return w.buf.Len()
}

// byteReader is the inverse cursor: sequential, bounds-checked big-endian
// reads over an in-memory class file.
type byteReader struct {
	b   []byte
	pos int
}

func newByteReader(b []byte) *byteReader {
	return &byteReader{b: b}
}

func (r *byteReader) u1() (uint8, error) {
	if r.pos+1 > len(r.b) {
		return 0, errTruncated
	}

	v := r.b[r.pos]
	r.pos++

	return v, nil
}

func (r *byteReader) u2() (uint16, error) {
	if r.pos+2 > len(r.b) {
		return 0, errTruncated
	}

	v := binary.BigEndian.Uint16(r.b[r.pos:])
	r.pos += 2

	return v, nil
}

func (r *byteReader) u4() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, errTruncated
	}

	v := binary.BigEndian.Uint32(r.b[r.pos:])
	r.pos += 4

	return v, nil
}

func (r *byteReader) u8() (uint64, error) {
	if r.pos+8 > len(r.b) {
		return 0, errTruncated
	}

	v := binary.BigEndian.Uint64(r.b[r.pos:])
	r.pos += 8

	return v, nil
}

func (r *byteReader) skip(n int) error {
	if r.pos+n > len(r.b) {
		return errTruncated
	}

	r.pos += n

	return nil
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, errTruncated
	}

	v := r.b[r.pos : r.pos+n]
	r.pos += n

	return v, nil
}

func (r *byteReader) remaining() int {
	return len(r.b) - r.pos
}
