package rdb

import (
	"bufio"
	"encoding/binary"
	"io"
)

// byteReader wraps an io.Reader with exact-length reads, an offset counter
// for error reporting, and the handful of primitive decodes every layer
// above it needs. It never looks ahead further than bufio.Reader.Peek
// requires and never seeks.
type byteReader struct {
	r      *bufio.Reader
	offset int64
}

func newByteReader(r io.Reader) *byteReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &byteReader{r: br}
}

func (r *byteReader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, ioErr(r.offset, err)
	}
	r.offset++
	return b, nil
}

func (r *byteReader) peekByte() (byte, error) {
	buf, err := r.r.Peek(1)
	if err != nil {
		return 0, ioErr(r.offset, err)
	}
	return buf[0], nil
}

// readN reads exactly n bytes. The returned slice is only valid until the
// next call into the reader — callers that keep it must copy.
func (r *byteReader) readN(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, ioErr(r.offset, err)
	}
	r.offset += int64(n)
	return buf, nil
}

func (r *byteReader) readUint16LE() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) readUint32LE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) readUint32BE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) readUint64LE() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) readUint64BE() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *byteReader) readInt64LE() (int64, error) {
	u, err := r.readUint64LE()
	return int64(u), err
}

// lengthPrefix is the decoded (length, isEncoded) pair of spec §4.1.
type lengthPrefix struct {
	length    uint64
	isEncoded bool
}

// readLength decodes the 2-bit-tagged length/encoding prefix described in
// spec §4.1. The four top-bit cases are handled explicitly; no byte-order
// helper is shared across them on purpose — the 32/64-bit case is
// big-endian, everything else in this function is bit-packing, not an
// endianness decode at all.
func (r *byteReader) readLength() (lengthPrefix, error) {
	b, err := r.readByte()
	if err != nil {
		return lengthPrefix{}, err
	}
	switch b >> 6 {
	case 0: // RDB_6BITLEN
		return lengthPrefix{length: uint64(b & 0x3F)}, nil
	case 1: // RDB_14BITLEN
		c, err := r.readByte()
		if err != nil {
			return lengthPrefix{}, err
		}
		return lengthPrefix{length: (uint64(b&0x3F) << 8) | uint64(c)}, nil
	case 2:
		switch b {
		case 0x80:
			v, err := r.readUint32BE()
			if err != nil {
				return lengthPrefix{}, err
			}
			return lengthPrefix{length: uint64(v)}, nil
		case 0x81:
			v, err := r.readUint64BE()
			if err != nil {
				return lengthPrefix{}, err
			}
			return lengthPrefix{length: v}, nil
		default:
			return lengthPrefix{}, malformed(r.offset, int(b), "reserved 10-tagged length byte")
		}
	default: // 3, RDB_ENCVAL
		return lengthPrefix{length: uint64(b & 0x3F), isEncoded: true}, nil
	}
}

// readLen is a convenience for call sites that only ever expect a plain
// length (not an encoded value) — e.g. collection counts.
func (r *byteReader) readLen() (uint64, error) {
	lp, err := r.readLength()
	if err != nil {
		return 0, err
	}
	if lp.isEncoded {
		return 0, malformed(r.offset, -1, "expected a plain length, got an encoded-value prefix")
	}
	return lp.length, nil
}
