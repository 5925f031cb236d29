package rdb

import (
	"strconv"

	lzf "github.com/zhuyie/golzf"
)

// maxBlobLen bounds any single blob allocation (raw or LZF-decompressed).
// Spec §5: an implausibly large declared length must be rejected rather
// than trusted into an unbounded allocation.
const maxBlobLen = 512 << 20 // 512MiB

const (
	encInt8  = 0
	encInt16 = 1
	encInt32 = 2
	encLZF   = 3
)

// readBlob implements the blob decoder of spec §4.2: it consults the
// length/encoding prefix and either reads a raw byte run or materialises
// a packed integer/LZF encoding. The returned slice is only valid until
// the next read on the underlying reader.
func (r *byteReader) readBlob() ([]byte, error) {
	lp, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if !lp.isEncoded {
		if lp.length > maxBlobLen {
			return nil, malformed(r.offset, -1, "blob length %d exceeds implementation limit", lp.length)
		}
		return r.readN(int(lp.length))
	}
	switch lp.length {
	case encInt8:
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int8(b)))), nil
	case encInt16:
		v, err := r.readUint16LE()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int16(v)))), nil
	case encInt32:
		v, err := r.readUint32LE()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int32(v)))), nil
	case encLZF:
		return r.readLZFBlob()
	default:
		return nil, malformed(r.offset, int(lp.length), "unknown blob encoding value")
	}
}

// skipBlob consumes exactly the bytes readBlob would have consumed,
// without materialising the decoded value — used for filtered-out
// records (spec invariant 5: filtered-out keys still consume exactly the
// same number of bytes as if they had been emitted).
func (r *byteReader) skipBlob() error {
	lp, err := r.readLength()
	if err != nil {
		return err
	}
	if !lp.isEncoded {
		if lp.length > maxBlobLen {
			return malformed(r.offset, -1, "blob length %d exceeds implementation limit", lp.length)
		}
		_, err := r.readN(int(lp.length))
		return err
	}
	switch lp.length {
	case encInt8:
		_, err := r.readByte()
		return err
	case encInt16:
		_, err := r.readN(2)
		return err
	case encInt32:
		_, err := r.readN(4)
		return err
	case encLZF:
		cLen, err := r.readLen()
		if err != nil {
			return err
		}
		if _, err := r.readLen(); err != nil { // uLen, unused when skipping
			return err
		}
		_, err = r.readN(int(cLen))
		return err
	default:
		return malformed(r.offset, int(lp.length), "unknown blob encoding value")
	}
}

func (r *byteReader) readLZFBlob() ([]byte, error) {
	cLen, err := r.readLen()
	if err != nil {
		return nil, err
	}
	uLen, err := r.readLen()
	if err != nil {
		return nil, err
	}
	if uLen > maxBlobLen {
		return nil, malformed(r.offset, -1, "LZF uncompressed length %d exceeds implementation limit", uLen)
	}
	compressed, err := r.readN(int(cLen))
	if err != nil {
		return nil, err
	}
	dst := make([]byte, uLen)
	n, err := lzf.Decompress(compressed, dst)
	if err != nil {
		return nil, malformed(r.offset, -1, "LZF decompression failed: %v", err)
	}
	if uint64(n) != uLen {
		return nil, malformed(r.offset, -1, "LZF decompressed length mismatch: want %d, got %d", uLen, n)
	}
	return dst, nil
}
