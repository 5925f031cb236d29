package rdb

import (
	"math"
	"strconv"
)

// decodeValue implements the value-type dispatcher of spec §4.7: given an
// already-read encoding-type byte and key, it decodes the value and
// drives the emitter's start/element/end sequence for that shape.
func decodeValue(r *byteReader, e Emitter, key []byte, typeByte byte, expiry uint64) error {
	switch typeByte {
	case typeString:
		v, err := r.readBlob()
		if err != nil {
			return err
		}
		if err := e.Set(key, v, expiry); err != nil {
			return emitterErr(r.offset, err)
		}
		return nil

	case typeList:
		return decodeLinkedList(r, e, key, expiry)

	case typeSet:
		return decodeLinkedSet(r, e, key, expiry)

	case typeZSet:
		return decodeZSet(r, e, key, expiry, false)

	case typeZSet2:
		return decodeZSet(r, e, key, expiry, true)

	case typeHash:
		return decodeLinkedHash(r, e, key, expiry)

	case typeHashZipmap:
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		entries, err := parseZipmap(blob)
		if err != nil {
			return err
		}
		return emitHashPairs(e, key, expiry, EncodingZipmap, entries)

	case typeListZiplist:
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		entries, err := parseZiplist(blob)
		if err != nil {
			return err
		}
		return emitListElements(e, key, expiry, EncodingZiplist, entries)

	case typeSetIntset:
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		members, err := parseIntset(blob)
		if err != nil {
			return err
		}
		return emitSetElements(e, key, expiry, EncodingIntset, members)

	case typeZSetZiplist:
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		entries, err := parseZiplist(blob)
		if err != nil {
			return err
		}
		return emitZSetPairsText(r, e, key, expiry, EncodingZiplist, entries)

	case typeHashZiplist:
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		entries, err := parseZiplist(blob)
		if err != nil {
			return err
		}
		return emitHashPairs(e, key, expiry, EncodingZiplist, entries)

	case typeListQuicklist:
		return decodeQuicklist(r, e, key, expiry)

	case typeModule, typeModule2:
		return unsupported(r.offset, int(typeByte), "module-opaque values are not supported")

	default:
		return unsupported(r.offset, int(typeByte), "unrecognised encoding-type byte")
	}
}

func decodeLinkedList(r *byteReader, e Emitter, key []byte, expiry uint64) error {
	n, err := r.readLen()
	if err != nil {
		return err
	}
	if err := e.StartList(key, n, expiry, EncodingLinked); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := uint64(0); i < n; i++ {
		v, err := r.readBlob()
		if err != nil {
			return err
		}
		if err := e.ListElement(key, v); err != nil {
			return emitterErr(r.offset, err)
		}
	}
	if err := e.EndList(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

func decodeLinkedSet(r *byteReader, e Emitter, key []byte, expiry uint64) error {
	n, err := r.readLen()
	if err != nil {
		return err
	}
	if err := e.StartSet(key, n, expiry, EncodingLinked); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := uint64(0); i < n; i++ {
		v, err := r.readBlob()
		if err != nil {
			return err
		}
		if err := e.SetElement(key, v); err != nil {
			return emitterErr(r.offset, err)
		}
	}
	if err := e.EndSet(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

func decodeLinkedHash(r *byteReader, e Emitter, key []byte, expiry uint64) error {
	n, err := r.readLen()
	if err != nil {
		return err
	}
	if err := e.StartHash(key, n, expiry, EncodingLinked); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := uint64(0); i < n; i++ {
		field, err := r.readBlob()
		if err != nil {
			return err
		}
		value, err := r.readBlob()
		if err != nil {
			return err
		}
		if err := e.HashElement(key, field, value); err != nil {
			return emitterErr(r.offset, err)
		}
	}
	if err := e.EndHash(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

// decodeZSet handles both the old ASCII-text/sentinel score encoding
// (ZSET) and the binary 8-byte IEEE-754 score encoding (ZSET_2).
func decodeZSet(r *byteReader, e Emitter, key []byte, expiry uint64, binaryScore bool) error {
	n, err := r.readLen()
	if err != nil {
		return err
	}
	if err := e.StartSortedSet(key, n, expiry, EncodingLinked); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := uint64(0); i < n; i++ {
		member, err := r.readBlob()
		if err != nil {
			return err
		}
		var score float64
		if binaryScore {
			bits, err := r.readUint64LE()
			if err != nil {
				return err
			}
			score = math.Float64frombits(bits)
		} else {
			score, err = r.readTextScore()
			if err != nil {
				return err
			}
		}
		if err := e.SortedSetElement(key, score, member); err != nil {
			return emitterErr(r.offset, err)
		}
	}
	if err := e.EndSortedSet(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

// readTextScore decodes the old-format sorted-set score: a single length
// byte that is either a sentinel (253 NaN, 254 +inf, 255 -inf) or the
// length of an ASCII decimal float (spec §9 Open Question (a), resolved
// against the upstream format: 255 is -inf, not a record separator).
func (r *byteReader) readTextScore() (float64, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 253:
		return math.NaN(), nil
	case 254:
		return math.Inf(1), nil
	case 255:
		return math.Inf(-1), nil
	default:
		text, err := r.readN(int(b))
		if err != nil {
			return 0, err
		}
		v, perr := strconv.ParseFloat(string(text), 64)
		if perr != nil {
			return 0, malformed(r.offset, -1, "invalid sorted-set score text %q", text)
		}
		return v, nil
	}
}

func decodeQuicklist(r *byteReader, e Emitter, key []byte, expiry uint64) error {
	n, err := r.readLen()
	if err != nil {
		return err
	}
	if err := e.StartList(key, 0, expiry, EncodingQuicklist); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := uint64(0); i < n; i++ {
		blob, err := r.readBlob()
		if err != nil {
			return err
		}
		entries, err := parseZiplist(blob)
		if err != nil {
			return err
		}
		for _, v := range entries {
			if err := e.ListElement(key, v); err != nil {
				return emitterErr(r.offset, err)
			}
		}
	}
	if err := e.EndList(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

func emitListElements(e Emitter, key []byte, expiry uint64, enc Encoding, entries [][]byte) error {
	if err := e.StartList(key, uint64(len(entries)), expiry, enc); err != nil {
		return emitterErr(0, err)
	}
	for _, v := range entries {
		if err := e.ListElement(key, v); err != nil {
			return emitterErr(0, err)
		}
	}
	if err := e.EndList(key); err != nil {
		return emitterErr(0, err)
	}
	return nil
}

func emitSetElements(e Emitter, key []byte, expiry uint64, enc Encoding, members [][]byte) error {
	if err := e.StartSet(key, uint64(len(members)), expiry, enc); err != nil {
		return emitterErr(0, err)
	}
	for _, v := range members {
		if err := e.SetElement(key, v); err != nil {
			return emitterErr(0, err)
		}
	}
	if err := e.EndSet(key); err != nil {
		return emitterErr(0, err)
	}
	return nil
}

func emitHashPairs(e Emitter, key []byte, expiry uint64, enc Encoding, flat [][]byte) error {
	if err := e.StartHash(key, uint64(len(flat)/2), expiry, enc); err != nil {
		return emitterErr(0, err)
	}
	for i := 0; i+1 < len(flat); i += 2 {
		if err := e.HashElement(key, flat[i], flat[i+1]); err != nil {
			return emitterErr(0, err)
		}
	}
	if err := e.EndHash(key); err != nil {
		return emitterErr(0, err)
	}
	return nil
}

func emitZSetPairsText(r *byteReader, e Emitter, key []byte, expiry uint64, enc Encoding, flat [][]byte) error {
	if err := e.StartSortedSet(key, uint64(len(flat)/2), expiry, enc); err != nil {
		return emitterErr(r.offset, err)
	}
	for i := 0; i+1 < len(flat); i += 2 {
		member := flat[i]
		score, err := strconv.ParseFloat(string(flat[i+1]), 64)
		if err != nil {
			return malformed(r.offset, -1, "invalid sorted-set ziplist score text %q", flat[i+1])
		}
		if err := e.SortedSetElement(key, score, member); err != nil {
			return emitterErr(r.offset, err)
		}
	}
	if err := e.EndSortedSet(key); err != nil {
		return emitterErr(r.offset, err)
	}
	return nil
}

// skipValue consumes exactly the bytes decodeValue would have consumed
// for typeByte, without decoding (spec §4.8 skip semantics / invariant
// 5). For STRING and the single-blob encodings (9–13) it skips one blob;
// LIST/SET skip N blobs; HASH skips 2N blobs; ZSET skips N member blobs,
// each followed by a text score (see readTextScore); ZSET_2 skips N blobs
// plus N*8 raw bytes; LIST_QUICKLIST skips N blobs.
func skipValue(r *byteReader, typeByte byte) error {
	switch typeByte {
	case typeString, typeHashZipmap, typeListZiplist, typeSetIntset, typeZSetZiplist, typeHashZiplist:
		return r.skipBlob()

	case typeList, typeSet, typeListQuicklist:
		n, err := r.readLen()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := r.skipBlob(); err != nil {
				return err
			}
		}
		return nil

	case typeHash:
		n, err := r.readLen()
		if err != nil {
			return err
		}
		for i := uint64(0); i < 2*n; i++ {
			if err := r.skipBlob(); err != nil {
				return err
			}
		}
		return nil

	case typeZSet:
		// The member is a blob but the score is its own raw-byte-gated
		// field (sentinel or ASCII length), not a generic blob — see
		// readTextScore. Skipping it as a blob would misparse the
		// sentinel bytes 253/254/255 as unknown blob encodings.
		n, err := r.readLen()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := r.skipBlob(); err != nil {
				return err
			}
			if _, err := r.readTextScore(); err != nil {
				return err
			}
		}
		return nil

	case typeZSet2:
		n, err := r.readLen()
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := r.skipBlob(); err != nil {
				return err
			}
			if _, err := r.readN(8); err != nil {
				return err
			}
		}
		return nil

	case typeModule, typeModule2:
		return unsupported(r.offset, int(typeByte), "module-opaque values are not supported")

	default:
		return unsupported(r.offset, int(typeByte), "unrecognised encoding-type byte")
	}
}
