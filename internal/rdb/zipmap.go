package rdb

import "encoding/binary"

// parseZipmap decodes a zipmap blob (spec §4.6): a one-byte entry-count
// hint followed by repeated (key, value) records, terminated by 0xFF.
// Returns the flat (key, value, key, value, ...) sequence, same shape as
// a hash-ziplist's flat entries.
//
// Record layout: key-len-byte, [4-byte LE length if the byte is 253],
// key bytes, value-len-byte, one free byte (padding count, discarded),
// [4-byte LE length if the byte is 253], value bytes.
func parseZipmap(data []byte) ([][]byte, error) {
	if len(data) < 1 {
		return nil, malformed(0, -1, "zipmap payload too short")
	}
	offset := 1 // zmlen hint is not otherwise needed: we scan to 0xFF regardless
	var entries [][]byte

	resolveLen := func(lb byte) (int, error) {
		switch {
		case lb < 253:
			return int(lb), nil
		case lb == 253:
			if offset+4 > len(data) {
				return 0, malformed(0, -1, "zipmap truncated length")
			}
			length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4
			return length, nil
		default:
			return 0, malformed(0, int(lb), "invalid zipmap length byte")
		}
	}

	readField := func() ([]byte, error) {
		if offset >= len(data) {
			return nil, malformed(0, -1, "zipmap truncated")
		}
		lb := data[offset]
		offset++
		length, err := resolveLen(lb)
		if err != nil {
			return nil, err
		}
		if offset+length > len(data) {
			return nil, malformed(0, -1, "zipmap entry truncated")
		}
		v := data[offset : offset+length]
		offset += length
		return v, nil
	}

	for {
		if offset >= len(data) {
			return nil, malformed(0, -1, "zipmap missing terminator")
		}
		if data[offset] == 0xFF {
			break
		}
		key, err := readField()
		if err != nil {
			return nil, err
		}

		if offset >= len(data) {
			return nil, malformed(0, -1, "zipmap truncated before value")
		}
		valLenByte := data[offset]
		offset++
		if offset >= len(data) {
			return nil, malformed(0, -1, "zipmap truncated before free byte")
		}
		offset++ // free byte, discarded

		length, err := resolveLen(valLenByte)
		if err != nil {
			return nil, err
		}
		if offset+length > len(data) {
			return nil, malformed(0, -1, "zipmap value truncated")
		}
		value := data[offset : offset+length]
		offset += length

		entries = append(entries, key, value)
	}
	return entries, nil
}
