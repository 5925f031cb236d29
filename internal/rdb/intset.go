package rdb

import (
	"encoding/binary"
	"strconv"
)

// parseIntset decodes an intset blob (spec §4.5): element byte-width (u32
// LE, one of 2/4/8), element count (u32 LE), then that many signed
// little-endian integers of the given width. Each is returned as its
// decimal text, the shape set_element expects.
func parseIntset(data []byte) ([][]byte, error) {
	if len(data) < 8 {
		return nil, malformed(0, -1, "intset payload too short (%d bytes)", len(data))
	}
	width := binary.LittleEndian.Uint32(data[0:4])
	count := binary.LittleEndian.Uint32(data[4:8])
	offset := 8

	members := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		var v int64
		switch width {
		case 2:
			if offset+2 > len(data) {
				return nil, malformed(0, -1, "intset truncated")
			}
			v = int64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
			offset += 2
		case 4:
			if offset+4 > len(data) {
				return nil, malformed(0, -1, "intset truncated")
			}
			v = int64(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
			offset += 4
		case 8:
			if offset+8 > len(data) {
				return nil, malformed(0, -1, "intset truncated")
			}
			v = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			offset += 8
		default:
			return nil, malformed(0, -1, "unsupported intset element width %d", width)
		}
		members = append(members, []byte(strconv.FormatInt(v, 10)))
	}
	return members, nil
}
