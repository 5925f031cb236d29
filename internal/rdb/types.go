package rdb

// Opcodes, read at the top level between key records (spec §4.8).
const (
	opSelectDB     = 254
	opResizeDB     = 251
	opAux          = 250
	opExpireTimeMS = 252
	opExpireTime   = 253
	opEOF          = 255
)

// Encoding-type codes for key records (spec §4.7, Table T1). Codes 6 and
// 7 (module values) are recognised but refused.
const (
	typeString       = 0
	typeList         = 1
	typeSet          = 2
	typeZSet         = 3
	typeHash         = 4
	typeZSet2        = 5
	typeModule       = 6
	typeModule2      = 7
	typeHashZipmap   = 9
	typeListZiplist  = 10
	typeSetIntset    = 11
	typeZSetZiplist  = 12
	typeHashZiplist  = 13
	typeListQuicklist = 14
)

// minVersion/maxVersion bound the accepted four-digit ASCII version
// (spec §6.3, "[1, 8]").
const (
	minVersion = 1
	maxVersion = 8
)

// logicalTypeNames maps a CLI-facing logical type name to every
// physical encoding-type byte that represents it (spec §4.7, Table
// T1), so a --type filter matches regardless of which physical
// encoding a particular key happens to use.
var logicalTypeNames = map[string][]byte{
	"string": {typeString},
	"list":   {typeList, typeListZiplist, typeListQuicklist},
	"set":    {typeSet, typeSetIntset},
	"zset":   {typeZSet, typeZSet2, typeZSetZiplist},
	"hash":   {typeHash, typeHashZipmap, typeHashZiplist},
}

// TypeBytesForName resolves a CLI --type value (string, list, set,
// zset, hash) to the encoding-type bytes it covers. The second return
// value is false for an unrecognised name.
func TypeBytesForName(name string) ([]byte, bool) {
	bytes, ok := logicalTypeNames[name]
	return bytes, ok
}
