package rdb

import "regexp"

// Filter is consulted by the state machine before committing to decode a
// record (spec §6.2). A key is decoded and emitted only if all three
// predicates return true; otherwise its record is skip-consumed.
type Filter interface {
	MatchesDB(id uint64) bool
	MatchesType(encodingType byte) bool
	MatchesKey(key []byte) bool
}

// AllowAll accepts every database, type, and key.
type AllowAll struct{}

func (AllowAll) MatchesDB(uint64) bool      { return true }
func (AllowAll) MatchesType(byte) bool      { return true }
func (AllowAll) MatchesKey([]byte) bool     { return true }

var _ Filter = AllowAll{}

// StrictFilter ANDs a database-id allowlist, a type allowlist, and a
// compiled key pattern. A nil/empty allowlist means "no restriction on
// this axis"; a nil key pattern means "no key restriction".
type StrictFilter struct {
	Databases map[uint64]struct{}
	Types     map[byte]struct{}
	KeyRegexp *regexp.Regexp
}

func (f *StrictFilter) MatchesDB(id uint64) bool {
	if len(f.Databases) == 0 {
		return true
	}
	_, ok := f.Databases[id]
	return ok
}

func (f *StrictFilter) MatchesType(t byte) bool {
	if len(f.Types) == 0 {
		return true
	}
	_, ok := f.Types[t]
	return ok
}

func (f *StrictFilter) MatchesKey(key []byte) bool {
	if f.KeyRegexp == nil {
		return true
	}
	return f.KeyRegexp.Match(key)
}

var _ Filter = (*StrictFilter)(nil)
