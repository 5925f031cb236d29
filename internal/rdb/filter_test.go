package rdb

import "testing"

func TestAllowAllMatchesEverything(t *testing.T) {
	var f Filter = AllowAll{}
	if !f.MatchesDB(7) || !f.MatchesType(typeHash) || !f.MatchesKey([]byte("anything")) {
		t.Fatal("AllowAll must match every db, type, and key")
	}
}

func TestStrictFilterEmptyAxesMatchEverything(t *testing.T) {
	f := &StrictFilter{}
	if !f.MatchesDB(3) || !f.MatchesType(typeString) || !f.MatchesKey([]byte("k")) {
		t.Fatal("empty StrictFilter axes should impose no restriction")
	}
}

func TestStrictFilterDatabaseAllowlist(t *testing.T) {
	f := &StrictFilter{Databases: map[uint64]struct{}{0: {}, 2: {}}}
	if !f.MatchesDB(0) || !f.MatchesDB(2) {
		t.Fatal("expected db 0 and 2 to match")
	}
	if f.MatchesDB(1) {
		t.Fatal("db 1 should not match")
	}
}

func TestStrictFilterTypeAllowlist(t *testing.T) {
	f := &StrictFilter{Types: map[byte]struct{}{typeHash: {}, typeHashZiplist: {}}}
	if !f.MatchesType(typeHash) || !f.MatchesType(typeHashZiplist) {
		t.Fatal("expected both hash encodings to match")
	}
	if f.MatchesType(typeString) {
		t.Fatal("string should not match a hash-only allowlist")
	}
}

func TestStrictFilterKeyRegexp(t *testing.T) {
	f := &StrictFilter{KeyRegexp: mustRegexp("^user:")}
	if !f.MatchesKey([]byte("user:1")) {
		t.Fatal("expected user:1 to match")
	}
	if f.MatchesKey([]byte("session:1")) {
		t.Fatal("session:1 should not match")
	}
}

func TestStrictFilterRequiresAllAxes(t *testing.T) {
	f := &StrictFilter{
		Databases: map[uint64]struct{}{0: {}},
		Types:     map[byte]struct{}{typeString: {}},
		KeyRegexp: mustRegexp("^ok$"),
	}
	if !f.MatchesDB(0) || !f.MatchesType(typeString) || !f.MatchesKey([]byte("ok")) {
		t.Fatal("expected all three axes to pass for matching input")
	}
	if f.MatchesType(typeHash) {
		t.Fatal("mismatched type should fail independently of other axes")
	}
}
