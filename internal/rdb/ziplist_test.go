package rdb

import (
	"bytes"
	"testing"
)

func ziplistBlob(entries ...[]byte) []byte {
	var body bytes.Buffer
	for _, e := range entries {
		body.WriteByte(byte(len(e)))
		body.WriteByte(byte(len(e))) // 6-bit string length encoding
		body.Write(e)
	}
	body.WriteByte(0xFF)

	var full bytes.Buffer
	full.Write(make([]byte, 8)) // total-bytes + tail-offset, unused by the parser
	full.Write([]byte{0, 0})    // entry count, unused by the parser
	full.Write(body.Bytes())
	return full.Bytes()
}

func TestZiplistStrings(t *testing.T) {
	data := ziplistBlob([]byte("a"), []byte("bb"), []byte("ccc"))
	entries, err := parseZiplist(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 3 || string(entries[0]) != "a" || string(entries[1]) != "bb" || string(entries[2]) != "ccc" {
		t.Fatalf("got %q", entries)
	}
}

func TestZiplistThreeByteSignExtension(t *testing.T) {
	// 0xF0 flag + 3 raw bytes, negative value: 0xFFFFFF -> -1.
	entry := []byte{1, 0xF0, 0xFF, 0xFF, 0xFF}
	var full bytes.Buffer
	full.Write(make([]byte, 10))
	full.Write(entry)
	full.WriteByte(0xFF)

	entries, err := parseZiplist(full.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || string(entries[0]) != "-1" {
		t.Fatalf("got %q, want [-1]", entries)
	}
}

func TestZiplistThreeBytePositive(t *testing.T) {
	// 0xF0 flag + 3 raw bytes, big-endian-first per spec §4.3:
	// ((b0<<16) ^ (b1<<8) ^ b2) -> 0x010000 = 65536.
	entry := []byte{1, 0xF0, 0x01, 0x00, 0x00}
	var full bytes.Buffer
	full.Write(make([]byte, 10))
	full.Write(entry)
	full.WriteByte(0xFF)

	entries, err := parseZiplist(full.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || string(entries[0]) != "65536" {
		t.Fatalf("got %q, want [65536]", entries)
	}
}

func TestZiplistMissingTerminator(t *testing.T) {
	data := make([]byte, ziplistHeaderLen)
	if _, err := parseZiplist(data); err == nil {
		t.Fatal("expected error for missing terminator")
	}
}

func TestIntsetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{4, 0, 0, 0}) // width = 4
	buf.Write([]byte{3, 0, 0, 0}) // count = 3
	for _, v := range []int32{-2, 0, 42} {
		var b [4]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		buf.Write(b[:])
	}
	members, err := parseIntset(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"-2", "0", "42"}
	if len(members) != len(want) {
		t.Fatalf("got %d members, want %d", len(members), len(want))
	}
	for i, w := range want {
		if string(members[i]) != w {
			t.Fatalf("member %d: got %q, want %q", i, members[i], w)
		}
	}
}
