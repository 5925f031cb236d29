package emit

import (
	"bytes"
	"strings"
	"testing"

	"kvsnap/internal/rdb"
)

func TestProtocolSetCommand(t *testing.T) {
	var buf bytes.Buffer
	p := NewProtocol(&buf)
	must(t, p.Set([]byte("k"), []byte("v"), 0))
	must(t, p.Flush())

	want := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestProtocolSetWithExpiryEmitsPexpireat(t *testing.T) {
	var buf bytes.Buffer
	p := NewProtocol(&buf)
	must(t, p.Set([]byte("k"), []byte("v"), 1000))
	must(t, p.Flush())

	got := buf.String()
	if !strings.Contains(got, "SET") || !strings.Contains(got, "PEXPIREAT") {
		t.Fatalf("expected both SET and PEXPIREAT, got %q", got)
	}
	if !strings.Contains(got, "1000") {
		t.Fatalf("expected expiry value 1000 in output, got %q", got)
	}
}

func TestProtocolNoExpiryOmitsPexpireat(t *testing.T) {
	var buf bytes.Buffer
	p := NewProtocol(&buf)
	must(t, p.Set([]byte("k"), []byte("v"), 0))
	must(t, p.Flush())

	if strings.Contains(buf.String(), "PEXPIREAT") {
		t.Fatalf("unexpected PEXPIREAT for zero expiry: %q", buf.String())
	}
}

func TestProtocolHashExpiryLatchedUntilEndHash(t *testing.T) {
	var buf bytes.Buffer
	p := NewProtocol(&buf)
	must(t, p.StartHash([]byte("h"), 1, 5000, rdb.EncodingLinked))
	must(t, p.HashElement([]byte("h"), []byte("f"), []byte("v")))
	must(t, p.Flush())
	if strings.Contains(buf.String(), "PEXPIREAT") {
		t.Fatal("PEXPIREAT should not appear before EndHash")
	}
	must(t, p.EndHash([]byte("h")))
	must(t, p.Flush())
	if !strings.Contains(buf.String(), "PEXPIREAT") {
		t.Fatal("expected PEXPIREAT after EndHash")
	}
}

func TestProtocolSelectOnDatabaseChange(t *testing.T) {
	var buf bytes.Buffer
	p := NewProtocol(&buf)
	must(t, p.StartDatabase(2))
	must(t, p.Flush())

	want := "*2\r\n$6\r\nSELECT\r\n$1\r\n2\r\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
