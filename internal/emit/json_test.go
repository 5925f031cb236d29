package emit

import (
	"bytes"
	"testing"

	"kvsnap/internal/rdb"
)

func TestJSONScalarAndHash(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(&buf)

	must(t, j.StartRDB())
	must(t, j.StartDatabase(0))
	must(t, j.Set([]byte("k"), []byte("v"), 0))
	must(t, j.StartHash([]byte("h"), 1, 0, rdb.EncodingLinked))
	must(t, j.HashElement([]byte("h"), []byte("f"), []byte("fv")))
	must(t, j.EndHash([]byte("h")))
	must(t, j.EndRDB())

	want := `[{"k":"v","h":{"f":"fv"}}]` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestJSONEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(&buf)
	must(t, j.StartRDB())
	must(t, j.EndRDB())

	want := "[]\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestJSONMultipleDatabases(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(&buf)
	must(t, j.StartRDB())
	must(t, j.StartDatabase(0))
	must(t, j.Set([]byte("a"), []byte("1"), 0))
	must(t, j.StartDatabase(1))
	must(t, j.Set([]byte("b"), []byte("2"), 0))
	must(t, j.EndRDB())

	want := `[{"a":"1"},{"b":"2"}]` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
