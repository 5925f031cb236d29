// Package emit holds the concrete emitters: JSON, plain-text, RESP
// protocol, a null sink, and a live-apply writer against a real Redis.
package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"kvsnap/internal/rdb"
)

// JSON streams one JSON array per snapshot, one object per database,
// each key mapped to its value (scalars for strings, nested
// array/object for the collection shapes). Grounded on the reference
// JSON formatter: a single forward-only write stream, no buffering of
// the whole document in memory.
type JSON struct {
	rdb.NopEmitter
	w *bufio.Writer

	firstDB        bool
	hasDatabases   bool
	firstKeyInDB   bool
	elementIndex   int
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{w: bufio.NewWriter(w), firstDB: true, firstKeyInDB: true}
}

func (j *JSON) Flush() error { return j.w.Flush() }

func encodeToASCII(b []byte) string {
	out, _ := json.Marshal(string(b))
	return string(out)
}

func (j *JSON) startKey() {
	if !j.firstKeyInDB {
		j.w.WriteByte(',')
	}
	j.firstKeyInDB = false
	j.elementIndex = 0
}

func (j *JSON) writeComma() {
	if j.elementIndex > 0 {
		j.w.WriteByte(',')
	}
	j.elementIndex++
}

func (j *JSON) writeKey(k []byte)   { j.w.WriteString(encodeToASCII(k)) }
func (j *JSON) writeValue(v []byte) { j.w.WriteString(encodeToASCII(v)) }

func (j *JSON) StartRDB() error { _, err := j.w.WriteString("["); return err }

func (j *JSON) EndRDB() error {
	if j.hasDatabases {
		if _, err := j.w.WriteString("}"); err != nil {
			return err
		}
	}
	if _, err := j.w.WriteString("]\n"); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *JSON) StartDatabase(uint64) error {
	if !j.firstDB {
		if _, err := j.w.WriteString("},"); err != nil {
			return err
		}
	}
	if _, err := j.w.WriteString("{"); err != nil {
		return err
	}
	j.firstDB = false
	j.hasDatabases = true
	j.firstKeyInDB = true
	return nil
}

func (j *JSON) Set(key, value []byte, _ uint64) error {
	j.startKey()
	j.writeKey(key)
	j.w.WriteByte(':')
	j.writeValue(value)
	return j.w.Flush()
}

func (j *JSON) StartHash(key []byte, _ uint64, _ uint64, _ rdb.Encoding) error {
	j.startKey()
	j.writeKey(key)
	j.w.WriteString(":{")
	return j.w.Flush()
}
func (j *JSON) EndHash([]byte) error {
	j.w.WriteString("}")
	return j.w.Flush()
}
func (j *JSON) HashElement(_, field, value []byte) error {
	j.writeComma()
	j.writeKey(field)
	j.w.WriteByte(':')
	j.writeValue(value)
	return j.w.Flush()
}

func (j *JSON) StartSet(key []byte, _ uint64, _ uint64, _ rdb.Encoding) error {
	j.startKey()
	j.writeKey(key)
	j.w.WriteString(":[")
	return j.w.Flush()
}
func (j *JSON) EndSet([]byte) error {
	j.w.WriteString("]")
	return j.w.Flush()
}
func (j *JSON) SetElement(_, member []byte) error {
	j.writeComma()
	j.writeValue(member)
	return nil
}

func (j *JSON) StartList(key []byte, _ uint64, _ uint64, _ rdb.Encoding) error {
	j.startKey()
	j.writeKey(key)
	j.w.WriteString(":[")
	return nil
}
func (j *JSON) EndList([]byte) error {
	j.w.WriteString("]")
	return nil
}
func (j *JSON) ListElement(_, value []byte) error {
	j.writeComma()
	j.writeValue(value)
	return nil
}

func (j *JSON) StartSortedSet(key []byte, _ uint64, _ uint64, _ rdb.Encoding) error {
	j.startKey()
	j.writeKey(key)
	j.w.WriteString(":{")
	return nil
}
func (j *JSON) EndSortedSet([]byte) error {
	j.w.WriteString("}")
	return nil
}
func (j *JSON) SortedSetElement(_ []byte, score float64, member []byte) error {
	j.writeComma()
	j.writeKey(member)
	j.w.WriteByte(':')
	j.w.WriteString(fmt.Sprintf("%v", score))
	return nil
}
