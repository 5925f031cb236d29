package emit

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"kvsnap/internal/rdb"
)

// Plain writes one human-readable line per scalar/element, grounded on
// the reference plain-text formatter's "db=N key -> value" shape.
type Plain struct {
	rdb.NopEmitter
	w     *bufio.Writer
	dbnum uint64
	index int
}

func NewPlain(w io.Writer) *Plain {
	return &Plain{w: bufio.NewWriter(w)}
}

func (p *Plain) Flush() error { return p.w.Flush() }

func (p *Plain) writeLineStart() {
	fmt.Fprintf(p.w, "db=%d ", p.dbnum)
}

func (p *Plain) Checksum(sum []byte) error {
	p.w.WriteString("checksum ")
	p.w.WriteString(hex.EncodeToString(sum))
	p.w.WriteString("\n")
	return p.w.Flush()
}

func (p *Plain) StartDatabase(id uint64) error {
	p.dbnum = id
	return nil
}

func (p *Plain) Set(key, value []byte, _ uint64) error {
	p.writeLineStart()
	p.w.Write(key)
	p.w.WriteString(" -> ")
	p.w.Write(value)
	p.w.WriteString("\n")
	return p.w.Flush()
}

func (p *Plain) AuxField(key, value []byte) error {
	p.w.WriteString("aux ")
	p.w.Write(key)
	p.w.WriteString(" -> ")
	p.w.Write(value)
	p.w.WriteString("\n")
	return p.w.Flush()
}

func (p *Plain) HashElement(key, field, value []byte) error {
	p.writeLineStart()
	p.w.Write(key)
	p.w.WriteString(" . ")
	p.w.Write(field)
	p.w.WriteString(" -> ")
	p.w.Write(value)
	p.w.WriteString("\n")
	return p.w.Flush()
}

func (p *Plain) SetElement(key, member []byte) error {
	p.writeLineStart()
	p.w.Write(key)
	p.w.WriteString(" { ")
	p.w.Write(member)
	p.w.WriteString(" } \n")
	return p.w.Flush()
}

func (p *Plain) StartList(key []byte, length, expiry uint64, enc rdb.Encoding) error {
	p.index = 0
	return nil
}

func (p *Plain) ListElement(key, value []byte) error {
	p.writeLineStart()
	p.w.Write(key)
	fmt.Fprintf(p.w, "[%d]", p.index)
	p.w.WriteString(" -> ")
	p.w.Write(value)
	p.w.WriteString("\n")
	p.index++
	return p.w.Flush()
}

func (p *Plain) StartSortedSet(key []byte, length, expiry uint64, enc rdb.Encoding) error {
	p.index = 0
	return nil
}

func (p *Plain) SortedSetElement(key []byte, score float64, member []byte) error {
	p.writeLineStart()
	p.w.Write(key)
	fmt.Fprintf(p.w, "[%d]", p.index)
	p.w.WriteString(" -> {")
	p.w.Write(member)
	fmt.Fprintf(p.w, ", score=%v", score)
	p.w.WriteString("}\n")
	p.index++
	return p.w.Flush()
}
