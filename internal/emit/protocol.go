package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"kvsnap/internal/rdb"
)

// Protocol writes a RESP command stream equivalent to replaying the
// snapshot against a live server: SET/HSET/SADD/RPUSH/ZADD plus a
// PEXPIREAT right after any key that carried an expiry. Grounded on the
// reference Protocol formatter's emit()/pre_expire()/post_expire() latch.
type Protocol struct {
	rdb.NopEmitter
	w          *bufio.Writer
	lastExpiry uint64
	haveExpiry bool
}

func NewProtocol(w io.Writer) *Protocol {
	return &Protocol{w: bufio.NewWriter(w)}
}

func (p *Protocol) Flush() error { return p.w.Flush() }

func (p *Protocol) EndRDB() error { return p.w.Flush() }

func (p *Protocol) Checksum(sum []byte) error { return p.w.Flush() }

func (p *Protocol) emit(args ...[]byte) error {
	fmt.Fprintf(p.w, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(p.w, "$%d\r\n", len(a))
		p.w.Write(a)
		p.w.WriteString("\r\n")
	}
	return nil
}

func (p *Protocol) preExpire(expiry uint64) {
	p.lastExpiry = expiry
	p.haveExpiry = expiry != 0
}

func (p *Protocol) postExpire(key []byte) error {
	if !p.haveExpiry {
		return nil
	}
	p.haveExpiry = false
	return p.emit([]byte("PEXPIREAT"), key, []byte(strconv.FormatUint(p.lastExpiry, 10)))
}

func (p *Protocol) StartDatabase(id uint64) error {
	return p.emit([]byte("SELECT"), []byte(strconv.FormatUint(id, 10)))
}

func (p *Protocol) Set(key, value []byte, expiry uint64) error {
	p.preExpire(expiry)
	if err := p.emit([]byte("SET"), key, value); err != nil {
		return err
	}
	return p.postExpire(key)
}

func (p *Protocol) StartHash(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	p.preExpire(expiry)
	return nil
}
func (p *Protocol) EndHash(key []byte) error { return p.postExpire(key) }
func (p *Protocol) HashElement(key, field, value []byte) error {
	return p.emit([]byte("HSET"), key, field, value)
}

func (p *Protocol) StartSet(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	p.preExpire(expiry)
	return nil
}
func (p *Protocol) EndSet(key []byte) error { return p.postExpire(key) }
func (p *Protocol) SetElement(key, member []byte) error {
	return p.emit([]byte("SADD"), key, member)
}

func (p *Protocol) StartList(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	p.preExpire(expiry)
	return nil
}
func (p *Protocol) EndList(key []byte) error { return p.postExpire(key) }
func (p *Protocol) ListElement(key, value []byte) error {
	return p.emit([]byte("RPUSH"), key, value)
}

func (p *Protocol) StartSortedSet(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	p.preExpire(expiry)
	return nil
}
func (p *Protocol) EndSortedSet(key []byte) error { return p.postExpire(key) }
func (p *Protocol) SortedSetElement(key []byte, score float64, member []byte) error {
	return p.emit([]byte("ZADD"), key, []byte(strconv.FormatFloat(score, 'g', -1, 64)), member)
}
