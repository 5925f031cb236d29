package rdb

import (
	"io"
)

const magic = "REDIS"

// Parser drives the streaming decode of one snapshot (spec §2, §5): a
// single-threaded pull parser that owns its reader, filter, and emitter
// for the duration of one Parse call. It carries no state beyond the
// call and is not safe for concurrent use.
type Parser struct {
	r        *byteReader
	filter   Filter
	emitter  Emitter
	expireMs uint64 // latched expire, cleared on every key record
	haveExpire bool
}

// New creates a Parser bound to r, filter, and emitter. A nil filter is
// treated as AllowAll; a nil emitter is treated as NopEmitter.
func New(r io.Reader, filter Filter, emitter Emitter) *Parser {
	if filter == nil {
		filter = AllowAll{}
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Parser{r: newByteReader(r), filter: filter, emitter: emitter}
}

// Parse runs the decoder to completion: magic/version check, then the
// opcode loop of spec §4.8, until EOF or an error. It returns the first
// error encountered; the parse is not resumable.
func (p *Parser) Parse() error {
	if err := p.readHeader(); err != nil {
		return err
	}
	if err := p.emitter.StartRDB(); err != nil {
		return emitterErr(p.r.offset, err)
	}

	var currentDB uint64
	var haveDB bool

	for {
		op, err := p.r.readByte()
		if err != nil {
			return err
		}

		switch op {
		case opSelectDB:
			id, err := p.r.readLen()
			if err != nil {
				return err
			}
			if haveDB {
				if err := p.emitter.EndDatabase(currentDB); err != nil {
					return emitterErr(p.r.offset, err)
				}
			}
			currentDB = id
			haveDB = true
			if p.filter.MatchesDB(id) {
				if err := p.emitter.StartDatabase(id); err != nil {
					return emitterErr(p.r.offset, err)
				}
			}

		case opResizeDB:
			dbSize, err := p.r.readLen()
			if err != nil {
				return err
			}
			expiresSize, err := p.r.readLen()
			if err != nil {
				return err
			}
			if err := p.emitter.ResizeDB(dbSize, expiresSize); err != nil {
				return emitterErr(p.r.offset, err)
			}

		case opAux:
			k, err := p.r.readBlob()
			if err != nil {
				return err
			}
			v, err := p.r.readBlob()
			if err != nil {
				return err
			}
			if err := p.emitter.AuxField(k, v); err != nil {
				return emitterErr(p.r.offset, err)
			}

		case opExpireTimeMS:
			ms, err := p.r.readUint64LE()
			if err != nil {
				return err
			}
			p.expireMs = ms
			p.haveExpire = true

		case opExpireTime:
			secs, err := p.r.readUint32BE()
			if err != nil {
				return err
			}
			p.expireMs = uint64(secs) * 1000
			p.haveExpire = true

		case opEOF:
			if haveDB {
				if err := p.emitter.EndDatabase(currentDB); err != nil {
					return emitterErr(p.r.offset, err)
				}
			}
			if err := p.emitter.EndRDB(); err != nil {
				return emitterErr(p.r.offset, err)
			}
			sum, err := p.readChecksum()
			if err != nil {
				return err
			}
			if err := p.emitter.Checksum(sum); err != nil {
				return emitterErr(p.r.offset, err)
			}
			return nil

		default:
			if err := p.handleKeyRecord(op, currentDB); err != nil {
				return err
			}
		}
	}
}

// handleKeyRecord reads the key blob, consults the filter, and either
// dispatches or skip-consumes the value, clearing the latched expiry
// either way (spec §4.8, invariant 4).
func (p *Parser) handleKeyRecord(typeByte byte, currentDB uint64) error {
	key, err := p.r.readBlob()
	if err != nil {
		return err
	}

	expiry := uint64(0)
	if p.haveExpire {
		expiry = p.expireMs
	}
	p.haveExpire = false
	p.expireMs = 0

	admitted := p.filter.MatchesDB(currentDB) &&
		p.filter.MatchesType(typeByte) &&
		p.filter.MatchesKey(key)

	if !admitted {
		return skipValue(p.r, typeByte)
	}
	return decodeValue(p.r, p.emitter, key, typeByte, expiry)
}

// readHeader validates the 5-byte magic and 4-digit ASCII version (spec
// §6.3, invariant 1).
func (p *Parser) readHeader() error {
	magicBytes, err := p.r.readN(len(magic))
	if err != nil {
		return err
	}
	if string(magicBytes) != magic {
		return malformed(p.r.offset, -1, "bad magic %q, want %q", magicBytes, magic)
	}
	versionBytes, err := p.r.readN(4)
	if err != nil {
		return err
	}
	version := 0
	for _, b := range versionBytes {
		if b < '0' || b > '9' {
			return malformed(p.r.offset, -1, "version %q is not four ASCII digits", versionBytes)
		}
		version = version*10 + int(b-'0')
	}
	if version < minVersion || version > maxVersion {
		return malformed(p.r.offset, -1, "version %d out of supported range [%d,%d]", version, minVersion, maxVersion)
	}
	return nil
}

// readChecksum reads the trailer if present, treating it as opaque (spec
// invariant 7): exactly 0 or 8 bytes remain after opcode 0xFF. Anything
// else is malformed input, not a short read to tolerate.
func (p *Parser) readChecksum() ([]byte, error) {
	rest, err := io.ReadAll(p.r.r)
	if err != nil {
		return nil, ioErr(p.r.offset, err)
	}
	p.r.offset += int64(len(rest))
	switch len(rest) {
	case 0:
		return nil, nil
	case 8:
		return rest, nil
	default:
		return nil, malformed(p.r.offset, -1, "trailing checksum is %d bytes, want 0 or 8", len(rest))
	}
}
