package emit

import "kvsnap/internal/rdb"

// Nil discards every event; it backs the `nil` CLI format.
type Nil struct {
	rdb.NopEmitter
}

func NewNil() *Nil { return &Nil{} }
