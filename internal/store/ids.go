package store

import (
	"crypto/rand"
	"encoding/hex"
)

// IDLength is the length in characters of ids produced by RandomIDs.
const IDLength = 20

// IDGenerator produces record ids.
type IDGenerator interface {
	NewID() string
}

// RandomIDs yields IDLength lowercase hex characters read from crypto/rand.
type RandomIDs struct{}

func (RandomIDs) NewID() string {
	b := make([]byte, IDLength/2)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }
