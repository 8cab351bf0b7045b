package application

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// DefaultIDLength matches the short tokens printed on receipts.
	DefaultIDLength = 6
	idAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxIDAttempts   = 16
)

// IDGenerator produces candidate order ids. Uniqueness is checked by the service.
type IDGenerator interface {
	NewID() (string, error)
}

// RandomIDGenerator draws upper-case base-36 tokens from crypto/rand.
type RandomIDGenerator struct {
	length int
}

func NewRandomIDGenerator(length int) (*RandomIDGenerator, error) {
	if length < 4 {
		return nil, errors.New("order id length must be at least 4")
	}
	return &RandomIDGenerator{length: length}, nil
}

func (g *RandomIDGenerator) NewID() (string, error) {
	max := big.NewInt(int64(len(idAlphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf), nil
}
