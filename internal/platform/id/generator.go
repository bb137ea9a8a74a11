package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates run identifiers.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator builds ids of the form 20261018T101500Z-<16 hex chars>, so
// ids of consecutive runs sort by start time.
type RandomGenerator struct {
	now func() time.Time
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{now: time.Now}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	now := time.Now
	if g != nil && g.now != nil {
		now = g.now
	}
	return now().UTC().Format("20060102T150405Z") + "-" + hex.EncodeToString(buf), nil
}
