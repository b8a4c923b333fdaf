package main

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateUUID returns a random v4 UUID string, used for peer tank identity
func GenerateUUID() string {
	return uuid.NewString()
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// Distance between two points
func Distance(a, b Vector) float64 {
	return b.Sub(a).Len()
}
