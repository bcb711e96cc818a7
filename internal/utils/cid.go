// Package utils provides small, generic helper functions used across
// different layers of the application. This file implements the short,
// URL-safe chat identifier generator.
package utils

import (
	"crypto/rand"
	"strings"
)

// cidAlphabet is the restricted URL-safe alphabet for public chat ids.
// Visually ambiguous characters (i, l, 1, o, 0 and their upper-case
// forms) are excluded so the id survives being read aloud or retyped.
const cidAlphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// NewCID returns a random identifier of the given length drawn from
// cidAlphabet using crypto/rand. Collision checking is the caller's job.
func NewCID(length int) (string, error) {
	if length <= 0 {
		length = 10
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(length)
	for _, c := range buf {
		b.WriteByte(cidAlphabet[int(c)%len(cidAlphabet)])
	}
	return b.String(), nil
}
