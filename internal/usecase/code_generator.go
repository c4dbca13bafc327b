package usecase

import (
	"crypto/rand"
	"io"
)

// codeAlphabet avoids characters that are easy to confuse (O/0, I/1, l).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateAccessCode creates a random, human-readable code.
// Format: XXXX-XXXX-XXXX
func generateAccessCode() (string, error) {
	const codeLength = 12

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = codeAlphabet[int(buffer[i])%len(codeAlphabet)]
	}

	return string(buffer[0:4]) + "-" + string(buffer[4:8]) + "-" + string(buffer[8:12]), nil
}
