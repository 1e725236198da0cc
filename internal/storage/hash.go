package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// ContentHash computes the SHA-256 digest of the stream, reading in 4 KiB
// blocks. The hex digest is the content-addressed key for uploaded files.
func ContentHash(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, 4096)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
