// Package id generates compact identifiers for stored records.
//
// Identifiers are UUIDv4 values encoded as 26-character lowercase base32
// without padding, which keeps them copy-paste friendly and safe for use in
// URLs, filenames, and SQL keys.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase base32 identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
