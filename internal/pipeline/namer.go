package pipeline

import (
	"crypto/sha512"
	"encoding/base64"
)

// hashedNameLen is the number of encoded characters kept from the digest.
const hashedNameLen = 10

// HashedName derives the storage prefix for a source path: SHA-512 of the
// path string, URL-safe base64, first ten characters.
func HashedName(path string) string {
	sum := sha512.Sum512([]byte(path))
	return base64.URLEncoding.EncodeToString(sum[:])[:hashedNameLen]
}
