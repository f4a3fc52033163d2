// Package password hashes and verifies bind credentials. The original
// program rolled its own PBKDF2-HMAC-SHA512 scheme; this rewrite treats
// hashes as opaque the same way spec.md §6 requires, but produces them
// with bcrypt (golang.org/x/crypto/bcrypt), the scheme the example pack
// reaches for rather than a hand-rolled KDF.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor used by Hash.
const DefaultCost = bcrypt.DefaultCost

// Hash produces an opaque, salted hash of plaintext suitable for storage
// in an entry's userPassword attribute.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Check reports whether plaintext matches the stored hash.
func Check(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
