package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash from the plaintext credential. Only the
// hash is ever persisted.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// PasswordMatches reports whether plain hashes to the stored bcrypt hash.
func PasswordMatches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
