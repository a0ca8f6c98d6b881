package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the plain password using the given
// cost.  The salt is generated per call, so hashing the same password twice
// yields different outputs.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.  A
// malformed hash simply fails verification.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
