package user

import "golang.org/x/crypto/bcrypt"

// HashSecret produces a salted, adaptive one-way hash of a password or token
// secret. The salt is randomized internally, so two calls on the same input
// yield different encoded values.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifySecret reports whether secret is the input that produced hash.
// The underlying comparison is constant-time.
func VerifySecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
