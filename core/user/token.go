package user

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// A composite token is "<tokenId>|<rawSecret>": a public lookup id plus a
// private secret. Validation resolves the row in O(1) by id while the store
// only ever holds the secret's hash.

const (
	bearerPrefix       = "Bearer "
	compositeSeparator = "|"
	secretBytes        = 32 // 256 bits of entropy, hex-encoded to 64 chars
)

var nowFunc = time.Now // mockable

// newRawSecret generates the cryptographically random secret of a session token.
func newRawSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// formatComposite builds the opaque token string handed to clients.
func formatComposite(tokenID int, rawSecret string) string {
	return strconv.Itoa(tokenID) + compositeSeparator + rawSecret
}

// parseBearer splits an Authorization header value into the token row id and
// the raw secret. Any malformed value yields ErrInvalidToken.
func parseBearer(header string) (int, string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return 0, "", ErrInvalidToken
	}
	parts := strings.Split(strings.TrimPrefix(header, bearerPrefix), compositeSeparator)
	if len(parts) != 2 {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	return id, parts[1], nil
}
