// Package keygen issues plaintext API keys: fixed-length alphanumeric
// strings drawn from crypto/rand, checked for collision against already
// issued keys before being handed out.
package keygen

import (
	"context"
	"crypto/rand"
	"fmt"
)

// KeyLength is the length of every issued API key.
const KeyLength = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ExistsFunc reports whether a candidate plaintext key has already been
// issued. Implementations are expected to consult the store's key index.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Random draws one candidate key of KeyLength alphanumeric characters from
// a cryptographically secure source. Rejection sampling keeps the character
// distribution uniform.
func Random() (string, error) {
	// largest multiple of len(alphabet) below 256; bytes >= limit are redrawn
	const limit = 248

	key := make([]byte, 0, KeyLength)
	buf := make([]byte, KeyLength)

	for len(key) < KeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("key generation: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			key = append(key, alphabet[int(b)%len(alphabet)])
			if len(key) == KeyLength {
				break
			}
		}
	}

	return string(key), nil
}

// Issue returns a fresh key that exists reports as unseen. Colliding
// candidates are discarded and redrawn in a loop; with 62^32 possible keys
// the loop is a correctness safeguard, not a performance concern, so no
// retry bound is imposed.
func Issue(ctx context.Context, exists ExistsFunc) (string, error) {
	for {
		candidate, err := Random()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("key collision check: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
