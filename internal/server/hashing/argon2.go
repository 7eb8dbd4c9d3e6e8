// Package hashing implements the one-way hashing used for stored
// credentials: salted Argon2id digests in PHC string format for
// verification, and deterministic keyed fingerprints for API key lookup.
package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HakanVardarr/file-server/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// DefaultTime is the default number of Argon2id iterations.
	DefaultTime uint32 = 3

	// DefaultMemory is the default memory cost in KiB (64 MiB).
	DefaultMemory uint32 = 64 * 1024

	// DefaultThreads is the default degree of parallelism.
	DefaultThreads uint8 = 2

	// DefaultKeyLen is the default derived key length in bytes.
	DefaultKeyLen uint32 = 32

	// DefaultSaltLen is the default random salt length in bytes.
	DefaultSaltLen uint32 = 16

	variant = "argon2id"
)

// Params configures an Argon2Hasher. All values are encoded into every
// produced digest, so changing them only affects new hashes; old digests
// stay verifiable with the parameters they carry.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams returns the production parameter set.
func DefaultParams() Params {
	return Params{
		Time:    DefaultTime,
		Memory:  DefaultMemory,
		Threads: DefaultThreads,
		KeyLen:  DefaultKeyLen,
		SaltLen: DefaultSaltLen,
	}
}

// Argon2Hasher derives salted Argon2id digests. It is immutable after
// construction and safe for concurrent use.
type Argon2Hasher struct {
	params Params
}

// NewArgon2Hasher validates params and returns a hasher.
func NewArgon2Hasher(params Params) (*Argon2Hasher, error) {
	if params.Time < 1 {
		return nil, fmt.Errorf("%w: time must be >= 1", common.ErrHashingFailed)
	}
	if params.Threads < 1 {
		return nil, fmt.Errorf("%w: threads must be >= 1", common.ErrHashingFailed)
	}
	if params.Memory < 8*uint32(params.Threads) {
		return nil, fmt.Errorf("%w: memory must be >= 8*threads KiB", common.ErrHashingFailed)
	}
	if params.SaltLen < 8 {
		return nil, fmt.Errorf("%w: salt length must be >= 8", common.ErrHashingFailed)
	}
	if params.KeyLen < 4 {
		return nil, fmt.Errorf("%w: key length must be >= 4", common.ErrHashingFailed)
	}
	return &Argon2Hasher{params: params}, nil
}

// Hash derives an Argon2id digest of secret under a fresh random salt and
// returns it in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_b64>$<hash_b64>
//
// It fails only when the random source fails, never on secret content.
func (h *Argon2Hasher) Hash(secret []byte) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: salt generation: %v", common.ErrHashingFailed, err)
	}

	key := argon2.IDKey(secret, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		variant,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest of secret using the parameters embedded in
// encoded and compares in constant time. Malformed digest strings verify as
// false; Verify never reports an error that could be mistaken for success.
func (h *Argon2Hasher) Verify(secret []byte, encoded string) bool {
	p, salt, hash, err := decode(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(computed, hash) == 1
}

// decode parses a PHC digest produced by Hash. Expected layout is six
// dollar-delimited segments with an empty first one:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("malformed digest: expected 5 segments, got %d", len(parts)-1)
	}

	if parts[1] != variant {
		return p, nil, nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	version, err := parseUint(parts[2], "v")
	if err != nil {
		return p, nil, nil, err
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	costs := strings.Split(parts[3], ",")
	if len(costs) != 3 {
		return p, nil, nil, fmt.Errorf("malformed cost segment %q", parts[3])
	}
	m, err := parseUint(costs[0], "m")
	if err != nil {
		return p, nil, nil, err
	}
	t, err := parseUint(costs[1], "t")
	if err != nil {
		return p, nil, nil, err
	}
	par, err := parseUint(costs[2], "p")
	if err != nil {
		return p, nil, nil, err
	}
	if t < 1 || par < 1 || par > 255 {
		return p, nil, nil, fmt.Errorf("cost parameters out of range in %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid salt encoding: %v", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash encoding: %v", err)
	}
	if len(hash) == 0 {
		return p, nil, nil, fmt.Errorf("empty hash segment")
	}

	p.Memory = uint32(m)
	p.Time = uint32(t)
	p.Threads = uint8(par)
	return p, salt, hash, nil
}

func parseUint(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix in %q", prefix, s)
	}
	return strconv.ParseUint(s[len(prefix):], 10, 32)
}
