// Package argon2id hashes account passwords and verifies stored hashes
// in the standard $argon2id$ encoded form.
package argon2id

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("stored hash is not a valid argon2id encoding")
	ErrIncompatibleVersion = errors.New("stored hash uses an unsupported argon2 version")
)

// Params fixes the cost of hashing one password. The defaults follow
// the RFC 9106 low-memory recommendation: 64 MiB, three passes, four
// lanes. Hashes created under older params still verify because the
// stored encoding carries its own params.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// EncodeHash hashes password with a fresh random salt and returns the
// encoded form stored in the users table.
func EncodeHash(password string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return EncodeHashWithSalt(password, p, salt), nil
}

// EncodeHashWithSalt hashes password under the given salt and encodes
// params, salt and digest into one string.
func EncodeHashWithSalt(password string, p Params, salt []byte) string {
	digest := HashWithSalt(password, p, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest))
}

// HashWithSalt returns the raw argon2id digest of password under salt.
func HashWithSalt(password string, p Params, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
}

// DecodeHash splits an encoded hash back into the params, salt and
// digest needed to verify a login attempt.
func DecodeHash(encodedHash string) (*Params, []byte, []byte, error) {
	rest, ok := strings.CutPrefix(encodedHash, "$argon2id$")
	if !ok {
		return nil, nil, nil, ErrInvalidHash
	}
	sections := strings.Split(rest, "$")
	if len(sections) != 4 {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(sections[0], "v=%d", &version); err != nil {
		return nil, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	p := &Params{}
	if _, err := fmt.Sscanf(sections[1], "m=%d,t=%d,p=%d",
		&p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(sections[2])
	if err != nil {
		return nil, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))

	digest, err := base64.RawStdEncoding.Strict().DecodeString(sections[3])
	if err != nil {
		return nil, nil, nil, ErrInvalidHash
	}
	p.KeyLength = uint32(len(digest))

	return p, salt, digest, nil
}
