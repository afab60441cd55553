package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params are the cost settings stored alongside every hash.
type argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// defaultArgon2 is used for new hashes. Verify reads the settings back from
// the encoded hash, so changing these does not break existing config.
var defaultArgon2 = argon2Params{Memory: 64 * 1024, Time: 1, Threads: 4, KeyLen: 32}

const (
	argon2SaltLen   = 16
	argon2MaxMemory = 1 << 20 // 1 GiB
	argon2MaxTime   = 16
)

var errMalformedHash = errors.New("malformed argon2id hash")

// Argon2HashService implements ports.HashService with Argon2id. Hashes use
// the PHC string form that `ows hash-password` prints for admin.password_hash:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2HashService struct{}

func NewArgon2HashService() *Argon2HashService {
	return &Argon2HashService{}
}

func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	p := defaultArgon2
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return encodeArgon2(p, salt, key), nil
}

// Verify reports whether password matches encodedHash. A malformed hash is
// an error rather than a mismatch so a bad admin.password_hash is visible.
func (s *Argon2HashService) Verify(password string, encodedHash string) (bool, error) {
	p, salt, want, err := decodeArgon2(encodedHash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func encodeArgon2(p argon2Params, salt, key []byte) string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key))
}

func decodeArgon2(encoded string) (p argon2Params, salt, key []byte, err error) {
	// "" + "argon2id" + version + params + salt + key
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return p, nil, nil, fmt.Errorf("%w: expected 6 fields, got %d", errMalformedHash, len(fields))
	}
	if fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: algorithm %q", errMalformedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %v", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", errMalformedHash, version)
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %v", errMalformedHash, err)
	}
	if p.Memory == 0 || p.Memory > argon2MaxMemory || p.Time == 0 || p.Time > argon2MaxTime || p.Threads == 0 {
		return p, nil, nil, fmt.Errorf("%w: params out of range", errMalformedHash)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %v", errMalformedHash, err)
	}
	if len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: empty key", errMalformedHash)
	}
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
