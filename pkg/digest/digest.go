package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	Size      = sha256.Size
	Prefix    = "0x"
	chunkSize = 64 * 1024
)

var (
	ErrEmptyPath     = errors.New("file path is required")
	ErrInvalidDigest = errors.New("invalid document digest")
)

// Digest is a SHA-256 document fingerprint.
type Digest [Size]byte

// Sum hashes an in-memory payload.
func Sum(payload []byte) Digest {
	return Digest(sha256.Sum256(payload))
}

// Hash streams reader into SHA-256. Any read error or context cancellation
// aborts the hash and no digest is produced.
func Hash(ctx context.Context, reader io.Reader) (Digest, error) {
	if reader == nil {
		return Digest{}, fmt.Errorf("reader is required")
	}

	hasher := sha256.New()
	buffer := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return Digest{}, fmt.Errorf("hash aborted: %w", err)
		}

		read, err := reader.Read(buffer)
		if read > 0 {
			hasher.Write(buffer[:read])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Digest{}, fmt.Errorf("failed to read document: %w", err)
		}
	}

	var result Digest
	copy(result[:], hasher.Sum(nil))
	return result, nil
}

// HashFile hashes the file at path.
func HashFile(ctx context.Context, path string) (Digest, error) {
	if strings.TrimSpace(path) == "" {
		return Digest{}, ErrEmptyPath
	}

	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	return Hash(ctx, file)
}

// Parse parses the provided input value. The 0x prefix is optional and hex
// case is not significant.
func Parse(raw string) (Digest, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 && (trimmed[:2] == "0x" || trimmed[:2] == "0X") {
		trimmed = trimmed[2:]
	}
	if len(trimmed) != Size*2 {
		return Digest{}, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidDigest, Size*2, len(trimmed))
	}

	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}

	var result Digest
	copy(result[:], decoded)
	return result, nil
}

// MustParse is Parse for constants and tests.
func MustParse(raw string) Digest {
	result, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return result
}

// Hex returns the canonical 0x-prefixed lowercase form.
func (d Digest) Hex() string {
	return Prefix + hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// Bytes returns a copy of the digest bytes.
func (d Digest) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
