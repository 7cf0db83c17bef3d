package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sha256("abc")
const abcHex = "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestSumKnownVector(t *testing.T) {
	if got := Sum([]byte("abc")).Hex(); got != abcHex {
		t.Fatalf("unexpected digest: %s", got)
	}
}

func TestHashMatchesSum(t *testing.T) {
	payload := bytes.Repeat([]byte("document-bytes-"), 20000)
	streamed, err := Hash(context.Background(), bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streamed != Sum(payload) {
		t.Fatalf("streamed digest %s differs from in-memory digest %s", streamed, Sum(payload))
	}
}

func TestHashDeterministic(t *testing.T) {
	payload := []byte("same content")
	first, _ := Hash(context.Background(), bytes.NewReader(payload))
	second, _ := Hash(context.Background(), bytes.NewReader(payload))
	if first != second {
		t.Fatalf("expected identical digests, got %s and %s", first, second)
	}
}

func TestHashSingleBitFlipChangesDigest(t *testing.T) {
	payload := bytes.Repeat([]byte{0x55}, 4096)
	original := Sum(payload)
	for _, position := range []int{0, 1, 2047, 4095} {
		mutated := append([]byte(nil), payload...)
		mutated[position] ^= 0x01
		if Sum(mutated) == original {
			t.Fatalf("bit flip at %d did not change digest", position)
		}
	}
}

type failingReader struct {
	served bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.served {
		r.served = true
		return copy(p, "partial"), nil
	}
	return 0, io.ErrUnexpectedEOF
}

func TestHashPartialReadProducesNoDigest(t *testing.T) {
	result, err := Hash(context.Background(), &failingReader{})
	if err == nil {
		t.Fatal("expected error for failing reader")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if !result.IsZero() {
		t.Fatalf("expected zero digest, got %s", result)
	}
}

func TestHashCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Hash(ctx, strings.NewReader("content"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHashNilReader(t *testing.T) {
	if _, err := Hash(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil reader")
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	result, err := HashFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Hex() != abcHex {
		t.Fatalf("unexpected digest: %s", result)
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestHashFileEmptyPath(t *testing.T) {
	if _, err := HashFile(context.Background(), "  "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestParse(t *testing.T) {
	cases := []string{
		abcHex,
		strings.ToUpper(abcHex[2:]),
		"0X" + abcHex[2:],
		"  " + abcHex + "  ",
	}
	for _, tc := range cases {
		parsed, err := Parse(tc)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc, err)
		}
		if parsed.Hex() != abcHex {
			t.Fatalf("unexpected parse result for %q: %s", tc, parsed)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "0x", "0x1234", abcHex + "00", "0x" + strings.Repeat("zz", Size)}
	for _, tc := range cases {
		if _, err := Parse(tc); !errors.Is(err, ErrInvalidDigest) {
			t.Fatalf("expected ErrInvalidDigest for %q, got %v", tc, err)
		}
	}
}

func TestDigestJSONText(t *testing.T) {
	type wrapper struct {
		Hash Digest `json:"hash"`
	}
	encoded, err := json.Marshal(wrapper{Hash: MustParse(abcHex)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(encoded) != `{"hash":"`+abcHex+`"}` {
		t.Fatalf("unexpected JSON: %s", encoded)
	}

	var decoded wrapper
	if err := json.Unmarshal([]byte(`{"hash":"`+strings.ToUpper(abcHex[2:])+`"}`), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Hash.Hex() != abcHex {
		t.Fatalf("unexpected decoded digest: %s", decoded.Hash)
	}
}

func TestBytesReturnsCopy(t *testing.T) {
	d := Sum([]byte("abc"))
	raw := d.Bytes()
	raw[0] ^= 0xff
	if d.Hex() != abcHex {
		t.Fatal("Bytes must not alias the digest")
	}
}
