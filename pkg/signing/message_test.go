package signing

import (
	"testing"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
)

func TestMessageRoundTrip(t *testing.T) {
	d := digest.Sum([]byte("abc"))
	message := Message(d)
	want := "Signing document with hash: 0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if message != want {
		t.Fatalf("unexpected message %q", message)
	}
	parsed, err := ParseMessage(message)
	if err != nil || parsed != d {
		t.Fatalf("round trip failed: %s (%v)", parsed.Hex(), err)
	}
}

func TestParseMessageRejects(t *testing.T) {
	for _, message := range []string{
		"",
		"Signing hash: 0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"Signing document with hash: 0x1234",
		"Signing document with hash: 0xBA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD",
		"Signing document with hash: ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"Signing document with hash: 0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad ",
	} {
		if _, err := ParseMessage(message); err == nil {
			t.Fatalf("expected %q to be rejected", message)
		}
	}
}
