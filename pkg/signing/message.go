package signing

import (
	"fmt"
	"strings"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
)

const MessagePrefix = "Signing document with hash: "

// Message is the text an account signs for d.
func Message(d digest.Digest) string {
	return MessagePrefix + d.Hex()
}

// ParseMessage extracts the digest from a canonical signing message.
func ParseMessage(message string) (digest.Digest, error) {
	if !strings.HasPrefix(message, MessagePrefix) {
		return digest.Digest{}, fmt.Errorf("not a document signing message")
	}
	d, err := digest.Parse(strings.TrimPrefix(message, MessagePrefix))
	if err != nil {
		return digest.Digest{}, err
	}
	if message != Message(d) {
		return digest.Digest{}, fmt.Errorf("signing message is not in canonical form")
	}
	return d, nil
}
