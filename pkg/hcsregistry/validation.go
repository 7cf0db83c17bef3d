package hcsregistry

import (
	"fmt"
	"strings"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const maxMemoLength = 500

// MessageFromRecord builds the topic payload for record.
func MessageFromRecord(record registry.Record) Message {
	return Message{
		P:         Protocol,
		Op:        OperationRegister,
		Hash:      record.Digest.Hex(),
		Signer:    record.Signer.Hex(),
		Timestamp: record.Timestamp,
		Signature: hexutil.Encode(record.Signature),
	}
}

// ValidateMessage checks a payload read from or written to the topic.
func ValidateMessage(message Message) error {
	if message.P != Protocol {
		return fmt.Errorf("protocol must be %s", Protocol)
	}
	if message.Op != OperationRegister {
		return fmt.Errorf("operation %q is not supported", message.Op)
	}
	if _, err := digest.Parse(message.Hash); err != nil {
		return fmt.Errorf("register requires a valid hash: %w", err)
	}
	if !common.IsHexAddress(strings.TrimSpace(message.Signer)) {
		return fmt.Errorf("register requires a valid signer address")
	}
	if message.Timestamp == 0 {
		return fmt.Errorf("register requires a timestamp")
	}
	signature, err := hexutil.Decode(strings.TrimSpace(message.Signature))
	if err != nil || len(signature) == 0 {
		return fmt.Errorf("register requires a hex signature")
	}
	if len(message.Memo) > maxMemoLength {
		return fmt.Errorf("memo must not exceed %d characters", maxMemoLength)
	}
	return nil
}

// Record converts a validated message into a registry record.
func (m Message) Record() (registry.Record, error) {
	if err := ValidateMessage(m); err != nil {
		return registry.Record{}, err
	}
	d, _ := digest.Parse(m.Hash)
	signature, _ := hexutil.Decode(strings.TrimSpace(m.Signature))
	return registry.Record{
		Digest:    d,
		Signer:    common.HexToAddress(strings.TrimSpace(m.Signer)),
		Timestamp: m.Timestamp,
		Signature: signature,
	}, nil
}
