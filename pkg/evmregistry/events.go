package evmregistry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ParseStoredEvent decodes a DocumentStored log.
func ParseStoredEvent(log types.Log) (StoredEvent, error) {
	event, ok := registryABI.Events[eventStored]
	if !ok {
		return StoredEvent{}, fmt.Errorf("event %s missing from ABI", eventStored)
	}
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return StoredEvent{}, fmt.Errorf("log is not a %s event", eventStored)
	}
	values, err := registryABI.Unpack(eventStored, log.Data)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("failed to decode %s data: %w", eventStored, err)
	}
	timestamp, ok := values[0].(*big.Int)
	if !ok {
		return StoredEvent{}, fmt.Errorf("unexpected %s timestamp %T", eventStored, values[0])
	}
	return StoredEvent{
		Hash:      log.Topics[1],
		Signer:    common.BytesToAddress(log.Topics[2].Bytes()),
		Timestamp: timestamp,
		TxHash:    log.TxHash,
	}, nil
}

// StoredEvents returns every DocumentStored event in logs, skipping others.
func StoredEvents(logs []*types.Log) []StoredEvent {
	events := make([]StoredEvent, 0, len(logs))
	for _, log := range logs {
		if log == nil {
			continue
		}
		event, err := ParseStoredEvent(*log)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}
