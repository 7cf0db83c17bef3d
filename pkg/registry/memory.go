package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
)

const BackendMemory = "memory"

// Memory is an in-process registry. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records []Record
	index   map[digest.Digest]int
}

// NewMemory creates a new Memory.
func NewMemory() *Memory {
	return &Memory{index: map[digest.Digest]int{}}
}

func (m *Memory) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.records)), nil
}

func (m *Memory) DigestAt(ctx context.Context, index uint64) (digest.Digest, error) {
	if err := ctx.Err(); err != nil {
		return digest.Digest{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index >= uint64(len(m.records)) {
		return digest.Digest{}, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, index, len(m.records))
	}
	return m.records[index].Digest, nil
}

func (m *Memory) Lookup(ctx context.Context, d digest.Digest) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	position, ok := m.index[d]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, d.Hex())
	}
	return cloneRecord(m.records[position]), nil
}

func (m *Memory) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[d]
	return ok, nil
}

func (m *Memory) Append(ctx context.Context, record Record) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if err := record.Validate(); err != nil {
		return Receipt{}, NewStorageError("append", KindRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[record.Digest]; ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrAlreadyRegistered, record.Digest.Hex())
	}
	position := len(m.records)
	m.records = append(m.records, cloneRecord(record))
	m.index[record.Digest] = position

	return Receipt{
		TransactionID: fmt.Sprintf("%s-%d", BackendMemory, position),
		Index:         uint64(position),
		IndexKnown:    true,
		Backend:       BackendMemory,
	}, nil
}

// Records returns up to limit records starting at offset.
func (m *Memory) Records(ctx context.Context, offset uint64, limit uint64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Window(m.records, offset, limit), nil
}

// Window copies up to limit records starting at offset. A zero limit means
// everything after offset.
func Window(records []Record, offset uint64, limit uint64) []Record {
	total := uint64(len(records))
	if offset >= total {
		return nil
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	out := make([]Record, 0, end-offset)
	for _, record := range records[offset:end] {
		out = append(out, cloneRecord(record))
	}
	return out
}

func cloneRecord(record Record) Record {
	out := record
	out.Signature = append([]byte(nil), record.Signature...)
	return out
}
