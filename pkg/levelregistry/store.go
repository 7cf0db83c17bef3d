package levelregistry

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	BackendLevelDB = "leveldb"

	countKey       = "count"
	indexKeyPrefix = "idx_"
	docKeyPrefix   = "doc_"
)

type Options struct {
	Logger *zerolog.Logger
}

// Store is a registry.Registry on LevelDB. Appends are serialized; reads use
// snapshots.
type Store struct {
	db     *leveldb.DB
	path   string
	logger zerolog.Logger

	batchLock sync.Mutex
}

// Open opens or creates the registry at path.
func Open(path string, options Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("registry path is required")
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 8 * opt.MiB,
		WriteBuffer:        4 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	return newStore(db, path, options), nil
}

// OpenMemory opens a registry that lives only in memory.
func OpenMemory(options Options) (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory registry database: %w", err)
	}
	return newStore(db, "", options), nil
}

func newStore(db *leveldb.DB, path string, options Options) *Store {
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = *options.Logger
	}
	logger.Debug().Str("path", path).Msg("registry database opened")
	return &Store{db: db, path: path, logger: logger}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return readCount(s.db)
}

func (s *Store) DigestAt(ctx context.Context, index uint64) (digest.Digest, error) {
	if err := ctx.Err(); err != nil {
		return digest.Digest{}, err
	}
	data, err := s.db.Get(indexKey(index), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return digest.Digest{}, fmt.Errorf("%w: %d", registry.ErrIndexOutOfRange, index)
	}
	if err != nil {
		return digest.Digest{}, storageError("digest_at", err)
	}
	if len(data) != digest.Size {
		return digest.Digest{}, registry.NewStorageError("digest_at", registry.KindDecode, fmt.Errorf("index %d holds %d bytes", index, len(data)))
	}
	var d digest.Digest
	copy(d[:], data)
	return d, nil
}

func (s *Store) Lookup(ctx context.Context, d digest.Digest) (registry.Record, error) {
	if err := ctx.Err(); err != nil {
		return registry.Record{}, err
	}
	return readRecord(s.db, d)
}

func (s *Store) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	exists, err := s.db.Has(docKey(d), nil)
	if err != nil {
		return false, storageError("exists", err)
	}
	return exists, nil
}

// Append writes the record, its index entry and the new count in one batch.
func (s *Store) Append(ctx context.Context, record registry.Record) (registry.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return registry.Receipt{}, err
	}
	if err := record.Validate(); err != nil {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return registry.Receipt{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	s.batchLock.Lock()
	defer s.batchLock.Unlock()

	exists, err := s.db.Has(docKey(record.Digest), nil)
	if err != nil {
		return registry.Receipt{}, storageError("append", err)
	}
	if exists {
		return registry.Receipt{}, fmt.Errorf("%w: %s", registry.ErrAlreadyRegistered, record.Digest.Hex())
	}
	position, err := readCount(s.db)
	if err != nil {
		return registry.Receipt{}, err
	}

	batch := new(leveldb.Batch)
	batch.Put(docKey(record.Digest), payload)
	batch.Put(indexKey(position), record.Digest.Bytes())
	batch.Put([]byte(countKey), encodeCount(position+1))
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return registry.Receipt{}, storageError("append", err)
	}

	s.logger.Debug().Uint64("index", position).Str("digest", record.Digest.Hex()).Msg("record stored")
	return registry.Receipt{
		TransactionID: fmt.Sprintf("%s-%d", BackendLevelDB, position),
		Index:         position,
		IndexKnown:    true,
		Backend:       BackendLevelDB,
	}, nil
}

// Records reads a window of the registry from one snapshot.
func (s *Store) Records(ctx context.Context, offset uint64, limit uint64) ([]registry.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := s.db.GetSnapshot()
	if err != nil {
		return nil, storageError("records", err)
	}
	defer snapshot.Release()

	total, err := readCount(snapshot)
	if err != nil {
		return nil, err
	}
	if offset >= total {
		return []registry.Record{}, nil
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}

	iterator := snapshot.NewIterator(&util.Range{Start: indexKey(offset), Limit: indexKey(end)}, nil)
	defer iterator.Release()

	records := make([]registry.Record, 0, end-offset)
	for iterator.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value := iterator.Value()
		if len(value) != digest.Size {
			return nil, registry.NewStorageError("records", registry.KindDecode, fmt.Errorf("index entry %q holds %d bytes", iterator.Key(), len(value)))
		}
		var d digest.Digest
		copy(d[:], value)
		record, err := readRecord(snapshot, d)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := iterator.Error(); err != nil {
		return nil, storageError("records", err)
	}
	return records, nil
}

type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

func readCount(source reader) (uint64, error) {
	data, err := source.Get([]byte(countKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storageError("count", err)
	}
	if len(data) != 8 {
		return 0, registry.NewStorageError("count", registry.KindDecode, fmt.Errorf("count holds %d bytes", len(data)))
	}
	return binary.BigEndian.Uint64(data), nil
}

func readRecord(source reader, d digest.Digest) (registry.Record, error) {
	data, err := source.Get(docKey(d), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return registry.Record{}, fmt.Errorf("%w: %s", registry.ErrNotFound, d.Hex())
	}
	if err != nil {
		return registry.Record{}, storageError("lookup", err)
	}
	var record registry.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return registry.Record{}, registry.NewStorageError("lookup", registry.KindDecode, err)
	}
	return record, nil
}

func storageError(op string, err error) error {
	if leveldberrors.IsCorrupted(err) {
		return registry.NewStorageError(op, registry.KindDecode, err)
	}
	return registry.NewStorageError(op, registry.KindUnreachable, err)
}

// indexKey zero-pads the position so keys sort in append order.
func indexKey(index uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", indexKeyPrefix, index))
}

func docKey(d digest.Digest) []byte {
	return []byte(docKeyPrefix + d.Hex())
}

func encodeCount(count uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, count)
	return out
}
