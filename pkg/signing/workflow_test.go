package signing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
)

var fixedTime = time.Unix(1_700_000_123, 0)

type flakyRegistry struct {
	*registry.Memory
	mu       sync.Mutex
	failures int
	appends  int
}

func (r *flakyRegistry) Append(ctx context.Context, record registry.Record) (registry.Receipt, error) {
	r.mu.Lock()
	r.appends++
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindUnreachable, errors.New("connection refused"))
	}
	return r.Memory.Append(ctx, record)
}

type countingSigner struct {
	*identity.Provider
	mu    sync.Mutex
	calls int
}

func (s *countingSigner) SignAs(ctx context.Context, account identity.Account, message []byte) (identity.Signature, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Provider.SignAs(ctx, account, message)
}

type countingObserver struct {
	signatures int
	appends    []string
}

func (o *countingObserver) ObserveSignature()           { o.signatures++ }
func (o *countingObserver) ObserveAppend(result string) { o.appends = append(o.appends, result) }

func newSigner(t *testing.T) *countingSigner {
	t.Helper()
	provider, err := identity.New(identity.Config{
		Mnemonic: shared.Secret("test test test test test test test test test test test junk"),
		Count:    3,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return &countingSigner{Provider: provider}
}

func selectAccount(t *testing.T, signer *countingSigner, index int) identity.Account {
	t.Helper()
	account, err := signer.Select(index)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	return account
}

func TestSignAndStore(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	account := selectAccount(t, signer, 1)
	reg := registry.NewMemory()
	observer := &countingObserver{}
	workflow, err := New(signer, reg, WithClock(func() time.Time { return fixedTime }), WithObserver(observer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := digest.Sum([]byte("contract.pdf"))
	record, receipt, err := workflow.SignAndStore(ctx, d, account)
	if err != nil {
		t.Fatalf("sign and store failed: %v", err)
	}
	if record.Signer != account.Address || record.Timestamp != uint64(fixedTime.Unix()) || record.Digest != d {
		t.Fatalf("unexpected record %+v", record)
	}
	if receipt.Backend != registry.BackendMemory {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	recovered, err := identity.RecoverAddress([]byte(Message(d)), record.Signature)
	if err != nil || recovered != account.Address {
		t.Fatalf("signature does not recover to signer: %s (%v)", recovered.Hex(), err)
	}
	stored, err := reg.Lookup(ctx, d)
	if err != nil || stored.Signer != account.Address {
		t.Fatalf("record not stored: %+v (%v)", stored, err)
	}
	if observer.signatures != 1 || len(observer.appends) != 1 || observer.appends[0] != "ok" {
		t.Fatalf("unexpected observations %+v", observer)
	}
}

func TestSignRequiresActiveAccount(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	workflow, _ := New(signer, registry.NewMemory())
	d := digest.Sum([]byte("x"))

	account, _ := signer.Account(1)
	if _, _, err := workflow.SignAndStore(ctx, d, account); !errors.Is(err, identity.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	selectAccount(t, signer, 2)
	if _, _, err := workflow.SignAndStore(ctx, d, account); !errors.Is(err, identity.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for inactive account, got %v", err)
	}
	if signer.calls != 0 {
		t.Fatalf("expected no signatures, got %d", signer.calls)
	}
}

func TestConfirmationGates(t *testing.T) {
	ctx := context.Background()
	d := digest.Sum([]byte("gated"))

	t.Run("decline signing", func(t *testing.T) {
		signer := newSigner(t)
		account := selectAccount(t, signer, 1)
		reg := registry.NewMemory()
		workflow, _ := New(signer, reg, WithConfirmer(ConfirmFunc(func(_ context.Context, prompt Prompt) (bool, error) {
			return prompt.Stage != StageSign, nil
		})))
		if _, _, err := workflow.SignAndStore(ctx, d, account); !errors.Is(err, ErrDeclined) {
			t.Fatalf("expected ErrDeclined, got %v", err)
		}
		if signer.calls != 0 {
			t.Fatal("declined signing must not sign")
		}
	})

	t.Run("decline storing", func(t *testing.T) {
		signer := newSigner(t)
		account := selectAccount(t, signer, 1)
		reg := registry.NewMemory()
		var prompts []Prompt
		workflow, _ := New(signer, reg, WithConfirmer(ConfirmFunc(func(_ context.Context, prompt Prompt) (bool, error) {
			prompts = append(prompts, prompt)
			return prompt.Stage != StageStore, nil
		})))
		_, _, err := workflow.SignAndStore(ctx, d, account)
		if !errors.Is(err, ErrDeclined) {
			t.Fatalf("expected ErrDeclined, got %v", err)
		}
		var pendingErr *PendingError
		if !errors.As(err, &pendingErr) || pendingErr.Pending.Record.Digest != d {
			t.Fatalf("expected pending record, got %v", err)
		}
		if exists, _ := reg.Exists(ctx, d); exists {
			t.Fatal("declined store must not append")
		}
		if len(prompts) != 2 || prompts[0].Message != Message(d) || prompts[1].Record == nil {
			t.Fatalf("unexpected prompts %+v", prompts)
		}
	})

	t.Run("confirmer failure", func(t *testing.T) {
		signer := newSigner(t)
		account := selectAccount(t, signer, 1)
		boom := errors.New("terminal closed")
		workflow, _ := New(signer, registry.NewMemory(), WithConfirmer(ConfirmFunc(func(context.Context, Prompt) (bool, error) {
			return false, boom
		})))
		if _, _, err := workflow.SignAndStore(ctx, d, account); !errors.Is(err, boom) {
			t.Fatalf("expected confirmer error, got %v", err)
		}
	})
}

func TestStoreRetryDoesNotResign(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	account := selectAccount(t, signer, 1)
	reg := &flakyRegistry{Memory: registry.NewMemory(), failures: 1}
	observer := &countingObserver{}
	workflow, _ := New(signer, reg, WithObserver(observer))
	d := digest.Sum([]byte("retry"))

	record, _, err := workflow.SignAndStore(ctx, d, account)
	var pendingErr *PendingError
	if !errors.As(err, &pendingErr) {
		t.Fatalf("expected PendingError, got %v", err)
	}
	if !registry.IsConnectivity(err) {
		t.Fatalf("expected connectivity cause, got %v", err)
	}
	if record.Digest != d || reg.appends != 1 {
		t.Fatalf("expected one append attempt, got %d", reg.appends)
	}

	receipt, err := workflow.Store(ctx, pendingErr.Pending)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if receipt.TransactionID == "" {
		t.Fatal("expected receipt")
	}
	if signer.calls != 1 {
		t.Fatalf("expected a single signature, got %d", signer.calls)
	}
	if reg.appends != 2 {
		t.Fatalf("expected two append attempts in total, got %d", reg.appends)
	}
	if len(observer.appends) != 2 || observer.appends[0] != "unreachable" || observer.appends[1] != "ok" {
		t.Fatalf("unexpected append observations %v", observer.appends)
	}
}

func TestStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	account := selectAccount(t, signer, 1)
	workflow, _ := New(signer, registry.NewMemory())
	d := digest.Sum([]byte("twice"))

	if _, _, err := workflow.SignAndStore(ctx, d, account); err != nil {
		t.Fatalf("first store failed: %v", err)
	}
	if _, _, err := workflow.SignAndStore(ctx, d, account); !errors.Is(err, registry.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestSignedAccountIsCapturedAtStart(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)
	account := selectAccount(t, signer, 1)
	reg := registry.NewMemory()
	switched := false
	workflow, _ := New(signer, reg, WithConfirmer(ConfirmFunc(func(_ context.Context, prompt Prompt) (bool, error) {
		if prompt.Stage == StageSign && !switched {
			switched = true
			_, err := signer.Select(2)
			return err == nil, err
		}
		return true, nil
	})))

	record, _, err := workflow.SignAndStore(ctx, digest.Sum([]byte("switch")), account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Signer != account.Address {
		t.Fatalf("expected signer %s, got %s", account.Address.Hex(), record.Signer.Hex())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, registry.NewMemory()); err == nil {
		t.Fatal("expected error without signer")
	}
	if _, err := New(newSigner(t), nil); err == nil {
		t.Fatal("expected error without registry")
	}
}
