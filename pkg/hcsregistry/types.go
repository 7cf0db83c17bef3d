package hcsregistry

import (
	"context"
	"net/http"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	Protocol   = "hsig-1"
	BackendHCS = "hcs"
	DefaultTTL = int64(86400)
)

type Operation string

const OperationRegister Operation = "register"

// Message is the topic payload of one registration.
type Message struct {
	P         string    `json:"p"`
	Op        Operation `json:"op"`
	Hash      string    `json:"hash"`
	Signer    string    `json:"signer"`
	Timestamp uint64    `json:"ts"`
	Signature string    `json:"sig"`
	Memo      string    `json:"m,omitempty"`
}

// Submitter executes topic transactions against the network.
type Submitter interface {
	CreateTopic(ctx context.Context, transaction *hedera.TopicCreateTransaction) (CreateRegistryResult, error)
	SubmitMessage(ctx context.Context, transaction *hedera.TopicMessageSubmitTransaction) (SubmitResult, error)
}

type ClientConfig struct {
	OperatorAccountID  string
	OperatorPrivateKey shared.Secret
	Network            string
	TopicID            string
	MirrorBaseURL      string
	MirrorAPIKey       shared.Secret
	HTTPClient         *http.Client
	Limiter            *rate.Limiter
	Logger             *zerolog.Logger
	// Submitter replaces the Hedera network client; operator credentials
	// are then optional.
	Submitter Submitter
}

type CreateRegistryOptions struct {
	TTL                 int64
	UseOperatorAsAdmin  bool
	UseOperatorAsSubmit bool
	AdminKey            string
	SubmitKey           string
}

type CreateRegistryResult struct {
	TopicID       string `json:"topic_id" yaml:"topic_id"`
	TransactionID string `json:"transaction_id" yaml:"transaction_id"`
}

type SubmitResult struct {
	TransactionID  string `json:"transaction_id"`
	SequenceNumber uint64 `json:"sequence_number"`
}
