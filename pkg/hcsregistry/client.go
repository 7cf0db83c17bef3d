package hcsregistry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/mirror"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
)

const pageSize = 100

var (
	ErrTopicRequired    = errors.New("registry topic ID is required")
	ErrNotRegistryTopic = errors.New("topic is not a document registry")
)

// Client is a registry.Registry backed by a consensus topic.
type Client struct {
	topicID      string
	submitter    Submitter
	mirrorClient *mirror.Client
	operatorKey  *hedera.PrivateKey
	logger       zerolog.Logger

	// stateMu is never held across mirror requests.
	stateMu      sync.RWMutex
	verified     bool
	lastSequence int64
	records      []registry.Record
	index        map[digest.Digest]int
}

// NewClient creates a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network:    network,
		BaseURL:    config.MirrorBaseURL,
		APIKey:     config.MirrorAPIKey,
		HTTPClient: config.HTTPClient,
		Limiter:    config.Limiter,
		Logger:     &logger,
	})
	if err != nil {
		return nil, err
	}

	client := &Client{
		topicID:      strings.TrimSpace(config.TopicID),
		submitter:    config.Submitter,
		mirrorClient: mirrorClient,
		logger:       logger,
		index:        map[digest.Digest]int{},
	}
	if client.topicID != "" {
		if _, err := hedera.TopicIDFromString(client.topicID); err != nil {
			return nil, fmt.Errorf("invalid registry topic ID: %w", err)
		}
	}

	hasOperator := strings.TrimSpace(config.OperatorAccountID) != "" || !config.OperatorPrivateKey.IsEmpty()
	if client.submitter != nil && !hasOperator {
		return client, nil
	}

	hederaClient, operatorKey, err := shared.NewOperatorClient(shared.OperatorConfig{
		AccountID:  config.OperatorAccountID,
		PrivateKey: config.OperatorPrivateKey,
		Network:    network,
	})
	if err != nil {
		return nil, err
	}
	client.operatorKey = &operatorKey
	if client.submitter == nil {
		client.submitter = &hederaSubmitter{client: hederaClient}
	}
	return client, nil
}

func (c *Client) TopicID() string {
	return c.topicID
}

// MirrorClient returns the configured mirror node client.
func (c *Client) MirrorClient() *mirror.Client {
	return c.mirrorClient
}

// CreateRegistry creates a new registry topic. The client keeps using the
// topic it was configured with.
func (c *Client) CreateRegistry(ctx context.Context, options CreateRegistryOptions) (CreateRegistryResult, error) {
	if c.submitter == nil {
		return CreateRegistryResult{}, fmt.Errorf("no submitter configured")
	}

	params := CreateRegistryTxParams{TTL: options.TTL}
	adminKey, err := c.resolvePublicKey(options.AdminKey, options.UseOperatorAsAdmin)
	if err != nil {
		return CreateRegistryResult{}, err
	}
	if adminKey != nil {
		params.AdminKey = *adminKey
	}
	submitKey, err := c.resolvePublicKey(options.SubmitKey, options.UseOperatorAsSubmit)
	if err != nil {
		return CreateRegistryResult{}, err
	}
	if submitKey != nil {
		params.SubmitKey = *submitKey
	}

	result, err := c.submitter.CreateTopic(ctx, BuildCreateRegistryTx(params))
	if err != nil {
		return CreateRegistryResult{}, registry.Classify("create_topic", err)
	}
	c.logger.Info().Str("topic_id", result.TopicID).Str("transaction_id", result.TransactionID).Msg("registry topic created")
	return result, nil
}

func (c *Client) Count(ctx context.Context) (uint64, error) {
	if err := c.refresh(ctx); err != nil {
		return 0, err
	}
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return uint64(len(c.records)), nil
}

func (c *Client) DigestAt(ctx context.Context, index uint64) (digest.Digest, error) {
	if err := c.refresh(ctx); err != nil {
		return digest.Digest{}, err
	}
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if index >= uint64(len(c.records)) {
		return digest.Digest{}, fmt.Errorf("%w: %d >= %d", registry.ErrIndexOutOfRange, index, len(c.records))
	}
	return c.records[index].Digest, nil
}

func (c *Client) Lookup(ctx context.Context, d digest.Digest) (registry.Record, error) {
	if err := c.refresh(ctx); err != nil {
		return registry.Record{}, err
	}
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	position, ok := c.index[d]
	if !ok {
		return registry.Record{}, fmt.Errorf("%w: %s", registry.ErrNotFound, d.Hex())
	}
	return registry.Window(c.records, uint64(position), 1)[0], nil
}

func (c *Client) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	if err := c.refresh(ctx); err != nil {
		return false, err
	}
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	_, ok := c.index[d]
	return ok, nil
}

// Records returns up to limit records starting at offset.
func (c *Client) Records(ctx context.Context, offset uint64, limit uint64) ([]registry.Record, error) {
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return registry.Window(c.records, offset, limit), nil
}

// Append submits a registration. Digests already visible on the topic are
// rejected before anything is submitted.
func (c *Client) Append(ctx context.Context, record registry.Record) (registry.Receipt, error) {
	if err := record.Validate(); err != nil {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, err)
	}
	exists, err := c.Exists(ctx, record.Digest)
	if err != nil {
		return registry.Receipt{}, err
	}
	if exists {
		return registry.Receipt{}, fmt.Errorf("%w: %s", registry.ErrAlreadyRegistered, record.Digest.Hex())
	}
	if c.submitter == nil {
		return registry.Receipt{}, fmt.Errorf("no submitter configured")
	}

	transaction, err := BuildRegisterTx(RegisterTxParams{
		RegistryTopicID: c.topicID,
		Message:         MessageFromRecord(record),
	})
	if err != nil {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, err)
	}

	result, err := c.submitter.SubmitMessage(ctx, transaction)
	if err != nil {
		return registry.Receipt{}, registry.Classify("append", err)
	}

	c.logger.Info().
		Str("topic_id", c.topicID).
		Str("digest", record.Digest.Hex()).
		Uint64("sequence", result.SequenceNumber).
		Msg("registration submitted")

	return registry.Receipt{
		TransactionID: result.TransactionID,
		Backend:       BackendHCS,
	}, nil
}

// refresh pulls messages newer than the last one seen and folds them into
// the local view.
func (c *Client) refresh(ctx context.Context) error {
	if c.topicID == "" {
		return ErrTopicRequired
	}

	c.stateMu.RLock()
	verified := c.verified
	after := c.lastSequence
	c.stateMu.RUnlock()

	if !verified {
		info, err := c.mirrorClient.GetTopicInfo(ctx, c.topicID)
		if err != nil {
			return mirrorFailure(ctx, "topic_info", err)
		}
		if _, ok := ParseTopicMemo(info.Memo); !ok {
			return fmt.Errorf("%w: %s has memo %q", ErrNotRegistryTopic, c.topicID, info.Memo)
		}
	}

	options := mirror.MessageQueryOptions{Limit: pageSize, Order: "asc"}
	if after > 0 {
		options.SequenceNumber = fmt.Sprintf("gt:%d", after)
	}
	messages, err := c.mirrorClient.GetTopicMessages(ctx, c.topicID, options)
	if err != nil {
		return mirrorFailure(ctx, "read_messages", err)
	}

	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.verified = true
	// Concurrent refreshes may fold overlapping pages; sequence numbers dedupe them.
	for _, item := range messages {
		if item.SequenceNumber <= c.lastSequence {
			continue
		}
		c.lastSequence = item.SequenceNumber
		if item.ChunkInfo != nil && item.ChunkInfo.Total > 1 {
			continue
		}

		var message Message
		if err := mirror.DecodeMessageJSON(item, &message); err != nil {
			c.logger.Debug().Int64("sequence", item.SequenceNumber).Err(err).Msg("skipping undecodable message")
			continue
		}
		record, err := message.Record()
		if err != nil {
			c.logger.Debug().Int64("sequence", item.SequenceNumber).Err(err).Msg("skipping invalid message")
			continue
		}
		if _, ok := c.index[record.Digest]; ok {
			c.logger.Debug().Int64("sequence", item.SequenceNumber).Str("digest", record.Digest.Hex()).Msg("ignoring repeated registration")
			continue
		}
		c.index[record.Digest] = len(c.records)
		c.records = append(c.records, record)
	}
	return nil
}

func mirrorFailure(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return classifyMirror(op, err)
}

func classifyMirror(op string, err error) error {
	var requestErr *mirror.RequestError
	switch {
	case errors.As(err, &requestErr):
		if requestErr.StatusCode == 0 || requestErr.StatusCode >= 500 {
			return registry.NewStorageError(op, registry.KindUnreachable, err)
		}
		return registry.NewStorageError(op, registry.KindRejected, err)
	case errors.Is(err, mirror.ErrMalformedResponse):
		return registry.NewStorageError(op, registry.KindDecode, err)
	default:
		return registry.Classify(op, err)
	}
}

func (c *Client) resolvePublicKey(rawKey string, useOperator bool) (*hedera.PublicKey, error) {
	if useOperator {
		if c.operatorKey == nil {
			return nil, fmt.Errorf("operator key is not configured")
		}
		publicKey := c.operatorKey.PublicKey()
		return &publicKey, nil
	}

	if strings.TrimSpace(rawKey) == "" {
		return nil, nil
	}

	publicKey, pubErr := hedera.PublicKeyFromString(rawKey)
	if pubErr == nil {
		return &publicKey, nil
	}

	privateKey, prvErr := shared.ParsePrivateKey(rawKey)
	if prvErr != nil {
		return nil, fmt.Errorf("failed to parse key as public (%v) or private (%v)", pubErr, prvErr)
	}
	derivedPublicKey := privateKey.PublicKey()
	return &derivedPublicKey, nil
}

type hederaSubmitter struct {
	client *hedera.Client
}

func (s *hederaSubmitter) CreateTopic(ctx context.Context, transaction *hedera.TopicCreateTransaction) (CreateRegistryResult, error) {
	if err := ctx.Err(); err != nil {
		return CreateRegistryResult{}, err
	}
	response, err := transaction.Execute(s.client)
	if err != nil {
		return CreateRegistryResult{}, fmt.Errorf("failed to execute create topic transaction: %w", err)
	}
	receipt, err := response.GetReceipt(s.client)
	if err != nil {
		return CreateRegistryResult{}, fmt.Errorf("failed to get create topic receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return CreateRegistryResult{}, fmt.Errorf("topic ID missing in create topic receipt")
	}
	return CreateRegistryResult{
		TopicID:       receipt.TopicID.String(),
		TransactionID: response.TransactionID.String(),
	}, nil
}

func (s *hederaSubmitter) SubmitMessage(ctx context.Context, transaction *hedera.TopicMessageSubmitTransaction) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	response, err := transaction.Execute(s.client)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to execute message submit transaction: %w", err)
	}
	receipt, err := response.GetReceipt(s.client)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to get message submit receipt: %w", err)
	}
	return SubmitResult{
		TransactionID:  response.TransactionID.String(),
		SequenceNumber: receipt.TopicSequenceNumber,
	}, nil
}
