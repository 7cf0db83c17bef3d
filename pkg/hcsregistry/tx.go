package hcsregistry

import (
	"encoding/json"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type CreateRegistryTxParams struct {
	TTL          int64
	AdminKey     hedera.Key
	SubmitKey    hedera.Key
	MemoOverride string
}

type RegisterTxParams struct {
	RegistryTopicID string
	Message         Message
	AnalyticsMemo   string
}

// BuildCreateRegistryTx builds the topic creation transaction.
func BuildCreateRegistryTx(params CreateRegistryTxParams) *hedera.TopicCreateTransaction {
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	memo := strings.TrimSpace(params.MemoOverride)
	if memo == "" {
		memo = BuildTopicMemo(ttl)
	}

	transaction := hedera.NewTopicCreateTransaction().SetTopicMemo(memo)
	if params.AdminKey != nil {
		transaction.SetAdminKey(params.AdminKey)
	}
	if params.SubmitKey != nil {
		transaction.SetSubmitKey(params.SubmitKey)
	}
	return transaction
}

// BuildRegisterTx builds the submission for one registration message.
func BuildRegisterTx(params RegisterTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	if err := ValidateMessage(params.Message); err != nil {
		return nil, err
	}

	trimmedTopicID := strings.TrimSpace(params.RegistryTopicID)
	if trimmedTopicID == "" {
		return nil, fmt.Errorf("registry topic ID is required")
	}
	topicID, err := hedera.TopicIDFromString(trimmedTopicID)
	if err != nil {
		return nil, fmt.Errorf("invalid registry topic ID: %w", err)
	}

	payload, err := json.Marshal(params.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registry message: %w", err)
	}

	memo := strings.TrimSpace(params.AnalyticsMemo)
	if memo == "" {
		memo = BuildTransactionMemo(params.Message.Op)
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(payload)
	transaction.SetTransactionMemo(memo)
	return transaction, nil
}
