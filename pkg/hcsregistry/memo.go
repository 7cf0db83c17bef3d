package hcsregistry

import (
	"fmt"
	"strconv"
	"strings"
)

type TopicMemo struct {
	TTL int64
}

func BuildTopicMemo(ttl int64) string {
	return fmt.Sprintf("%s:%d", Protocol, ttl)
}

// ParseTopicMemo reports whether memo identifies a document registry topic.
func ParseTopicMemo(memo string) (*TopicMemo, bool) {
	parts := strings.Split(strings.TrimSpace(memo), ":")
	if len(parts) != 2 || parts[0] != Protocol {
		return nil, false
	}
	ttl, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ttl < 0 {
		return nil, false
	}
	return &TopicMemo{TTL: ttl}, true
}

// BuildTransactionMemo is the analytics memo attached to submissions.
func BuildTransactionMemo(operation Operation) string {
	return fmt.Sprintf("%s:op:%s", Protocol, operation)
}
