package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     shared.Secret
	Headers    map[string]string
	Limiter    *rate.Limiter
	Logger     *zerolog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     shared.Secret
	headers    map[string]string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

type MessageQueryOptions struct {
	SequenceNumber string
	Limit          int
	Order          string
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	defaultBaseURL, err := shared.MirrorBaseURL(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Client{
		baseURL:    strings.TrimRight(parsedBaseURL.String(), "/"),
		httpClient: httpClient,
		apiKey:     shared.Secret(strings.TrimSpace(config.APIKey.Reveal())),
		headers:    headers,
		limiter:    config.Limiter,
		logger:     logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTopicInfo returns the topic's metadata, including its memo.
func (c *Client) GetTopicInfo(ctx context.Context, topicID string) (TopicInfo, error) {
	var topicInfo TopicInfo
	if strings.TrimSpace(topicID) == "" {
		return topicInfo, fmt.Errorf("topic ID is required")
	}

	path := fmt.Sprintf("/api/v1/topics/%s", url.PathEscape(strings.TrimSpace(topicID)))
	if err := c.getJSON(ctx, path, &topicInfo); err != nil {
		return topicInfo, err
	}
	return topicInfo, nil
}

// GetTopicMessages follows the mirror node's next links until the result set
// is exhausted.
func (c *Client) GetTopicMessages(
	ctx context.Context,
	topicID string,
	options MessageQueryOptions,
) ([]TopicMessage, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic ID is required")
	}

	values := url.Values{}
	if options.SequenceNumber != "" {
		values.Set("sequencenumber", options.SequenceNumber)
	}
	if options.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	if options.Order != "" {
		values.Set("order", options.Order)
	}

	endpoint := fmt.Sprintf("/api/v1/topics/%s/messages", url.PathEscape(strings.TrimSpace(topicID)))
	if encoded := values.Encode(); encoded != "" {
		endpoint = fmt.Sprintf("%s?%s", endpoint, encoded)
	}

	result := make([]TopicMessage, 0)
	next := endpoint
	pages := 0
	for next != "" {
		var page topicMessagesResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		pages++
		result = append(result, page.Messages...)
		next = page.Links.Next
	}

	c.logger.Debug().Str("topic_id", topicID).Int("pages", pages).Int("messages", len(result)).Msg("read topic messages")
	return result, nil
}

// GetTopicMessageBySequence returns nil when the sequence number does not
// exist yet.
func (c *Client) GetTopicMessageBySequence(
	ctx context.Context,
	topicID string,
	sequence int64,
) (*TopicMessage, error) {
	if sequence <= 0 {
		return nil, fmt.Errorf("sequence must be positive")
	}

	messages, err := c.GetTopicMessages(ctx, topicID, MessageQueryOptions{
		SequenceNumber: fmt.Sprintf("eq:%d", sequence),
		Limit:          1,
		Order:          "asc",
	})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

// DecodeMessageData returns the raw bytes of a topic message.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

// DecodeMessageJSON decodes a topic message's JSON payload into target.
func DecodeMessageJSON[T any](message TopicMessage, target *T) error {
	payload, err := DecodeMessageData(message)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("failed to decode topic message JSON: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	requestURL := c.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if !c.apiKey.IsEmpty() {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey.Reveal()))
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &RequestError{URL: requestURL, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return &RequestError{URL: requestURL, StatusCode: response.StatusCode, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return &RequestError{URL: requestURL, StatusCode: response.StatusCode, Body: text}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}

	path := pathOrURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
