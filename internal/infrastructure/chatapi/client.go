// Package chatapi is the HTTP client for the chat backend. Outgoing chat messages carry
// an encrypted claim token when one can be issued.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/internal/domain/service"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

const (
	operationSend    = "send"
	operationHistory = "history"
)

// TokenIssuer issues claim tokens for outgoing chat requests.
type TokenIssuer interface {
	Issue(ctx context.Context, opts *dto.TokenOptions) (string, *dto.TokenDetails, error)
}

// Client talks to the chat backend.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	tokens     TokenIssuer
	metrics    service.ClaimMetrics
	logger     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled cleanhttp client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAuthToken sends "Authorization: Bearer <token>" on every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithMetrics records per-request metrics.
func WithMetrics(m service.ClaimMetrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// ResolveBaseURL picks the chat-specific URL, then the general API URL, then "/api".
func ResolveBaseURL(chatURL, apiURL string) string {
	for _, candidate := range []string{chatURL, apiURL} {
		if v := strings.TrimSpace(candidate); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return constants.DefaultAPIBaseURL
}

// NewClient creates a chat client. tokens may be nil, in which case no claim header is sent.
func NewClient(baseURL string, tokens TokenIssuer, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cleanhttp.DefaultPooledClient(),
		tokens:     tokens,
		metrics:    service.NoopMetrics{},
		logger:     log.WithComponent("ChatAPIClient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMessage posts a chat message. A claim token failure is logged and the request goes out without it.
func (c *Client) SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if req == nil || req.Message == "" || req.StudentID == "" {
		return nil, errors.ErrInvalidRequest("message and studentId are required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode chat request").WithCause(err)
	}

	headers := http.Header{}
	if token := c.claimToken(ctx); token != "" {
		headers.Set(constants.ClaimTokenHeader, token)
	}

	var out dto.ChatResponse
	if err := c.do(ctx, operationSend, http.MethodPost, constants.ChatPath, bytes.NewReader(body), headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory fetches the chat history of a student.
func (c *Client) GetHistory(ctx context.Context, studentID string) ([]dto.ChatMessage, error) {
	if studentID == "" {
		return nil, errors.ErrInvalidRequest("studentId is required")
	}

	var out []dto.ChatMessage
	path := constants.ChatHistoryPath + url.PathEscape(studentID)
	if err := c.do(ctx, operationHistory, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) claimToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, details, err := c.tokens.Issue(ctx, nil)
	if err != nil {
		fields := []logger.Field{logger.String("error_kind", string(errors.KindOf(err))), logger.Err(err)}
		if details != nil {
			fields = append(fields, logger.String("failed_stage", details.FailedStage))
		}
		c.logger.Warn(ctx, "sending chat request without claim token", fields...)
		return ""
	}
	return token
}

func (c *Client) do(ctx context.Context, operation, method, path string, body io.Reader, headers http.Header, out interface{}) error {
	start := time.Now()
	withToken := headers.Get(constants.ClaimTokenHeader) != ""

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.ErrInternal("failed to build chat request").WithCause(err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set("Accept", "*/*")
	if c.authToken != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+c.authToken)
	}
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
		req.Header.Set(constants.HeaderRequestID, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordChatRequest(operation, 0, withToken, time.Since(start))
		c.logger.Error(ctx, "chat request failed", err, logger.String("operation", operation))
		return errors.ErrUpstream(0, "chat backend unreachable").WithCause(err)
	}
	defer resp.Body.Close()
	c.metrics.RecordChatRequest(operation, resp.StatusCode, withToken, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstreamMessage(resp)
		c.logger.Warn(ctx, "chat backend returned an error",
			logger.String("operation", operation),
			logger.Int("status", resp.StatusCode),
		)
		return errors.ErrUpstream(resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ErrUpstream(resp.StatusCode, "invalid chat backend response").WithCause(err)
	}
	return nil
}

func upstreamMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}
