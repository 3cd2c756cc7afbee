package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// MockClaimTokenService is a mock for the ClaimTokenService
type MockClaimTokenService struct {
	mock.Mock
}

func (m *MockClaimTokenService) Issue(ctx context.Context, opts *dto.TokenOptions) (string, *dto.TokenDetails, error) {
	args := m.Called(ctx, opts)
	var details *dto.TokenDetails
	if d := args.Get(1); d != nil {
		details = d.(*dto.TokenDetails)
	}
	return args.String(0), details, args.Error(2)
}

func (m *MockClaimTokenService) CreateToken(ctx context.Context, opts *dto.TokenOptions) *dto.TokenResult {
	args := m.Called(ctx, opts)
	return args.Get(0).(*dto.TokenResult)
}

func (m *MockClaimTokenService) UpdateTenantID(tenantID string) {
	m.Called(tenantID)
}

func (m *MockClaimTokenService) UpdateApplicationID(applicationID string) {
	m.Called(applicationID)
}

func (m *MockClaimTokenService) CurrentConfig() dto.ClaimConfigView {
	args := m.Called()
	return args.Get(0).(dto.ClaimConfigView)
}

func (m *MockClaimTokenService) ClearCache() {
	m.Called()
}

// MockChatService is a mock for the ChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChatResponse), args.Error(1)
}

func (m *MockChatService) GetHistory(ctx context.Context, studentID string) ([]dto.ChatMessage, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ChatMessage), args.Error(1)
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestClaimHandler_CreateToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	successResult := func() *dto.TokenResult {
		return &dto.TokenResult{
			Success: true,
			Token:   "h.k.iv.ct.tag",
			Details: &dto.TokenDetails{TenantID: "acme", ApplicationID: "navi", AuthMode: "delegated-role", TokenLength: 13},
		}
	}

	t.Run("token revealed outside production", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		tokens.On("CreateToken", mock.Anything, mock.MatchedBy(func(o *dto.TokenOptions) bool {
			return o.ExpiresIn == 600
		})).Return(successResult()).Once()

		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, true).CreateToken)

		rr := performRequest(router, http.MethodPost, "/token", dto.TokenOptions{ExpiresIn: 600})
		require.Equal(t, http.StatusOK, rr.Code)

		var result dto.TokenResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, "h.k.iv.ct.tag", result.Token)
		assert.Equal(t, 13, result.Details.TokenLength)
		tokens.AssertExpectations(t)
	})

	t.Run("token hidden in production", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		tokens.On("CreateToken", mock.Anything, &dto.TokenOptions{}).Return(successResult()).Once()

		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, false).CreateToken)

		rr := performRequest(router, http.MethodPost, "/token", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var result dto.TokenResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Empty(t, result.Token)
		assert.Equal(t, 13, result.Details.TokenLength)
	})

	t.Run("pipeline failure reported in body", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		tokens.On("CreateToken", mock.Anything, mock.Anything).Return(&dto.TokenResult{
			Success:   false,
			Error:     "assume role failed",
			ErrorKind: string(errors.KindCredential),
			Details:   &dto.TokenDetails{FailedStage: "resolving_credential"},
		}).Once()

		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, true).CreateToken)

		rr := performRequest(router, http.MethodPost, "/token", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"errorKind":"credential_error"`)
		assert.Contains(t, rr.Body.String(), `"failedStage":"resolving_credential"`)
	})

	t.Run("negative lifetime rejected", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, true).CreateToken)

		rr := performRequest(router, http.MethodPost, "/token", map[string]int{"expires_in": -5})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		tokens.AssertNotCalled(t, "CreateToken", mock.Anything, mock.Anything)
	})

	t.Run("lifetime above maximum rejected", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, true).CreateToken)

		rr := performRequest(router, http.MethodPost, "/token", map[string]int64{"expires_in": constants.MaxClaimExpiresIn + 1})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		tokens.AssertNotCalled(t, "CreateToken", mock.Anything, mock.Anything)
	})

	t.Run("empty chunked body uses defaults", func(t *testing.T) {
		tokens := new(MockClaimTokenService)
		tokens.On("CreateToken", mock.Anything, &dto.TokenOptions{}).Return(successResult()).Once()

		router := gin.New()
		router.POST("/token", NewClaimHandler(tokens, true).CreateToken)

		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(""))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		tokens.AssertExpectations(t)
	})
}

func TestClaimHandler_Config(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := new(MockClaimTokenService)
	handler := NewClaimHandler(tokens, true)

	router := gin.New()
	router.GET("/config", handler.GetConfig)
	router.PUT("/config", handler.UpdateConfig)
	router.DELETE("/cache", handler.ClearCache)

	tokens.On("UpdateTenantID", "globex").Once()
	tokens.On("CurrentConfig").Return(dto.ClaimConfigView{TenantID: "globex", ApplicationID: "ai-navi-chat"})
	tokens.On("ClearCache").Once()

	rr := performRequest(router, http.MethodPut, "/config", dto.UpdateClaimConfigRequest{TenantID: "globex"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    dto.ClaimConfigView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "globex", resp.Data.TenantID)

	rr = performRequest(router, http.MethodPut, "/config", dto.UpdateClaimConfigRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = performRequest(router, http.MethodGet, "/config", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = performRequest(router, http.MethodDelete, "/cache", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	tokens.AssertExpectations(t)
	tokens.AssertNotCalled(t, "UpdateApplicationID", mock.Anything)
}

func TestChatHandler_SendMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	chat := new(MockChatService)

	router := gin.New()
	router.POST("/students/chat", NewChatHandler(chat, logger.NewNoopLogger()).SendMessage)

	chat.On("SendMessage", mock.Anything, &dto.ChatRequest{Message: "hello", StudentID: "s-1"}).
		Return(&dto.ChatResponse{Response: "hi there", Timestamp: "2026-10-19T12:00:00Z"}, nil).Once()

	rr := performRequest(router, http.MethodPost, "/students/chat", dto.ChatRequest{Message: "hello", StudentID: "s-1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"hi there","timestamp":"2026-10-19T12:00:00Z"}`, rr.Body.String())

	rr = performRequest(router, http.MethodPost, "/students/chat", map[string]string{"message": "no student"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"invalid_request"`)

	chat.AssertExpectations(t)
}

func TestChatHandler_UpstreamErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"backend 5xx becomes bad gateway", errors.ErrUpstream(503, "HTTP error! status: 503"), http.StatusBadGateway, "upstream_error"},
		{"backend 4xx passes through", errors.ErrUpstream(404, "student not found"), http.StatusNotFound, "upstream_error"},
		{"unreachable backend", errors.ErrUpstream(0, "chat backend unreachable"), http.StatusBadGateway, "upstream_error"},
		{"plain error", goerrors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := new(MockChatService)
			chat.On("GetHistory", mock.Anything, "s-9").Return(nil, tt.err).Once()

			router := gin.New()
			router.GET("/students/chat/history/:studentId", NewChatHandler(chat, logger.NewNoopLogger()).GetHistory)

			rr := performRequest(router, http.MethodGet, "/students/chat/history/s-9", nil)
			assert.Equal(t, tt.wantStatus, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestChatHandler_EmptyHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	chat := new(MockChatService)
	chat.On("GetHistory", mock.Anything, "s-2").Return(nil, nil).Once()

	router := gin.New()
	router.GET("/students/chat/history/:studentId", NewChatHandler(chat, logger.NewNoopLogger()).GetHistory)

	rr := performRequest(router, http.MethodGet, "/students/chat/history/s-2", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.ErrMissingConfig("aws.kms_key_id") }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"claim_pipeline": ok}, logger.NewNoopLogger())
		router := gin.New()
		router.GET("/health", h.HealthCheck)
		router.GET("/ready", h.ReadinessCheck)

		rr := performRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"healthy"`)

		rr = performRequest(router, http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("failing check degrades", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"claim_pipeline": failing, "other": ok}, logger.NewNoopLogger())
		router := gin.New()
		router.GET("/health", h.HealthCheck)
		router.GET("/ready", h.ReadinessCheck)
		router.GET("/live", h.LivenessCheck)

		rr := performRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rr.Body.String(), "aws.kms_key_id")

		rr = performRequest(router, http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		rr = performRequest(router, http.MethodGet, "/live", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(constants.ContextKeyRequestID).(string)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "req-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Body.String())
	assert.Equal(t, "req-123", rr.Header().Get(constants.HeaderRequestID))

	rr = performRequest(router, http.MethodGet, "/ping", nil)
	assert.Len(t, rr.Body.String(), 36)
	assert.Equal(t, rr.Body.String(), rr.Header().Get(constants.HeaderRequestID))
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(logger.NewNoopLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	rr := performRequest(router, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"internal_error"`)
}
