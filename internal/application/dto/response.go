package dto

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, traceID string) *APIResponse {
	var errorDTO *ErrorDTO

	if claimErr, ok := errors.AsClaimError(err); ok {
		errorDTO = &ErrorDTO{
			Code:        string(claimErr.Kind()),
			Message:     claimErr.Error(),
			Description: claimErr.Description(),
			Details:     claimErr.Metadata(),
		}
		if len(errorDTO.Details) == 0 {
			errorDTO.Details = nil
		}
	} else {
		errorDTO = &ErrorDTO{
			Code:        string(errors.KindInternal),
			Message:     "Internal server error",
			Description: err.Error(),
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess 写入成功响应
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, requestID(c)))
}

// SendError 按错误类型写入错误响应
func SendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if claimErr, ok := errors.AsClaimError(err); ok {
		status = claimErr.HTTPStatus()
	}
	c.JSON(status, ErrorResponse(err, requestID(c)))
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get(string(constants.ContextKeyRequestID)); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.GetHeader(constants.HeaderRequestID)
}
