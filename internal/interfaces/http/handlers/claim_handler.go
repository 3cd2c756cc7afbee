package handlers

import (
	goerrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/internal/application/service"
	"github.com/turtacn/chatclaim/pkg/errors"
)

// ClaimHandler exposes the claim token factory for diagnostics.
type ClaimHandler struct {
	tokens      service.ClaimTokenService
	revealToken bool
}

// NewClaimHandler creates a new ClaimHandler. When revealToken is false the token body is
// dropped from responses and only its length is reported.
func NewClaimHandler(tokens service.ClaimTokenService, revealToken bool) *ClaimHandler {
	return &ClaimHandler{tokens: tokens, revealToken: revealToken}
}

// CreateToken godoc
// @Summary      Issue a claim token
// @Description  Runs the claim pipeline once and returns the result shape. Pipeline failures are reported in the body.
// @Tags         claims
// @Accept       json
// @Produce      json
// @Param        request  body      dto.TokenOptions  false  "Token options"
// @Success      200      {object}  dto.TokenResult
// @Failure      400      {object}  dto.APIResponse
// @Router       /api/v1/claims/token [post]
func (h *ClaimHandler) CreateToken(c *gin.Context) {
	var opts dto.TokenOptions
	// An empty body, chunked or not, means default options.
	if err := c.ShouldBindJSON(&opts); err != nil && !goerrors.Is(err, io.EOF) {
		dto.SendError(c, errors.ErrInvalidRequest("invalid token options").WithCause(err))
		return
	}

	result := h.tokens.CreateToken(c.Request.Context(), &opts)
	if !h.revealToken {
		result.Token = ""
	}
	c.JSON(http.StatusOK, result)
}

// GetConfig returns the tenant and application identifiers in use.
func (h *ClaimHandler) GetConfig(c *gin.Context) {
	dto.SendSuccess(c, http.StatusOK, h.tokens.CurrentConfig())
}

// UpdateConfig changes the tenant and/or application identifier.
func (h *ClaimHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateClaimConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("invalid claim config").WithCause(err))
		return
	}
	if req.TenantID == "" && req.ApplicationID == "" {
		dto.SendError(c, errors.ErrInvalidRequest("tenantId or applicationId is required"))
		return
	}

	if req.TenantID != "" {
		h.tokens.UpdateTenantID(req.TenantID)
	}
	if req.ApplicationID != "" {
		h.tokens.UpdateApplicationID(req.ApplicationID)
	}
	dto.SendSuccess(c, http.StatusOK, h.tokens.CurrentConfig())
}

// ClearCache drops the cached public key.
func (h *ClaimHandler) ClearCache(c *gin.Context) {
	h.tokens.ClearCache()
	c.Status(http.StatusNoContent)
}
