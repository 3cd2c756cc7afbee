package dto

// TokenOptions 签发声明令牌的可选参数
type TokenOptions struct {
	// ExpiresIn is the token lifetime in seconds. Zero selects the default of one hour; the maximum is seven days.
	ExpiresIn int64 `json:"expires_in,omitempty" binding:"omitempty,min=0,max=604800"`
	// Extra fields are merged into the claim payload; reserved claim names are ignored.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// TokenDetails 令牌签发的可观测信息，不含凭证、缓存内容或明文载荷
type TokenDetails struct {
	TenantID      string `json:"tenantId"`
	ApplicationID string `json:"applicationId"`
	AuthMode      string `json:"authMode"`
	TokenLength   int    `json:"tokenLength,omitempty"`
	KeyID         string `json:"keyId,omitempty"`
	// FailedStage names the pipeline stage that stopped a failed attempt.
	FailedStage string `json:"failedStage,omitempty"`
}

// TokenResult 统一的令牌签发结果
type TokenResult struct {
	Success   bool          `json:"success"`
	Token     string        `json:"token,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"errorKind,omitempty"`
	Details   *TokenDetails `json:"details,omitempty"`
}

// ClaimConfigView 当前租户与应用标识
type ClaimConfigView struct {
	TenantID      string `json:"tenantId"`
	ApplicationID string `json:"applicationId"`
}

// UpdateClaimConfigRequest 更新租户或应用标识的请求
type UpdateClaimConfigRequest struct {
	TenantID      string `json:"tenantId" binding:"omitempty,max=128"`
	ApplicationID string `json:"applicationId" binding:"omitempty,max=128"`
}
