package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimError_ChainAndKind(t *testing.T) {
	cause := goerrors.New("AccessDenied")
	err := ErrCredential("assume role failed").WithCause(cause)

	assert.Equal(t, "assume role failed: AccessDenied", err.Error())
	assert.Equal(t, KindCredential, err.Kind())
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.True(t, goerrors.Is(err, cause))

	wrapped := fmt.Errorf("token pipeline: %w", err)
	assert.Equal(t, KindCredential, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindCredential))
	assert.False(t, IsKind(nil, KindCredential))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(goerrors.New("plain")))
}

func TestErrMissingConfig(t *testing.T) {
	err := ErrMissingConfig("aws.role_arn")
	assert.Equal(t, KindConfiguration, err.Kind())
	assert.Equal(t, "aws.role_arn", err.Metadata()["field"])
	assert.Contains(t, err.Error(), "aws.role_arn")
}

func TestWrapError(t *testing.T) {
	original := ErrEncoding("bad key")
	assert.Same(t, original, WrapError(original, KindInternal, "ignored"))

	wrapped := WrapError(goerrors.New("dial tcp"), KindKeyRetrieval, "GetPublicKey failed")
	assert.Equal(t, KindKeyRetrieval, wrapped.Kind())
	assert.Equal(t, "GetPublicKey failed: dial tcp", wrapped.Error())
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrUpstream(503, "HTTP error! status: 503"))
	require.NotNil(t, resp)
	assert.Equal(t, "upstream_error", resp.Error)
	assert.Equal(t, 503, resp.Metadata["upstream_status"])

	generic := ToErrorResponse(goerrors.New("boom"))
	assert.Equal(t, "internal_error", generic.Error)
	assert.Nil(t, generic.Metadata)
}
