package awsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chatclaim/internal/domain/models"
)

func TestSDKFactory_RequiresCredentials(t *testing.T) {
	f := NewSDKFactory(nil)
	cfg := models.ServiceConfig{Region: "ap-northeast-2"}

	_, err := f.STS(context.Background(), cfg, nil)
	assert.Error(t, err)

	_, err = f.KMS(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestSDKFactory_HonoursEndpointURL(t *testing.T) {
	var target string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.Header.Get("X-Amz-Target")
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.Write([]byte(`{"IdentityId":"ap-northeast-2:abc"}`))
	}))
	defer srv.Close()

	f := NewSDKFactory(srv.Client())
	cfg := models.ServiceConfig{Region: "ap-northeast-2", IdentityPoolID: "ap-northeast-2:pool", EndpointURL: srv.URL}

	client, err := f.CognitoIdentity(context.Background(), cfg)
	require.NoError(t, err)

	out, err := client.GetId(context.Background(), &cognitoidentity.GetIdInput{IdentityPoolId: aws.String(cfg.IdentityPoolID)})
	require.NoError(t, err)
	assert.Equal(t, "ap-northeast-2:abc", *out.IdentityId)
	assert.Equal(t, "AWSCognitoIdentityService.GetId", target)
}
