package config

import (
	"strings"

	"github.com/turtacn/chatclaim/internal/domain/models"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/utils"
)

// Config holds the application's configuration.
type Config struct {
	Environment string        `mapstructure:"environment" validate:"oneof=development staging production"`
	Server      ServerConfig  `mapstructure:"server"`
	AWS         AWSConfig     `mapstructure:"aws"`
	Claims      ClaimsConfig  `mapstructure:"claims"`
	Chat        ChatConfig    `mapstructure:"chat"`
	Log         LogConfig     `mapstructure:"log"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    int      `mapstructure:"read_timeout" validate:"gte=0"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout" validate:"gte=0"` // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AWSConfig struct {
	IdentityPoolID  string `mapstructure:"identity_pool_id"`
	Region          string `mapstructure:"region"`
	KMSKeyID        string `mapstructure:"kms_key_id"`
	AuthMode        string `mapstructure:"auth_mode" validate:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	RoleARN         string `mapstructure:"role_arn"`
	EndpointURL     string `mapstructure:"endpoint_url" validate:"omitempty,url"`
}

type ClaimsConfig struct {
	TenantID      string `mapstructure:"tenant_id" validate:"required"`
	ApplicationID string `mapstructure:"application_id" validate:"required"`
	ExpiresIn     int64  `mapstructure:"expires_in" validate:"gte=0,lte=604800"` // in seconds
	IDStrategy    string `mapstructure:"id_strategy" validate:"oneof=timestamp uuid"`
}

type ChatConfig struct {
	APIURL         string `mapstructure:"api_url"`
	ChatAPIURL     string `mapstructure:"chat_api_url"`
	AuthToken      string `mapstructure:"auth_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn warning error fatal"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint" validate:"omitempty,url"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// Validate checks structural constraints only. The AWS fields of the selected mode are checked by PipelineReady.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if _, err := models.ParseAuthMode(c.AWS.AuthMode); err != nil {
		return errors.ErrConfiguration(err.Error()).WithMetadata("field", "aws.auth_mode")
	}
	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return errors.ErrMissingConfig("tracing.jaeger_endpoint")
	}
	return nil
}

type requiredField struct {
	field string
	value string
}

// PipelineReady reports the first AWS field the selected auth mode needs but lacks.
func (c *Config) PipelineReady() error {
	mode, err := models.ParseAuthMode(c.AWS.AuthMode)
	if err != nil {
		return errors.ErrConfiguration(err.Error()).WithMetadata("field", "aws.auth_mode")
	}

	required := []requiredField{
		{"aws.region", c.AWS.Region},
		{"aws.kms_key_id", c.AWS.KMSKeyID},
	}
	switch mode {
	case models.AuthModeAnonymous:
		required = append(required, requiredField{"aws.identity_pool_id", c.AWS.IdentityPoolID})
	case models.AuthModeDelegatedRole:
		required = append(required,
			requiredField{"aws.access_key_id", c.AWS.AccessKeyID},
			requiredField{"aws.secret_access_key", c.AWS.SecretAccessKey},
			requiredField{"aws.role_arn", c.AWS.RoleARN},
		)
	}

	for _, r := range required {
		if !utils.ValidateNotEmpty(r.value) {
			return errors.ErrMissingConfig(r.field)
		}
	}
	return nil
}

// ServiceConfig converts the AWS section to the immutable domain value.
// Validate must have succeeded first.
func (c *Config) ServiceConfig() models.ServiceConfig {
	mode, _ := models.ParseAuthMode(c.AWS.AuthMode)
	sc := models.ServiceConfig{
		IdentityPoolID: c.AWS.IdentityPoolID,
		Region:         c.AWS.Region,
		KeyID:          c.AWS.KMSKeyID,
		AuthMode:       mode,
		EndpointURL:    c.AWS.EndpointURL,
	}
	if mode == models.AuthModeDelegatedRole {
		sc.Static = &models.StaticCredentials{
			AccessKeyID:     c.AWS.AccessKeyID,
			SecretAccessKey: models.Secret(c.AWS.SecretAccessKey),
			RoleARN:         c.AWS.RoleARN,
		}
	}
	return sc
}

// IDStrategy returns the configured identifier strategy.
func (c *Config) IDStrategy() constants.IDStrategy {
	return constants.IDStrategy(strings.ToLower(c.Claims.IDStrategy))
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == string(constants.EnvironmentProduction)
}
