package config

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/errors"
	"github.com/turtacn/chatclaim/pkg/logger"
)

const envPrefix = "CHATCLAIM"

// legacyEnv maps config keys to the environment names used by earlier frontend deployments.
var legacyEnv = map[string]string{
	"aws.identity_pool_id":  "VITE_COGNITO_IDENTITY_POOL_ID",
	"aws.region":            "VITE_AWS_REGION",
	"aws.kms_key_id":        "VITE_KMS_KEY_ID",
	"aws.access_key_id":     "VITE_AWS_ACCESS_KEY_ID",
	"aws.secret_access_key": "VITE_AWS_SECRET_ACCESS_KEY",
	"aws.role_arn":          "VITE_FRONTEND_ROLE_ARN",
	"claims.tenant_id":      "VITE_CLIENT_ID",
	"claims.application_id": "VITE_APP_ID",
	"chat.api_url":          "VITE_API_URL",
	"chat.chat_api_url":     "VITE_CHAT_API_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", string(constants.EnvironmentDevelopment))
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("aws.auth_mode", "delegated-role")
	v.SetDefault("aws.endpoint_url", "")
	v.SetDefault("claims.tenant_id", constants.DefaultTenantID)
	v.SetDefault("claims.application_id", constants.DefaultApplicationID)
	v.SetDefault("claims.expires_in", constants.DefaultClaimExpiresIn)
	v.SetDefault("claims.id_strategy", string(constants.IDStrategyTimestamp))
	v.SetDefault("chat.auth_token", "")
	v.SetDefault("chat.timeout_seconds", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", "chatclaim")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(log logger.Logger) (*Config, error) {
	return LoadConfigFile("", log)
}

// LoadConfigFile loads the configuration from path, or from config.yaml in the default
// search paths when path is empty, then applies environment overrides.
func LoadConfigFile(path string, log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/chatclaim/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrConfiguration("failed to read config file").WithCause(err)
		}
		log.Debug(context.Background(), "no config file found, using defaults and environment")
	} else {
		log.Info(context.Background(), "config file loaded", logger.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, errors.ErrConfiguration("failed to bind environment").WithCause(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrConfiguration("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
