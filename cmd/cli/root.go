package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/chatclaim/internal/bootstrap"
	"github.com/turtacn/chatclaim/internal/config"
	"github.com/turtacn/chatclaim/internal/infrastructure/monitoring"
	"github.com/turtacn/chatclaim/pkg/logger"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when the `chatclaim` binary is called without any subcommands.
// It provides the entry point for the entire CLI application.
// rootCmd 代表在没有任何子命令的情况下调用 `chatclaim` 二进制文件时的基本命令。
// 它为整个 CLI 应用程序提供入口点。
var rootCmd = &cobra.Command{
	Use:   "chatclaim",
	Short: "Issue encrypted chat claim tokens and talk to the chat backend.",
	Long: `chatclaim runs the claim pipeline from the command line: it obtains short-lived
AWS credentials, reads the KMS public key and encrypts a tenant/application claim
into a compact JWE, optionally attaching it to chat requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point for the CLI application.
// It adds all child commands to the root command, parses the command-line arguments,
// and executes the appropriate command. If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。
// 它将所有子命令添加到根命令中，解析命令行参数，并执行相应的命令。
// 如果发生错误，它会打印错误并退出。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: config.yaml in /etc/chatclaim/ or the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
}

// loadPipeline reads the configuration and wires the claim pipeline for one command.
func loadPipeline(cmd *cobra.Command) (*config.Config, *bootstrap.Pipeline, error) {
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: logLevel, Format: "console", OutputPath: "stderr"})
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfigFile(configPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.PipelineReady(); err != nil {
		log.Warn(cmd.Context(), "claim pipeline is not fully configured", logger.Err(err))
	}
	return cfg, bootstrap.NewPipeline(cfg, log, bootstrap.Options{}), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
