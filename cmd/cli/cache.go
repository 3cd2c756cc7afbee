package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/chatclaim/internal/application/dto"
)

// cacheCmd represents the root command for public key cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the public key cache",
}

// cacheClearCmd demonstrates clearing within one process: the cache only lives as long as the process.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Issue a token, clear the key cache, and issue again",
	Long: `The public key cache is process-local. This command warms it by issuing a token,
clears it, and issues a second token to show the key being fetched again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pipeline, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		type step struct {
			Step      string     `json:"step"`
			Success   bool       `json:"success"`
			ErrorKind string     `json:"errorKind,omitempty"`
			FetchedAt *time.Time `json:"keyFetchedAt,omitempty"`
		}
		record := func(name string, result *dto.TokenResult) step {
			s := step{Step: name}
			if result != nil {
				s.Success = result.Success
				s.ErrorKind = result.ErrorKind
			}
			if entry := pipeline.KeyCache.Entry(); entry != nil {
				fetchedAt := entry.FetchedAt
				s.FetchedAt = &fetchedAt
			}
			return s
		}

		steps := []step{record("warm", pipeline.Tokens.CreateToken(cmd.Context(), nil))}
		pipeline.Tokens.ClearCache()
		steps = append(steps, record("cleared", nil))
		steps = append(steps, record("reissue", pipeline.Tokens.CreateToken(cmd.Context(), nil)))

		return printJSON(cmd.OutOrStdout(), steps)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
