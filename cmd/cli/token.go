package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chatclaim/internal/application/dto"
)

// tokenCmd issues one claim token and prints the result.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a claim token",
	Long:  `Runs the claim pipeline once and prints the result as JSON. Exits non-zero when no token was issued.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pipeline, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		expiresIn, _ := cmd.Flags().GetInt64("expires-in")
		tenant, _ := cmd.Flags().GetString("tenant")
		app, _ := cmd.Flags().GetString("app")
		pairs, _ := cmd.Flags().GetStringSlice("extra")

		extra, err := parseExtra(pairs)
		if err != nil {
			return err
		}
		if tenant != "" {
			pipeline.Tokens.UpdateTenantID(tenant)
		}
		if app != "" {
			pipeline.Tokens.UpdateApplicationID(app)
		}

		result := pipeline.Tokens.CreateToken(cmd.Context(), &dto.TokenOptions{ExpiresIn: expiresIn, Extra: extra})
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("no token issued: %s", result.ErrorKind)
		}
		return nil
	},
}

func parseExtra(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --extra %q, expected key=value", pair)
		}
		extra[k] = v
	}
	return extra, nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Int64("expires-in", 0, "token lifetime in seconds (0 selects the configured default)")
	tokenCmd.Flags().String("tenant", "", "override the tenant identifier")
	tokenCmd.Flags().String("app", "", "override the application identifier")
	tokenCmd.Flags().StringSlice("extra", nil, "extra claim as key=value, repeatable")
}
