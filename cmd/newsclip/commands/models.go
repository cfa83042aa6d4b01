// ABOUTME: CLI command listing the models offered by the chat endpoint
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewModelsCmd creates the models command
func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available on the chat endpoint",
		Long: `List the model IDs offered by the configured chat endpoint
(LLM_BASE_URL). The current model (LLM_MODEL) is marked with *.`,
		Args: cobra.NoArgs,
		RunE: runModels,
	}

	return cmd
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}

	ids, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	for _, id := range ids {
		marker := " "
		if id == cfg.LLMModel {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, id)
	}
	return nil
}
