package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v as JSON or YAML when requested, otherwise calls text.
func render(cmd *cobra.Command, v any, text func()) error {
	switch outputFormat {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Println(string(data))
		return nil
	case outputYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	default:
		text()
		return nil
	}
}

// toYAML reuses the JSON field names so both formats agree.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return data, nil
}

// tenantFlag registers the --assistant flag shared by tenant-scoped commands.
func tenantFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "assistant", "a", "default", "assistant (knowledge base) id")
}
