package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"vtracer-api/internal/domain"
)

func ModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Print the accepted conversion options as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.ModelCatalog())
		},
	}
}
