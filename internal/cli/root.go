package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// RootCommand returns the vtracer-api command tree. Without a subcommand it
// behaves like serve.
func RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "vtracer-api",
		Short:         "Convert raster images to SVG with vtracer",
		Example:       "vtracer-api serve --config config.yaml",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("CONFIG_PATH", configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file, overrides CONFIG_PATH")

	root.AddCommand(ServeAppCommand(), ConvertCommand(), ModelsCommand())
	return root
}
