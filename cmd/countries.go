// -- cmd/countries.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/tgcontacts/internal/config"
)

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "Print the effective country normalization table as YAML",
		Long: `Prints the country rules after merging defaults, the config file and the
environment. The output can be pasted under "countries:" in tgcontacts.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}

			doc := map[string]map[string]config.CountryConfig{"countries": cfg.Countries()}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("failed to encode country table: %w", err)
			}
			return enc.Close()
		},
	}
}
