package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/phishdrill/internal/content"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Validate and load an email catalog",
	Long: `Read a YAML catalog of emails, validate every entry, and upsert them.
Nothing is stored unless the whole catalog is valid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()

		items, err := content.ParseCatalog(f)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ImportItems(cmd.Context(), items); err != nil {
			return fmt.Errorf("import items: %w", err)
		}
		total, err := s.Items().Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d emails (%d in catalog)\n", len(items), total)
		return nil
	},
}
