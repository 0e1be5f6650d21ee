package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/isulog/pkg/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the log catalogue",
	Long: `Store, list, fetch and remove uninstall logs in the catalogue kept
under the data directory.`,
}

var catalogPutCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Store uninstall logs",
	Long: `Validate and store one or more uninstall logs.

Example:
  isulog catalog put unins000.dat`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			start := time.Now()
			entry, err := cat.Put(filepath.Base(path), data)
			container.Metrics().RecordLoad(nil, int64(len(data)), err, time.Since(start))
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", path, err)
			}
			cmd.Printf("%s  %s\n", entry.ID, path)
		}
		return refreshEntries(cat)
	},
}

var catalogListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored logs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		entries, err := cat.List()
		if err != nil {
			return err
		}
		container.Metrics().SetCatalogEntries(len(entries))

		for _, e := range entries {
			cmd.Printf("%s  %s  %-20s %6d records  %s\n",
				e.ID, e.CreatedAt.Format(time.RFC3339), e.Name, e.Summary.Records, e.Summary.AppName)
		}
		return nil
	},
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show or export a stored log",
	Long: `Print the catalogue entry for a stored log as YAML, or write the
stored bytes to a file with --out.

Examples:
  isulog catalog get 2fJ3Xk...
  isulog catalog get 2fJ3Xk... --out unins000.dat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		if out != "" {
			raw, err := cat.Raw(args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, raw, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			cmd.Printf("Wrote %d bytes to %s\n", len(raw), out)
			return nil
		}

		entry, err := cat.Get(args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(entry); err != nil {
			return err
		}
		return enc.Close()
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Remove stored logs",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		for _, id := range args {
			if err := cat.Delete(id); err != nil {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
			cmd.Printf("Removed %s\n", id)
		}
		return refreshEntries(cat)
	},
}

func refreshEntries(cat *catalog.Catalog) error {
	entries, err := cat.List()
	if err != nil {
		return err
	}
	container.Metrics().SetCatalogEntries(len(entries))
	return nil
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogPutCmd, catalogListCmd, catalogGetCmd, catalogRemoveCmd)

	catalogGetCmd.Flags().StringP("out", "o", "", "Write the stored log bytes to this file")
}
