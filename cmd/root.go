package cmd

import (
	"fmt"
	"os"

	"github.com/qorvid/cursor-atlas/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	cfgFile     string
	copyDB      bool
	cfg         *internal.Config

	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cursor-atlas",
	Short: "Attribute and export Cursor IDE chat conversations by workspace",
	Long: `cursor-atlas extracts AI chat conversations from Cursor IDE's local
storage, works out which development workspace each conversation belongs to,
and assembles normalized timelines with token, cost, and latency metrics.

Attribution uses a strict priority chain: the editor's own per-workspace
index first, then declared project roots, referenced file paths, and finally
folder-name matching. Conversations that match nothing land in the
"unassigned" bucket rather than being guessed at.

Quick Start:
  cursor-atlas workspaces              # Show workspaces and attribution counts
  cursor-atlas list                    # List conversations grouped by workspace
  cursor-atlas show <conversation-id>  # View one conversation
  cursor-atlas export --format md      # Export everything, grouped by workspace`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		// Flags beat config file values.
		if storagePath == "" {
			storagePath = cfg.StoragePath
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (Cursor User directory or database file)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.cursor-atlas.yaml)")
	rootCmd.PersistentFlags().BoolVar(&copyDB, "copy", false, "Copy database files to a temporary location to avoid locking issues")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
