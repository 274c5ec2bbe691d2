package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clemhq/clem/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed claims, newest first",
		Args:  cobra.NoArgs,
		Long: `List all processed claims in the database, newest first.

Example:
  clem list --db ./claims.db
  clem list --db ./claims.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	list, err := st.ListClaims(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to list claims", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No claims.")
		return nil
	}
	for _, rec := range list {
		fmt.Fprintf(formatter.Writer, "%s  %-8s  %-6s  $%-10.2f  %s\n",
			rec.ID, rec.Status, rec.TriageResult.Severity, rec.SettlementAmount, rec.ClaimantName)
	}
	return nil
}

// openStore opens the database named by the flag, falling back to the
// configured path.
func openStore(rootOpts *RootOptions, dbFlag string) (*store.Store, error) {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return nil, err
	}
	path := cfg.Database.Path
	if dbFlag != "" {
		path = dbFlag
	}
	return store.Open(path)
}
