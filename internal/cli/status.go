package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clemhq/clem/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <claim-id> <APPROVED|REJECTED>",
		Short: "Approve or reject a pending claim",
		Args:  cobra.ExactArgs(2),
		Long: `Apply a lifecycle decision to a PENDING claim.

Example:
  clem status --db ./claims.db 0192a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b APPROVED`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, args[0], strings.ToUpper(args[1]), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

func runStatus(opts *StatusOptions, id, status string, cmd *cobra.Command) error {
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

	if err := st.UpdateStatus(cmd.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidStatus):
			_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid status", err)
		case errors.Is(err, store.ErrNotFound):
			_ = formatter.Error(ErrCodeStore, "claim not found", id)
			return NewExitError(ExitFailure, "claim not found")
		default:
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to update status", err)
		}
	}

	rec, err := st.GetClaim(cmd.Context(), id)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to load claim", err)
	}

	return outputClaim(formatter, rec)
}
