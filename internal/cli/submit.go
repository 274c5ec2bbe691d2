package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/claims"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/schema"
	"github.com/clemhq/clem/internal/store"
	"github.com/clemhq/clem/internal/workflow"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Database string

	// Client overrides the reasoner client (for testing). If nil, an
	// OpenAI client is built from the configuration.
	Client reasoner.Client
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <claim.json>",
		Short: "Process one claim through the workflow",
		Long: `Process a claim document through triage and settlement recommendation,
persist the result, and print the processed claim.

The claim document is a JSON object with claimant_name, policy_number,
incident_date (YYYY-MM-DD) and incident_description. Pass "-" to read
from stdin.

Example:
  clem submit --db ./claims.db claim.json
  cat claim.json | clem submit --db ./claims.db -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

func runSubmit(opts *SubmitOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := readClaimDocument(path, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read claim document", err)
	}

	in, err := claim.ValidateInput(raw)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			_ = formatter.Error(ErrCodeValidation, "claim document is invalid", verr.Issues)
		} else {
			_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "claim document is invalid", err)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}

	client := opts.Client
	if client == nil {
		key, err := cfg.Reasoner.APIKey()
		if err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to resolve API key", err)
		}
		client = reasoner.NewOpenAI(reasoner.OpenAIOptions{
			APIKey:      key,
			Model:       cfg.Reasoner.Model,
			BaseURL:     cfg.Reasoner.BaseURL,
			Timeout:     cfg.Reasoner.Timeout(),
			Temperature: cfg.Reasoner.Temperature,
		})
	}

	formatter.VerboseLog("Opening database %s", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runner, err := workflow.NewClaimsRunner(client)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build workflow", err)
	}
	svc := claims.NewService(runner, st)

	formatter.VerboseLog("Processing claim for policy %s", in.PolicyNumber)
	rec, err := svc.Process(cmd.Context(), in)
	if err != nil {
		code := ErrCodeGeneric
		switch {
		case workflow.IsReasonerFailure(err):
			code = ErrCodeReasoner
		case workflow.IsInputValidation(err):
			code = ErrCodeValidation
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "claim processing failed", err)
	}

	return outputClaim(formatter, rec)
}

// readClaimDocument reads a claim JSON object from a file or stdin.
func readClaimDocument(path string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("claim document is not a JSON object: %w", err)
	}
	return raw, nil
}

// outputClaim renders a processed claim in the configured format.
func outputClaim(f *OutputFormatter, rec store.Claim) error {
	if f.Format == "json" {
		return f.JSON(rec)
	}

	w := f.Writer
	fmt.Fprintf(w, "Claim %s (%s)\n", rec.ID, rec.Status)
	fmt.Fprintf(w, "  Claimant:   %s (policy %s)\n", rec.ClaimantName, rec.PolicyNumber)
	fmt.Fprintf(w, "  Incident:   %s\n", rec.IncidentDate)
	fmt.Fprintf(w, "  Severity:   %s\n", rec.TriageResult.Severity)
	fmt.Fprintf(w, "  Assessment: %s\n", rec.TriageResult.Assessment)
	if len(rec.TriageResult.FraudFlags) > 0 {
		fmt.Fprintf(w, "  Fraud flags: %s\n", strings.Join(rec.TriageResult.FraudFlags, ", "))
	}
	fmt.Fprintf(w, "  Recommended settlement: $%.2f\n", rec.SettlementRecommendation.RecommendedAmount)
	fmt.Fprintf(w, "  Next steps: %s\n", rec.SettlementRecommendation.NextSteps)
	return nil
}
