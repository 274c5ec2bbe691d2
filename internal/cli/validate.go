package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/spf13/cobra"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/schema"
)

// claimSchema is the CUE schema a submitted claim document must satisfy.
// It mirrors the workflow input contract; the contract check afterwards
// adds calendar-aware date validation that the regex cannot express.
const claimSchema = `
import "strings"

#ClaimInput: {
	claimant_name:        string & strings.MinRunes(1)
	policy_number:        string & strings.MinRunes(1)
	incident_date:        string & =~"^\\d{4}-\\d{2}-\\d{2}$"
	incident_description: string & strings.MinRunes(20)
}
`

// ValidationIssue is one field-level problem in a claim document.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation output for a claim document.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <claim.json>",
		Short: "Validate a claim document without processing it",
		Long: `Validate a claim document against the submission schema without
invoking the workflow. Reports every problem found, not just the first.

Example:
  clem validate claim.json
  clem validate claim.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateClaim(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateClaim(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read claim document", err)
	}

	issues, err := validateClaimDocument(path, data, formatter)
	if err != nil {
		_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
		return WrapExitError(ExitFailure, "claim document is not valid JSON", err)
	}

	if len(issues) > 0 {
		return outputValidationIssues(formatter, issues)
	}

	if formatter.Format == "json" {
		return formatter.JSON(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Claim document is valid")
	return nil
}

// validateClaimDocument checks a claim document against the CUE schema
// and the submission contract, collecting issues from both passes.
func validateClaimDocument(path string, data []byte, formatter *OutputFormatter) ([]ValidationIssue, error) {
	ctx := cuecontext.New()

	expr, err := cuejson.Extract(path, data)
	if err != nil {
		return nil, err
	}
	docVal := ctx.BuildExpr(expr)
	if docVal.Err() != nil {
		return nil, docVal.Err()
	}

	schemaVal := ctx.CompileString(claimSchema).LookupPath(cue.ParsePath("#ClaimInput"))
	if schemaVal.Err() != nil {
		return nil, fmt.Errorf("compile claim schema: %w", schemaVal.Err())
	}

	var issues []ValidationIssue

	formatter.VerboseLog("Checking %s against submission schema", path)
	unified := schemaVal.Unify(docVal)
	if verr := unified.Validate(cue.Concrete(true), cue.Final()); verr != nil {
		for _, e := range cueerrors.Errors(verr) {
			issues = append(issues, ValidationIssue{
				Field:   strings.Join(e.Path(), "."),
				Message: e.Error(),
			})
		}
		return issues, nil
	}

	// The regex admits dates like 2024-13-40; the contract parses them.
	var raw map[string]any
	if err := docVal.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := claim.ValidateInput(raw); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				issues = append(issues, ValidationIssue{Field: issue.Field, Message: issue.Message})
			}
		} else {
			issues = append(issues, ValidationIssue{Message: err.Error()})
		}
	}
	return issues, nil
}

// outputValidationIssues renders issues and signals a validation failure.
func outputValidationIssues(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Issues: issues}
		_ = formatter.Error(ErrCodeValidation, "claim document is invalid", result)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s\n", issue.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
}
