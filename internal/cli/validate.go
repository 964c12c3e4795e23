package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/viewql/internal/viewspec"
)

// ValidationError is one problem found in a views directory.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Views  []string          `json:"views,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <views-dir>",
		Short: "Validate view declarations",
		Long: `Validate the CUE view declarations in a directory.

Every view is compiled: tables, columns, operation signatures, where
clauses and action clauses are checked. All problems are reported, not
just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, viewsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loaded, loadErrors := viewspec.LoadViews(viewsDir, viewspec.LoadModeCollectAll)

	// Directory missing, no files, CUE that does not build.
	if loaded == nil && len(loadErrors) > 0 {
		var loadErr *viewspec.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, viewspec.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, viewsDir)
	for _, name := range loaded.Names() {
		formatter.VerboseLog("Compiled view: %s", name)
	}

	if len(loadErrors) > 0 {
		validationErrors := make([]ValidationError, 0, len(loadErrors))
		for _, err := range loadErrors {
			validationErrors = append(validationErrors, toValidationError(err))
		}
		return outputValidationErrors(formatter, loaded.Names(), validationErrors)
	}

	return outputValidateSuccess(formatter, loaded.Names())
}

func toValidationError(err error) ValidationError {
	var loadErr *viewspec.LoadError
	if !errors.As(err, &loadErr) {
		return ValidationError{Code: viewspec.ErrCodeGeneric, Message: err.Error()}
	}
	ve := ValidationError{Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		ve.File = loadErr.Pos.Filename()
		ve.Line = loadErr.Pos.Line()
	}
	return ve
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, views []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Views: views})
	}

	fmt.Fprintf(formatter.Writer, "✓ All views valid (%d views)\n", len(views))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, views []string, errs []ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Views:  views,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return exitErr
}
