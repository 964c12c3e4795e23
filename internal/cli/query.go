package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/viewql/internal/config"
	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/nlq"
	"github.com/roach88/viewql/internal/sqlview"
	"github.com/roach88/viewql/internal/store"
	"github.com/roach88/viewql/internal/viewspec"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	View       string
	Question   string
	Filters    []string // scripted generator responses for the filters stage
	Actions    []string // scripted generator responses for the actions stage
	DB         string
	MaxRetries int
}

// QueryResult is the JSON payload of a successful query.
type QueryResult struct {
	AskID          string      `json:"ask_id"`
	Question       string      `json:"question,omitempty"`
	View           string      `json:"view"`
	Filters        string      `json:"filters,omitempty"`
	Actions        string      `json:"actions,omitempty"`
	FilterAttempts int         `json:"filter_attempts"`
	ActionAttempts int         `json:"action_attempts"`
	SQL            string      `json:"sql"`
	Params         []any       `json:"params"`
	Display        string      `json:"display"`
	Fingerprint    string      `json:"fingerprint"`
	Rows           *store.Rows `json:"rows,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [views-dir]",
		Short: "Answer a question with scripted IQL",
		Long: `Run one ask through the pipeline with the generator replaced by the
IQL given on the command line.

Each --filters or --actions flag is one generator response; repeat a flag
to script retries after a rejected response. A missing flag means the
stage has no operations.

The question is taken from --question, or read from stdin when stdin is
not a terminal. The views directory and database default to the values
in viewql.yaml. Without a database the SQL is printed but not executed.

Exit codes:
  0 - Query built (and executed)
  1 - IQL rejected or an operation failed
  2 - Command error (views, config, database)

Examples:
  viewql query ./views --view candidates --filters 'from_country("DE")'
  viewql query ./views --view candidates --filters 'min_experience(5)' --actions 'top(3)' --db candidates.db
  echo "senior engineers in Germany" | viewql query --view candidates --filters 'senior() and from_country("DE")'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewsDir := ""
			if len(args) == 1 {
				viewsDir = args[0]
			}
			return runQuery(cmd.Context(), opts, viewsDir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "view to query (may be omitted when only one view is declared)")
	cmd.Flags().StringVarP(&opts.Question, "question", "q", "", "natural-language question")
	cmd.Flags().StringArrayVar(&opts.Filters, "filters", nil, "filters-mode IQL response (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Actions, "actions", nil, "actions-mode IQL response (repeatable)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to execute against")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", nlq.DefaultMaxRetries, "extra generator attempts per stage")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, viewsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.LoadOptional(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if !opts.Verbose {
		configureLogging(cmd.ErrOrStderr(), cfg.Level())
	}

	// Flags override the config file.
	if viewsDir == "" {
		viewsDir = cfg.Views
	}
	if viewsDir == "" {
		_ = formatter.Error(ErrCodeConfig, "no views directory: pass one or set views in "+config.FileName, nil)
		return NewExitError(ExitCommandError, "no views directory")
	}
	dbPath := cfg.Database
	if cmd.Flags().Changed("db") {
		dbPath = opts.DB
	}
	maxRetries := cfg.MaxRetries
	if cmd.Flags().Changed("max-retries") {
		maxRetries = opts.MaxRetries
	}

	loaded, err := loadViews(formatter, viewsDir)
	if err != nil {
		return err
	}
	v, err := selectView(formatter, loaded, opts.View)
	if err != nil {
		return err
	}

	question := opts.Question
	if question == "" {
		question, err = readQuestion(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read question", err)
		}
	}

	var db sqlview.Querier
	if dbPath != "" {
		st, err := store.OpenReadOnly(dbPath)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		db = st
		formatter.VerboseLog("Executing against %s", dbPath)
	}

	gen := nlq.NewStaticGenerator().
		Script(iql.ModeFilters, opts.Filters...).
		Script(iql.ModeActions, opts.Actions...)
	pipeline := nlq.NewPipeline(gen, nlq.WithMaxRetries(maxRetries))

	res, err := pipeline.Ask(ctx, question, v, db)
	if err != nil {
		return outputQueryError(formatter, res, err)
	}

	out := QueryResult{
		AskID:          res.ID,
		Question:       res.Question,
		View:           res.View,
		Filters:        res.FiltersIQL(),
		Actions:        res.ActionsIQL(),
		FilterAttempts: res.FilterAttempts,
		ActionAttempts: res.ActionAttempts,
		SQL:            res.SQL,
		Params:         res.Params,
		Display:        res.Display,
		Fingerprint:    res.Fingerprint,
		Rows:           res.Rows,
	}
	if out.Params == nil {
		out.Params = []any{}
	}

	if opts.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: out, AskID: res.ID})
	}
	return outputQueryText(formatter.Writer, out)
}

// selectView picks the named view, or the only view when name is empty.
func selectView(formatter *OutputFormatter, loaded *viewspec.LoadResult, name string) (*sqlview.View, error) {
	if name != "" {
		return lookupView(formatter, loaded, name)
	}
	if len(loaded.Views) == 1 {
		return loaded.Views[0], nil
	}
	message := fmt.Sprintf("--view is required when several views are declared (available: %s)", strings.Join(loaded.Names(), ", "))
	_ = formatter.Error(ErrCodeUnknownView, message, nil)
	return nil, NewExitError(ExitCommandError, message)
}

// readQuestion reads the question from r unless r is a terminal.
func readQuestion(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return "", nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func outputQueryError(formatter *OutputFormatter, res *nlq.Result, err error) error {
	code := nlq.ErrorCode(err)
	details := map[string]any{
		"filter_attempts": res.FilterAttempts,
		"action_attempts": res.ActionAttempts,
	}
	if formatter.Format == "json" {
		if encErr := formatter.Encode(CLIResponse{
			Status: "error",
			AskID:  res.ID,
			Error:  &CLIError{Code: code, Message: err.Error(), Details: details},
		}); encErr != nil {
			return encErr
		}
	} else {
		_ = formatter.Error(code, err.Error(), details)
	}

	exitCode := ExitFailure
	if code == "ERROR" {
		exitCode = ExitCommandError
	}
	return WrapExitError(exitCode, "ask "+res.ID+" failed", err)
}

func outputQueryText(w io.Writer, out QueryResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ask\t%s\n", out.AskID)
	fmt.Fprintf(tw, "view\t%s\n", out.View)
	if out.Filters != "" {
		fmt.Fprintf(tw, "filters\t%s\n", out.Filters)
	}
	if out.Actions != "" {
		fmt.Fprintf(tw, "actions\t%s\n", strings.ReplaceAll(out.Actions, "\n", "; "))
	}
	fmt.Fprintf(tw, "sql\t%s\n", out.SQL)
	fmt.Fprintf(tw, "params\t%v\n", out.Params)
	fmt.Fprintf(tw, "display\t%s\n", out.Display)
	if err := tw.Flush(); err != nil {
		return err
	}

	if out.Rows == nil {
		return nil
	}
	fmt.Fprintln(w)
	return writeRows(w, out.Rows)
}

// writeRows prints a result set as an aligned table.
func writeRows(w io.Writer, rows *store.Rows) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rows.Columns, "\t"))
	for _, row := range rows.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", rows.Len())
	return nil
}

// Error codes for command-level query failures.
const (
	ErrCodeConfig   = "CONFIG"
	ErrCodeDatabase = "DATABASE"
)
