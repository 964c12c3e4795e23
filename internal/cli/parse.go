package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/viewql/internal/iql"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Mode string // "filters" | "actions"
}

// ParseResult is the JSON payload of a successful parse.
type ParseResult struct {
	Mode string `json:"mode"`
	IQL  string `json:"iql"`
	Tree any    `json:"tree"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <iql>",
		Short: "Parse IQL and print its canonical form",
		Long: `Parse an IQL program without binding it to a view.

Prints the canonical rendering of the program. With --format json the
syntax tree is included.

Examples:
  viewql parse 'from_country("DE") and not min_experience(3)'
  viewql parse --mode actions 'sort_by("name")
top(5)'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "filters", "parse mode (filters|actions)")

	return cmd
}

func runParse(opts *ParseOptions, source string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	mode, err := iql.ParseMode(opts.Mode)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	node, err := iql.Parse(source, mode)
	if err != nil {
		var pe *iql.Error
		if errors.As(err, &pe) {
			line, col := pe.Position()
			_ = formatter.Error(string(pe.Code), pe.Message, map[string]any{
				"line":    line,
				"column":  col,
				"snippet": pe.Snippet(),
			})
			return WrapExitError(ExitFailure, "parse failed", err)
		}
		return WrapExitError(ExitCommandError, "parse failed", err)
	}

	rendered := iql.Render(node)
	if opts.Format == "json" {
		return formatter.Success(ParseResult{
			Mode: mode.String(),
			IQL:  rendered,
			Tree: syntaxTree(node),
		})
	}

	fmt.Fprintln(formatter.Writer, rendered)
	return nil
}

// syntaxTree converts a parsed node into plain maps and slices for JSON
// output. Calls become {"call": name, "args": [...]}, combinators become
// single-key objects.
func syntaxTree(n iql.Node) any {
	switch n := n.(type) {
	case *iql.Call:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.Value.Native()
		}
		return map[string]any{"call": n.Name, "args": args}
	case *iql.Literal:
		return n.Value.Native()
	case *iql.And:
		return map[string]any{"and": []any{syntaxTree(n.Left), syntaxTree(n.Right)}}
	case *iql.Or:
		return map[string]any{"or": []any{syntaxTree(n.Left), syntaxTree(n.Right)}}
	case *iql.Not:
		return map[string]any{"not": syntaxTree(n.Operand)}
	case *iql.Sequence:
		calls := make([]any, len(n.Calls))
		for i, c := range n.Calls {
			calls[i] = syntaxTree(c)
		}
		return calls
	default:
		return nil
	}
}
