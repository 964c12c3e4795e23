package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/sqlview"
	"github.com/roach88/viewql/internal/viewspec"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	View string // restrict output to one view
}

// CatalogEntry describes one registered operation.
type CatalogEntry struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description,omitempty"`
}

// CatalogView lists the operations a view accepts.
type CatalogView struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Filters     []CatalogEntry `json:"filters"`
	Actions     []CatalogEntry `json:"actions"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog <views-dir>",
		Short: "List the operations each view accepts",
		Long: `Print the filter and action catalogue of each view, in the form the
text generator is shown.

Examples:
  viewql catalog ./views
  viewql catalog ./views --view candidates --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "only show this view")

	return cmd
}

func runCatalog(opts *CatalogOptions, viewsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := loadViews(formatter, viewsDir)
	if err != nil {
		return err
	}

	views := loaded.Views
	if opts.View != "" {
		v, err := lookupView(formatter, loaded, opts.View)
		if err != nil {
			return err
		}
		views = []*sqlview.View{v}
	}

	if opts.Format == "json" {
		out := make([]CatalogView, len(views))
		for i, v := range views {
			out[i] = CatalogView{
				Name:        v.Name(),
				Description: v.Description(),
				Filters:     catalogEntries(v.Registry().Filters()),
				Actions:     catalogEntries(v.Registry().Actions()),
			}
		}
		return formatter.Success(out)
	}

	w := formatter.Writer
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if v.Description() != "" {
			fmt.Fprintf(w, "view %s - %s\n", v.Name(), v.Description())
		} else {
			fmt.Fprintf(w, "view %s\n", v.Name())
		}
		writeCatalog(formatter, "filters", v.Registry(), registry.KindFilter)
		writeCatalog(formatter, "actions", v.Registry(), registry.KindAction)
	}
	return nil
}

func writeCatalog(formatter *OutputFormatter, heading string, reg *registry.Registry, kind registry.Kind) {
	fmt.Fprintf(formatter.Writer, "  %s:\n", heading)
	if reg.Len(kind) == 0 {
		fmt.Fprintln(formatter.Writer, "    (none)")
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(registry.Catalog(reg, kind), "\n"), "\n") {
		fmt.Fprintf(formatter.Writer, "    %s\n", line)
	}
}

func catalogEntries(sigs []*registry.Signature) []CatalogEntry {
	out := make([]CatalogEntry, len(sigs))
	for i, sig := range sigs {
		out[i] = CatalogEntry{
			Name:        sig.Name,
			Signature:   sig.String(),
			Description: sig.Description,
		}
	}
	return out
}

// loadViews loads a views directory fail-fast, reporting the first error
// through formatter.
func loadViews(formatter *OutputFormatter, viewsDir string) (*viewspec.LoadResult, error) {
	loaded, errs := viewspec.LoadViews(viewsDir, viewspec.LoadModeFailFast)
	if len(errs) == 0 {
		formatter.VerboseLog("Loaded %d view(s) from %d CUE file(s) in %s", len(loaded.Views), loaded.FileCount, viewsDir)
		return loaded, nil
	}

	code, message := viewspec.ErrCodeGeneric, errs[0].Error()
	var loadErr *viewspec.LoadError
	if errors.As(errs[0], &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func lookupView(formatter *OutputFormatter, loaded *viewspec.LoadResult, name string) (*sqlview.View, error) {
	if v := loaded.View(name); v != nil {
		return v, nil
	}
	message := fmt.Sprintf("view %q not found (available: %s)", name, strings.Join(loaded.Names(), ", "))
	_ = formatter.Error(ErrCodeUnknownView, message, nil)
	return nil, NewExitError(ExitCommandError, message)
}

// ErrCodeUnknownView reports a --view flag naming no loaded view.
const ErrCodeUnknownView = "UNKNOWN_VIEW"
