package viewspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/viewql/internal/sqlview"
)

// LoadMode controls how errors are handled during view loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the views compiled from a directory.
type LoadResult struct {
	Views     []*sqlview.View
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// View returns the view with the given name, or nil.
func (r *LoadResult) View(name string) *sqlview.View {
	for _, v := range r.Views {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

// Names lists the loaded view names in declaration order.
func (r *LoadResult) Names() []string {
	names := make([]string, len(r.Views))
	for i, v := range r.Views {
		names[i] = v.Name()
	}
	return names
}

// LoadViews loads and compiles the CUE views in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadViews(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("views directory not found: %s", dir), Err: err}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing views directory: %v", err), Err: err}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), Err: inst.Err}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}
	errs := CompileViews(value, result, mode)

	if len(result.Views) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoViews, Message: fmt.Sprintf("no views declared in %s", dir)})
	}
	return result, errs
}

// CompileViews compiles every entry of the top-level "view" struct of
// value into result.
func CompileViews(value cue.Value, result *LoadResult, mode LoadMode) []error {
	var errs []error

	viewsVal := value.LookupPath(cue.ParsePath("view"))
	if !viewsVal.Exists() {
		return nil
	}

	iter, err := viewsVal.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating views: %v", err), Err: err}}
	}

	seen := make(map[string]bool)
	for iter.Next() {
		v, compileErr := CompileView(iter.Value())
		if compileErr == nil && seen[v.Name()] {
			compileErr = &LoadError{
				Code:    ErrCodeDuplicateView,
				Message: fmt.Sprintf("view %q declared twice", v.Name()),
				Pos:     iter.Value().Pos(),
			}
		}
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "view."+iter.Label()))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		seen[v.Name()] = true
		result.Views = append(result.Views, v)
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compile error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
		Err:     err,
	}
}
