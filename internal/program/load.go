package program

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled during program loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Load reads a datalite program from path, which may be a directory of
// CUE files or a single .cue file. Declarations live under three
// top-level structs:
//
//	relation: {edge: {columns: {src: "INTEGER", dst: "INTEGER"}}}
//	fact:     {edge: [[1, 2], [2, 3]]}
//	rule:     {closure: "path(x, z) <= edge(x, z) | (edge(x, y) & path(y, z))"}
//
// Load decodes shape only; call Validate or Bind on the result to check
// cross-references. The returned Program holds whatever decoded cleanly,
// so in LoadModeCollectAll a partial program accompanies the errors.
//
// Files in a directory should share a package clause so CUE loads them
// as one instance.
func Load(path string, mode LoadMode) (*Program, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program path: %v", err)}}
	}

	var cfg *load.Config
	var args []string
	if info.IsDir() {
		cueFiles, scanErr := FindCUEFiles(path)
		if scanErr != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", scanErr)}}
		}
		if len(cueFiles) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		cfg = &load.Config{Dir: path}
		args = []string{"."}
	} else {
		if filepath.Ext(path) != ".cue" {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a CUE file: %s", path)}}
		}
		cfg = &load.Config{Dir: filepath.Dir(path)}
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return decodeProgram(value, mode)
}

// decodeProgram extracts the relation, fact, and rule declarations from
// a built CUE value.
func decodeProgram(value cue.Value, mode LoadMode) (*Program, []error) {
	prog := &Program{}
	var errs []error

	relVal := value.LookupPath(cue.ParsePath("relation"))
	if relVal.Exists() {
		iter, iterErr := relVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating relations: %v", iterErr)})
			if mode == LoadModeFailFast {
				return prog, errs
			}
		} else {
			for iter.Next() {
				def, decErr := decodeRelation(iter.Label(), iter.Value())
				if decErr != nil {
					errs = append(errs, decErr)
					if mode == LoadModeFailFast {
						return prog, errs
					}
					continue
				}
				prog.Relations = append(prog.Relations, def)
			}
		}
	}

	factVal := value.LookupPath(cue.ParsePath("fact"))
	if factVal.Exists() {
		iter, iterErr := factVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating facts: %v", iterErr)})
			if mode == LoadModeFailFast {
				return prog, errs
			}
		} else {
			for iter.Next() {
				fs, decErr := decodeFactSet(iter.Label(), iter.Value())
				if decErr != nil {
					errs = append(errs, decErr)
					if mode == LoadModeFailFast {
						return prog, errs
					}
					continue
				}
				prog.Facts = append(prog.Facts, fs)
			}
		}
	}

	ruleVal := value.LookupPath(cue.ParsePath("rule"))
	if ruleVal.Exists() {
		iter, iterErr := ruleVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating rules: %v", iterErr)})
			if mode == LoadModeFailFast {
				return prog, errs
			}
		} else {
			for iter.Next() {
				def, decErr := decodeRule(iter.Label(), iter.Value())
				if decErr != nil {
					errs = append(errs, decErr)
					if mode == LoadModeFailFast {
						return prog, errs
					}
					continue
				}
				prog.Rules = append(prog.Rules, def)
			}
		}
	}

	if len(prog.Relations) == 0 && len(prog.Facts) == 0 && len(prog.Rules) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no relations, facts, or rules found"})
	}

	return prog, errs
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
