package conformance

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var builtinFS embed.FS

// caseFile is the top-level layout of a case document.
type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// Load reads every YAML document from r and returns their cases in order.
// Unknown fields are rejected so that typos do not silently drop checks.
func Load(r io.Reader) ([]Case, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cases []Case
	for {
		var doc caseFile
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode cases: %w", err)
		}
		for i := range doc.Cases {
			if err := doc.Cases[i].Validate(); err != nil {
				return nil, err
			}
		}
		cases = append(cases, doc.Cases...)
	}
	return cases, nil
}

// LoadFile loads the cases stored at path.
func LoadFile(path string) ([]Case, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("open case file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cases, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// LoadFS loads every file in fsys matching pattern, in lexical order.
func LoadFS(fsys fs.FS, pattern string) ([]Case, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no case files match %q", pattern)
	}

	var cases []Case
	for _, name := range matches {
		f, err := fsys.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		loaded, err := Load(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		cases = append(cases, loaded...)
	}
	return cases, nil
}

// Builtin returns the cases shipped with the package.
func Builtin() ([]Case, error) {
	return LoadFS(builtinFS, "testdata/*.yaml")
}
