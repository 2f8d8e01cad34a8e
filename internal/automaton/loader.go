package automaton

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// fileSpec is the on-disk shape of an automaton, shared between the
// CUE and YAML loaders.
type fileSpec struct {
	Name        string           `json:"name" yaml:"name"`
	States      []string         `json:"states" yaml:"states"`
	Initial     string           `json:"initial" yaml:"initial"`
	Transitions []transitionSpec `json:"transitions" yaml:"transitions"`
}

type transitionSpec struct {
	Name  string `json:"name" yaml:"name"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Load reads, compiles, and validates an automaton from a .cue or
// .yaml/.yml file, selected by extension.
func Load(path string) (*Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read automaton: %w", err)
	}

	var spec fileSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		if err := decodeCUE(data, path, &spec); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("%s: parse YAML automaton: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported automaton format %q (want .cue, .yaml, or .yml)", path, ext)
	}

	a := &Automaton{
		Name:    spec.Name,
		States:  spec.States,
		Initial: spec.Initial,
	}
	for _, t := range spec.Transitions {
		a.Transitions = append(a.Transitions, Transition{
			Name:  t.Name,
			From:  t.From,
			To:    t.To,
			Guard: t.Guard,
		})
	}
	if err := a.Compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func decodeCUE(data []byte, path string, spec *fileSpec) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("%s: compile CUE automaton: %w", path, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: automaton is not concrete: %w", path, err)
	}
	if err := v.Decode(spec); err != nil {
		return fmt.Errorf("%s: decode CUE automaton: %w", path, err)
	}
	return nil
}
