// Package ifspec reads and checks interface specification documents that
// list the input and output names a component is expected to expose.
package ifspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/flighteom/internal/eom"
)

var (
	// ErrMissing indicates the specification file does not exist.
	ErrMissing = errors.New("ifspec: specification file missing")

	// ErrMismatch indicates the component does not match its specification.
	ErrMismatch = errors.New("ifspec: interface does not match specification")
)

// Spec is the interface of one component.
type Spec struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// MismatchError carries a readable diff between the spec and the component.
type MismatchError struct {
	Path string
	Diff string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s does not match component (-spec +component):\n%s", e.Path, e.Diff)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Load reads a spec file. A missing file yields an error matching ErrMissing.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, err
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.normalize()
	return &s, nil
}

// FromComponent builds the spec a component currently satisfies.
func FromComponent(c eom.Component) *Spec {
	s := &Spec{}
	for _, v := range c.Inputs() {
		s.Inputs = append(s.Inputs, v.Name)
	}
	for _, v := range c.Outputs() {
		s.Outputs = append(s.Outputs, v.Name)
	}
	s.normalize()
	return s
}

// Write stores s as indented JSON, creating parent directories.
func Write(path string, s *Spec) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Match compares c with the spec stored at path. Order is ignored.
func Match(c eom.Component, path string) error {
	want, err := Load(path)
	if err != nil {
		return err
	}
	got := FromComponent(c)
	if diff := cmp.Diff(want, got); diff != "" {
		return &MismatchError{Path: path, Diff: diff}
	}
	return nil
}

func (s *Spec) normalize() {
	if s.Inputs == nil {
		s.Inputs = []string{}
	}
	if s.Outputs == nil {
		s.Outputs = []string{}
	}
	sort.Strings(s.Inputs)
	sort.Strings(s.Outputs)
}
