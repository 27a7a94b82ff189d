package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depdistill/pkg/analyzer"
)

// ErrInvalidDocument is returned when a decoded document lacks required fields.
var ErrInvalidDocument = errors.New("invalid result document")

// ReadJSON decodes a result document from r.
//
// Each project, framework and dependency must carry a name. Missing optional
// collections decode as absent. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*analyzer.Result, error) {
	var res analyzer.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ImportJSON reads a JSON file at path and returns the decoded result.
func ImportJSON(path string) (*analyzer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func validate(r *analyzer.Result) error {
	for i, p := range r.Projects.Items() {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: project %d has no name", ErrInvalidDocument, i)
		}
		for _, fw := range p.TargetFrameworks.Items() {
			if fw.Name == "" {
				return fmt.Errorf("%w: project %s: framework without name", ErrInvalidDocument, p.Name)
			}
			if err := validateDeps(fw.Dependencies.Items()); err != nil {
				return fmt.Errorf("project %s, framework %s: %w", p.Name, fw.Name, err)
			}
		}
	}
	return nil
}

func validateDeps(deps []analyzer.Dependency) error {
	for _, d := range deps {
		if d.Name == "" {
			return fmt.Errorf("%w: dependency without name", ErrInvalidDocument)
		}
		if err := validateDeps(d.Children.Items()); err != nil {
			return err
		}
	}
	return nil
}
