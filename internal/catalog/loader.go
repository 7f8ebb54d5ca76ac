package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"upside-down-research.com/oss/goap/internal/goap"
)

// Format is a serialization format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// decode reads r into v, rejecting unknown fields.
func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return err
		}
		return nil
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode parses a single catalog document.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return &doc, nil
}

// LoadDocument reads and parses one catalog file.
func LoadDocument(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadFiles loads and merges catalog files in argument order, so goal priority
// and action order follow the order the files are given in.
func LoadFiles(paths ...string) (*Catalog, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no catalog files given", ErrInvalidCatalog)
	}

	merged := &Document{}
	for _, path := range paths {
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}
		merged.Merge(doc)
	}

	cat, err := merged.Build()
	if err != nil {
		return nil, err
	}
	cat.Sources = append([]string(nil), paths...)

	log.Debug("Catalog loaded", "files", len(paths), "goals", len(cat.Goals), "actions", len(cat.Actions))
	return cat, nil
}

// LoadState reads a world state snapshot: a flat map of predicate to bool.
func LoadState(path string) (goap.State, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	raw := map[string]bool{}
	if err := decode(bytes.NewReader(data), format, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}

	return goap.State(raw), nil
}

// ParseAssignments parses "name=bool" pairs, as given on the command line.
// A bare name means true and a leading '!' means false.
func ParseAssignments(assignments []string) (goap.State, error) {
	state := goap.NewState()
	for _, a := range assignments {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}

		name, value, hasValue := strings.Cut(a, "=")
		b := true
		if hasValue {
			parsed, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid assignment %q: %w", a, err)
			}
			b = parsed
		} else if strings.HasPrefix(name, "!") {
			name = strings.TrimPrefix(name, "!")
			b = false
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid assignment %q: empty name", a)
		}
		state.Set(name, b)
	}
	return state, nil
}
