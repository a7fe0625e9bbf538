package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} references with values
// from the environment.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

// LoadFile loads a fixture set from a single YAML file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data, path)
}

// LoadGlob loads and merges every file matching pattern, in lexical order.
// Patterns may use ** to match directories recursively. No matches yields
// an empty set.
func LoadGlob(pattern string) (*Set, error) {
	matches, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)

	set := &Set{}
	for _, match := range matches {
		loaded, err := LoadFile(match)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", match, err)
		}
		set.Merge(loaded)
	}
	return set, nil
}

// Parse decodes a fixture file. source names the data in errors.
func Parse(data []byte, source string) (*Set, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &ValidationError{File: source, Index: -1, Message: "file is empty"}
	}

	expanded := []byte(ExpandEnvVars(string(data)))

	var raw any
	if err := yaml.Unmarshal(expanded, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", source, err)
	}
	if err := validateDocument(source, raw); err != nil {
		return nil, err
	}

	var file File
	if err := yaml.Unmarshal(expanded, &file); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}
	if err := validateFixtures(source, file.Fixtures); err != nil {
		return nil, err
	}

	set := &Set{Log: file.Log, Fixtures: file.Fixtures}
	if file.Config != nil {
		set.Config = *file.Config
	}
	for i := range set.Fixtures {
		set.Fixtures[i].Source = source
	}
	return set, nil
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple patterns.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		// FilepathGlob returns matches using the OS path separator
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
