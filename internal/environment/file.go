package environment

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

// Variable is a single named value loaded from an environment file.
type Variable struct {
	Key   string // Variable name
	Value string // Variable value
}

// postmanEnvironment is the exported Postman environment document.
type postmanEnvironment struct {
	Name   string         `json:"name"`
	Values []postmanValue `json:"values"`
}

type postmanValue struct {
	Enabled *bool  `json:"enabled"`
	Key     string `json:"key"`
	Value   any    `json:"value"`
}

// LoadFile reads the variables from an environment file in document order.
//
// Files ending in ".env" are read as dotenv files (sorted by key, as dotenv has no
// meaningful order), anything else as an exported Postman environment, in which case
// disabled values are skipped.
func LoadFile(path string) ([]Variable, error) {
	if filepath.Ext(path) == ".env" {
		return loadDotenv(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read environment file: %w", err)
	}

	var env postmanEnvironment
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not decode environment file %s: %w", path, err)
	}

	vars := make([]Variable, 0, len(env.Values))

	for _, value := range env.Values {
		if value.Key == "" || (value.Enabled != nil && !*value.Enabled) {
			continue
		}

		vars = append(vars, Variable{Key: value.Key, Value: stringify(value.Value)})
	}

	return vars, nil
}

func loadDotenv(path string) ([]Variable, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("could not read dotenv file %s: %w", path, err)
	}

	vars := make([]Variable, 0, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		vars = append(vars, Variable{Key: key, Value: values[key]})
	}

	return vars, nil
}

// stringify renders a decoded JSON scalar as a string.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
