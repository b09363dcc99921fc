package pmconv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/environment"
	"go.followtheprocess.codes/pmconv/internal/format"
	"go.followtheprocess.codes/pmconv/internal/fsutil"
	"go.followtheprocess.codes/pmconv/internal/settings"
	"go.followtheprocess.codes/pmconv/internal/spec"
)

// ErrNoCollections is returned when there is nothing to convert.
var ErrNoCollections = errors.New("there are no collections to convert")

// ConvertOptions are the options passed to the convert subcommand.
type ConvertOptions struct {
	// Collection files to convert.
	Files []string

	// Directories scanned recursively for collection files.
	Dirs []string

	// Variables given as NAME=VALUE, these override the environment file.
	Vars []string

	// Formats to convert to, by ID.
	Formats []string

	// Output is the directory beneath which all formats are written.
	Output string

	// Env is the path to a Postman environment or dotenv file.
	Env string

	// HTTPVersion of the rendered requests.
	HTTPVersion string

	// Config is the path to a settings file, if empty a settings file in the
	// working directory is used when there is one.
	Config string

	// Preserve keeps the existing contents of Output.
	Preserve bool

	// All converts to every known format.
	All bool

	// Dump writes the resolved settings to the settings file instead of converting.
	Dump bool

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the ConvertOptions is valid, returning an error
// if it's not.
//
// Only the flags themselves are validated here, required values such as the
// output directory may still come from a settings file.
func (c ConvertOptions) Validate() error {
	for _, variable := range c.Vars {
		name, _, ok := strings.Cut(variable, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid --var %q, expected NAME=VALUE", variable)
		}
	}

	for _, id := range c.Formats {
		if _, err := format.Parse(id); err != nil {
			return err
		}
	}

	if c.HTTPVersion != "" {
		if _, err := spec.ParseHTTPVersion(c.HTTPVersion); err != nil {
			return err
		}
	}

	return nil
}

// settings returns the options as [settings.Settings].
func (c ConvertOptions) settings() settings.Settings {
	s := settings.Settings{
		Files:       c.Files,
		Dirs:        c.Dirs,
		Formats:     c.Formats,
		Output:      c.Output,
		Env:         c.Env,
		HTTPVersion: c.HTTPVersion,
		Preserve:    c.Preserve,
	}

	if c.All {
		s.Formats = nil
		for _, id := range format.All() {
			s.Formats = append(s.Formats, id.String())
		}
	}

	if len(c.Vars) != 0 {
		s.Vars = make(map[string]string, len(c.Vars))

		for _, variable := range c.Vars {
			name, value, _ := strings.Cut(variable, "=")
			s.Vars[strings.TrimSpace(name)] = value
		}
	}

	return s
}

// Convert implements the convert subcommand.
func (a App) Convert(ctx context.Context, options ConvertOptions) error {
	logger := a.logger.Prefixed("convert")
	logger.Debug("Convert configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	if err := options.Validate(); err != nil {
		return err
	}

	configPath, resolved, err := a.resolveSettings(logger, options)
	if err != nil {
		return err
	}

	if options.Dump {
		return a.Dump(ctx, configPath, resolved)
	}

	if resolved.Output == "" {
		return errors.New("an output directory is required, pass --output or set output in a settings file")
	}

	formats, err := formatsOf(resolved.Formats)
	if err != nil {
		return err
	}

	paths, err := collectionPaths(resolved)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return ErrNoCollections
	}

	logger.Debug("Collected collections", slog.Int("count", len(paths)), slog.Any("formats", formats))

	vars, err := externalVars(logger, resolved)
	if err != nil {
		return err
	}

	if !resolved.Preserve {
		logger.Debug("Removing output directory", slog.String("output", resolved.Output))

		if err := fsutil.RemoveDir(resolved.Output); err != nil {
			return err
		}
	}

	if _, err := fsutil.EnsureDir(resolved.Output); err != nil {
		return err
	}

	start := time.Now()
	converted := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(a.stdout, "Converting %s (%d/%d):\n", heading.Text(path), i+1, len(paths))

		if a.convertCollection(logger, path, vars, formats, resolved) {
			converted++
		}
	}

	fmt.Fprintf(
		a.stdout,
		"\nConverted %d/%d collections in %s\n",
		converted,
		len(paths),
		dimmed.Text(time.Since(start).Round(time.Millisecond).String()),
	)

	if converted != len(paths) {
		return fmt.Errorf("%d of %d collections failed to convert", len(paths)-converted, len(paths))
	}

	return nil
}

// convertCollection converts a single collection to every format, printing a
// status line per format. It reports whether every format succeeded.
func (a App) convertCollection(
	logger *log.Logger,
	path string,
	external *environment.Table,
	formats []format.ID,
	resolved settings.Settings,
) bool {
	logger = logger.With(slog.String("collection", path))

	coll, err := collection.Load(path)
	if err != nil {
		fmt.Fprintf(a.stdout, "  %s %v\n", failure.Text("ERROR:"), err)
		return false
	}

	// Collection variables only apply to their own collection
	vars := external.Clone()
	for _, variable := range coll.Variables() {
		if vars.Set(variable.Key, variable.Value) {
			logger.Warn("Collection variable overrides an existing value", slog.String("variable", variable.Key))
		}
	}

	logger.Debug(
		"Loaded collection",
		slog.String("name", coll.Name()),
		slog.String("version", coll.Version().String()),
		slog.Int("variables", vars.Len()),
	)

	ok := true

	for _, id := range formats {
		fmt.Fprintf(a.stdout, "> %s\n", dimmed.Text(id.String()))

		converter, err := format.Lookup(id)
		if err != nil {
			fmt.Fprintf(a.stdout, "  %s %v\n", failure.Text("ERROR:"), err)
			ok = false

			continue
		}

		result, err := converter.Convert(coll, format.Options{
			Vars:        vars,
			OutputRoot:  resolved.Output,
			HTTPVersion: resolved.HTTPVersion,
		})
		if err != nil {
			fmt.Fprintf(a.stdout, "  %s %v\n", failure.Text("ERROR:"), err)
			ok = false

			continue
		}

		fmt.Fprintf(a.stdout, "  %s %s\n", success.Text("OK:"), result.Path)

		for _, failed := range result.Failures {
			fmt.Fprintf(a.stdout, "  %s %v\n", failure.Text("!"), failed)
		}

		logger.Debug(
			"Converted collection",
			slog.String("format", id.String()),
			slog.Int("written", result.Written),
			slog.Int("failed", len(result.Failures)),
			slog.Bool("rewritten", result.Rewritten),
		)
	}

	return ok
}

// resolveSettings loads the settings file, if there is one, and merges the
// command line options over it. It returns the path settings should be dumped to.
func (a App) resolveSettings(logger *log.Logger, options ConvertOptions) (string, settings.Settings, error) {
	path := options.Config
	if path == "" {
		found, ok := settings.Find(".")
		if !ok {
			return settings.Names[0], options.settings(), nil
		}

		path = found
	}

	// A settings file named explicitly for --dump need not exist yet
	if options.Dump {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, options.settings(), nil
		}
	}

	logger.Debug("Loading settings file", slog.String("path", path))

	file, err := settings.Load(path)
	if err != nil {
		return "", settings.Settings{}, err
	}

	merged := file.Merge(options.settings())

	// --all wins over whatever the file lists
	if options.All {
		merged.Formats = options.settings().Formats
	}

	return path, merged, nil
}

// formatsOf parses format IDs, defaulting to http when there are none.
func formatsOf(ids []string) ([]format.ID, error) {
	if len(ids) == 0 {
		return []format.ID{format.HTTP}, nil
	}

	formats := make([]format.ID, 0, len(ids))

	for _, raw := range ids {
		id, err := format.Parse(raw)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(formats, id) {
			formats = append(formats, id)
		}
	}

	return formats, nil
}

// collectionPaths returns the explicitly named files followed by those found in
// the directories, without duplicates.
func collectionPaths(resolved settings.Settings) ([]string, error) {
	var paths []string

	add := func(path string) {
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}

	for _, file := range resolved.Files {
		add(file)
	}

	for _, dir := range resolved.Dirs {
		found, err := fsutil.CollectionFiles(dir)
		if err != nil {
			return nil, err
		}

		for _, file := range found {
			add(file)
		}
	}

	return paths, nil
}

// externalVars builds the variable table shared by every collection: the
// environment file first, then the explicit variables.
func externalVars(logger *log.Logger, resolved settings.Settings) (*environment.Table, error) {
	table := environment.NewTable()

	if resolved.Env != "" {
		values, err := environment.LoadFile(resolved.Env)
		if err != nil {
			return nil, err
		}

		for _, variable := range values {
			if table.Set(variable.Key, variable.Value) {
				logger.Warn("Environment variable defined twice", slog.String("variable", variable.Key))
			}
		}

		logger.Debug("Loaded environment", slog.String("path", resolved.Env), slog.Int("variables", len(values)))
	}

	for _, name := range slices.Sorted(maps.Keys(resolved.Vars)) {
		if table.Set(name, resolved.Vars[name]) {
			logger.Warn("Variable overrides the environment", slog.String("variable", name))
		}
	}

	return table, nil
}
