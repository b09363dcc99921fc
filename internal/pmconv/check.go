package pmconv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/fsutil"
	"go.followtheprocess.codes/pmconv/internal/spec"
	"golang.org/x/sync/errgroup"
)

// CheckOptions are the options passed to the check subcommand.
type CheckOptions struct {
	// Path is the path (file or directory) to check.
	Path string

	// Debug enables debug logging.
	Debug bool
}

// Check implements the check subcommand.
//
// A collection is valid if it loads and every request in it builds, requests with
// no method are reported as they would fail to render.
func (a App) Check(ctx context.Context, options CheckOptions) error {
	logger := a.logger.Prefixed("check").With(slog.String("path", options.Path))
	logger.Debug("Checking path")

	info, err := os.Stat(options.Path)
	if err != nil {
		return fmt.Errorf("could not get path info: %w", err)
	}

	var paths []string

	if info.IsDir() {
		logger.Debug("Path is a directory")

		paths, err = fsutil.CollectionFiles(options.Path)
		if err != nil {
			return err
		}
	} else {
		logger.Debug("Path is a file")

		paths = []string{options.Path}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no collection files found in %s", options.Path)
	}

	logger.Debug("Checking collection files given by path", slog.Int("number", len(paths)))

	group, ctx := errgroup.WithContext(ctx)

	for _, file := range paths {
		group.Go(func() error {
			return checkFile(ctx, file)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, file := range paths {
		msg.Fsuccess(a.stdout, "%s is valid", file)
	}

	return nil
}

// checkFile loads a single collection and builds every request in it.
func checkFile(ctx context.Context, file string) error {
	coll, err := collection.Load(file)
	if err != nil {
		return err
	}

	var options spec.BuildOptions
	if auth, ok := coll.Auth(); ok {
		options.Auth = &auth
	}

	for folder, item := range coll.Iterate() {
		if err := ctx.Err(); err != nil {
			return err
		}

		request, err := spec.Build(item, options)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", file, path.Join(folder, item.Name), err)
		}

		if _, err := request.Method(); err != nil {
			return fmt.Errorf("%s: %s: %w", file, path.Join(folder, item.Name), err)
		}
	}

	return nil
}
