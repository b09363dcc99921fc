package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/pmconv/internal/pmconv"
)

const checkLong = `
The path argument may be a directory or a file.

If it is the name of a collection file, then this file alone is checked
for validity.

If it is a directory, this directory is scanned recursively for all
files ending in '.postman_collection.json' and any matching files will be validated.

A collection is valid if it can be loaded and every request in it has a method.
`

// check returns the check subcommand.
func check() (*cli.Command, error) {
	var options pmconv.CheckOptions

	return cli.New(
		"check",
		cli.Short("Check Postman collections for errors"),
		cli.Long(checkLong),
		cli.Arg(&options.Path, "path", "Path to check, may be directory or file", cli.ArgDefault(".")),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := pmconv.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Check(ctx, options)
		}),
	)
}
