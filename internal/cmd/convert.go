package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/pmconv/internal/pmconv"
)

const convertLong = `
Collections are given as files with '--file' or found by scanning directories
given with '--dir' for files ending in '.postman_collection.json'. Each collection
is converted to every selected '--format' beneath the '--output' directory:

  http   raw .http request files
  curl   curl shell scripts
  wget   wget shell scripts
  v2.0   the collection rewritten for the v2.0 schema
  v2.1   the collection rewritten for the v2.1 schema

Variables like {{base}} are replaced using the '--env' file (a Postman environment
or a .env file), then '--var' overrides, then the collection's own variables.
Unknown variables are left as they are.

The output directory is removed before converting unless '--preserve' is passed.

Options may also be kept in a settings file (pmconv.toml, pmconv.yaml or pmconv.json
in the current directory, or any file given with '--config'), flags take precedence
over the file. '--dump' writes the combined options to the settings file instead of
converting.
`

// convert returns the convert subcommand.
func convert() (*cli.Command, error) {
	var options pmconv.ConvertOptions

	return cli.New(
		"convert",
		cli.Short("Convert Postman collections to other formats"),
		cli.Long(convertLong),
		cli.Allow(cli.NoArgs()),
		cli.Flag(&options.Files, "file", 'f', "Collection file(s) to convert"),
		cli.Flag(&options.Dirs, "dir", 'd', "Directories to scan for collections"),
		cli.Flag(&options.Output, "output", 'o', "Directory to write converted files to"),
		cli.Flag(&options.Env, "env", 'e', "Postman environment or .env file"),
		cli.Flag(&options.Vars, "var", 'v', "Variable(s) as NAME=VALUE, override the environment"),
		cli.Flag(&options.Formats, "format", flag.NoShortHand, "Format(s) to convert to (http|curl|wget|v2.0|v2.1)"),
		cli.Flag(&options.All, "all", 'a', "Convert to every format"),
		cli.Flag(&options.HTTPVersion, "http-version", flag.NoShortHand, "HTTP version of the rendered requests"),
		cli.Flag(&options.Preserve, "preserve", 'p', "Keep the existing contents of the output directory"),
		cli.Flag(&options.Config, "config", 'c', "Path to a settings file"),
		cli.Flag(&options.Dump, "dump", flag.NoShortHand, "Save the arguments to the settings file and exit"),
		cli.Flag(&options.Debug, "debug", flag.NoShortHand, "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := pmconv.New(options.Debug, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Convert(ctx, options)
		}),
	)
}
