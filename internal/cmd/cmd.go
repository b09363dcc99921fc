// Package cmd implements pmconv's CLI.
package cmd

import (
	"go.followtheprocess.codes/cli"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build builds and returns the pmconv CLI.
func Build() (*cli.Command, error) {
	return cli.New(
		"pmconv",
		cli.Short("Convert Postman collections to .http files, curl and wget scripts"),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Convert a collection to .http files", "pmconv convert -f api.postman_collection.json -o out"),
		cli.Example(
			"Convert every collection in a directory to all formats with an environment",
			"pmconv convert -d ./collections -o out --all -e dev.postman_environment.json",
		),
		cli.Example("Downgrade a collection to the v2.0 schema", "pmconv convert -f api.postman_collection.json -o out --format v2.0"),
		cli.Example("Save the arguments to a settings file", "pmconv convert -d ./collections -o out --var token=abc --dump"),
		cli.Example("Check collections for problems (recursively)", "pmconv check ./collections"),
		cli.Allow(cli.NoArgs()),
		cli.SubCommands(convert, check),
	)
}
