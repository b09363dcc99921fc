// Package pmconv implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package pmconv

import (
	"context"
	"io"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
)

// Styles.
const (
	// heading is the style used for the per collection header line.
	heading = hue.Bold

	// dimmed is the style used for informational content like the format
	// being converted or the elapsed time.
	dimmed = hue.BrightBlack | hue.Italic

	// success is the style used for successful format status lines.
	success = hue.Green | hue.Bold

	// failure is the style used for failed format and request status lines.
	failure = hue.Red | hue.Bold
)

// App represents the pmconv program.
type App struct {
	stdin  io.Reader   // Answers to interactive prompts are read from here
	stdout io.Writer   // Normal program output is written here
	stderr io.Writer   // Logs and errors are written here
	logger *log.Logger // The logger for the application

	// choose asks what to do about an existing settings file, replaced in tests
	choose func(ctx context.Context, path string) (DumpAction, error)
}

// New returns a new [App].
func New(debug bool, stdin io.Reader, stdout, stderr io.Writer) App {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(stderr, log.WithLevel(level)).Prefixed("pmconv")

	app := App{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}

	app.choose = app.promptDumpAction

	return app
}
