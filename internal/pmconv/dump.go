package pmconv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/pmconv/internal/settings"
)

// DumpAction is what to do when dumping settings to a file that already exists.
type DumpAction string

const (
	// DumpOverwrite replaces the existing settings file.
	DumpOverwrite DumpAction = "overwrite"

	// DumpBackup copies the existing settings file aside, then replaces it.
	DumpBackup DumpAction = "backup"

	// DumpCancel leaves the existing settings file alone.
	DumpCancel DumpAction = "cancel"
)

// Dump writes resolved settings to path. If path exists the user is asked whether
// to overwrite it, back it up first or leave it alone.
func (a App) Dump(ctx context.Context, path string, resolved settings.Settings) error {
	logger := a.logger.Prefixed("dump").With(slog.String("path", path))

	_, err := os.Stat(path)

	switch {
	case err == nil:
		action, err := a.choose(ctx, path)
		if err != nil {
			return fmt.Errorf("could not ask what to do with %s: %w", path, err)
		}

		switch action {
		case DumpOverwrite:
			logger.Debug("Overwriting existing settings file")
		case DumpBackup:
			backup, err := settings.Backup(path, time.Now())
			if err != nil {
				return err
			}

			msg.Finfo(a.stdout, "Settings file has been backed up to %s", backup)
		default:
			msg.Finfo(a.stdout, "Current settings file has not been changed")
			return nil
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("Creating settings file")
	default:
		return fmt.Errorf("could not get settings file info: %w", err)
	}

	if err := settings.Save(path, resolved); err != nil {
		return err
	}

	msg.Fsuccess(a.stdout, "Arguments have been saved to settings file %s", path)

	return nil
}

// promptDumpAction asks the user what to do about an existing settings file.
func (a App) promptDumpAction(ctx context.Context, path string) (DumpAction, error) {
	action := DumpCancel

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[DumpAction]().
				Title(fmt.Sprintf("Settings file %s already exists", path)).
				Options(
					huh.NewOption("Overwrite it", DumpOverwrite),
					huh.NewOption("Back it up, then overwrite it", DumpBackup),
					huh.NewOption("Cancel", DumpCancel),
				).
				Value(&action),
		),
	).WithInput(a.stdin).WithOutput(a.stderr)

	if err := form.RunWithContext(ctx); err != nil {
		return DumpCancel, err
	}

	return action, nil
}
