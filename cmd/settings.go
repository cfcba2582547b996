package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// SettingsInterval shows the refresh interval, or stores a new one when a value is given.
func (r *Runner) SettingsInterval(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.session(ctx)
	if err != nil {
		return err
	}

	value := cmd.StringArg("minutes")
	if value == "" {
		current := ctl.Interval()
		r.writePlain("Refresh interval: %s\n", current)
		r.writePlain("Choices (minutes): %s\n", intervalChoices())
		return nil
	}

	interval, err := models.ParseInterval(value)
	if err != nil {
		return fmt.Errorf("%w: %v (choices: %s)", shared.ErrInvalidArgument, err, intervalChoices())
	}
	if err := ctl.SetInterval(interval); err != nil {
		return err
	}
	return r.writePlain("✓ Refresh interval set to %s\n", interval)
}

func intervalChoices() string {
	choices := make([]string, len(models.Intervals))
	for i, interval := range models.Intervals {
		if !interval.Enabled() {
			choices[i] = "off"
			continue
		}
		choices[i] = fmt.Sprintf("%g", float64(interval))
	}
	return strings.Join(choices, ", ")
}
