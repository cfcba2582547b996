package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/steamwatch/internal/formatter"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/desertthunder/steamwatch/internal/tasks"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

// TracksList prints the watchlist. Items at or below their target are marked regardless of status.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	tracks := ctl.Tracks()
	if cmd.Bool("reached") {
		filtered := []models.TrackedItem{}
		for _, t := range tracks {
			if t.TargetReached() {
				filtered = append(filtered, t)
			}
		}
		tracks = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}
	return r.printTracks("Watchlist", tracks)
}

// HistoryList prints items auto-purchase has bought.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	bought := ctl.History()
	if cmd.Bool("json") {
		return r.writeJSON(bought, true)
	}
	return r.printTracks("Purchase history", bought)
}

func (r *Runner) printTracks(title string, tracks []models.TrackedItem) error {
	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(tracks)))
	if len(tracks) == 0 {
		return r.writePlain("Nothing here yet.\n")
	}

	for _, t := range tracks {
		marker := " "
		if t.TargetReached() {
			marker = "★"
		}
		auto := ""
		if t.AutoPurchase {
			auto = " [auto]"
		}
		r.writePlain("%s #%d %s%s\n", marker, t.ID, t.Name, auto)
		r.writePlain("    $%s / target $%s • %s\n",
			t.CurrentPrice.StringFixed(2), t.TargetPrice.StringFixed(2), t.Status)
	}
	return nil
}

// TracksAdd starts tracking an item by market hash name at a target price.
func (r *Runner) TracksAdd(ctx context.Context, cmd *cli.Command) error {
	hashName := cmd.StringArg("name")
	if hashName == "" {
		return fmt.Errorf("%w: market hash name", shared.ErrMissingArgument)
	}
	target, err := parseTarget(cmd.String("target"))
	if err != nil {
		return err
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	item := models.SearchResult{Name: hashName, HashName: hashName}
	if results, err := r.client.Search(ctx, hashName); err == nil {
		for _, res := range results {
			if strings.EqualFold(res.HashName, hashName) {
				item = res
				break
			}
		}
	}

	if err := ctl.AddTrack(ctx, item, target); err != nil {
		return err
	}
	return r.writePlain("✓ Tracking %s at target $%s\n", item.Name, target.StringFixed(2))
}

// TracksImport tracks items from market listing URLs, given as arguments or one per line in --file.
func (r *Runner) TracksImport(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if path := cmd.String("file"); path != "" {
		fromFile, err := readLines(path)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one listing url or --file", shared.ErrMissingArgument)
	}

	target, err := parseTarget(cmd.String("target"))
	if err != nil {
		return err
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 2*len(urls))
	result, err := r.engine.ImportAll(ctx, prog, ctl.ImportFromURL, urls, target)
	close(prog)
	for update := range prog {
		r.logger.Debug(update.Message, "phase", update.Phase)
	}
	if result == nil {
		return err
	}

	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("✗ %s: %v\n", res.URL, res.Error)
		} else {
			r.writePlain("✓ %s\n", res.URL)
		}
	}
	r.writePlainln("Imported %d of %d", result.Succeeded, result.Total)
	if err == nil && result.Failed > 0 {
		err = fmt.Errorf("%d of %d listings could not be imported", result.Failed, result.Total)
	}
	return err
}

// TracksTarget changes an item's target price.
func (r *Runner) TracksTarget(ctx context.Context, cmd *cli.Command) error {
	id, err := parseTrackID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	target, err := parseTarget(cmd.StringArg("price"))
	if err != nil {
		return err
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	if err := ctl.UpdateTarget(ctx, id, target); err != nil {
		return err
	}
	return r.writePlain("✓ Target for #%d set to $%s\n", id, target.StringFixed(2))
}

// TracksAuto turns auto-purchase on or off for an item.
func (r *Runner) TracksAuto(ctx context.Context, cmd *cli.Command) error {
	id, err := parseTrackID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	var enabled bool
	switch state := strings.ToLower(cmd.StringArg("state")); state {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
	default:
		return fmt.Errorf("%w: state must be on or off, got %q", shared.ErrInvalidArgument, state)
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	if err := ctl.ToggleAutoPurchase(ctx, id, enabled); err != nil {
		return err
	}

	state := "off"
	if enabled {
		state = "on"
	}
	return r.writePlain("✓ Auto-purchase %s for #%d\n", state, id)
}

// TracksDelete stops tracking an item.
func (r *Runner) TracksDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseTrackID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	if err := ctl.DeleteTrack(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed #%d\n", id)
}

// TracksRefresh re-prices every item and lets auto-purchase run once.
func (r *Runner) TracksRefresh(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	report, err := ctl.RefreshPrices(ctx)
	if report == nil {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(report, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlain("%s\n", report.Summary())
	for _, p := range report.PurchasesMade {
		r.writePlain("  🛒 %s bought for $%s\n", p.ItemName, p.Price.StringFixed(2))
	}
	for _, d := range report.PriceDrops {
		r.writePlain("  ↓ %s: $%s → $%s (target $%s)\n",
			d.ItemName, d.OldPrice.StringFixed(2), d.NewPrice.StringFixed(2), d.TargetPrice.StringFixed(2))
	}
	for _, e := range report.Errors {
		r.writePlain("  ✗ %s: %s\n", e.ItemName, e.Error)
	}
	return err
}

// TracksExport writes the watchlist to disk as csv, markdown, txt or json.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	export := &formatter.Export{
		Owner:      *ctl.Identity(),
		Tracks:     ctl.Tracks(),
		ExportedAt: time.Now().UTC(),
	}
	output := cmd.String("output")

	switch format := cmd.String("format"); format {
	case "csv":
		res, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s and %s\n", res.TracksFile, res.MetadataFile)

	case "markdown", "md":
		res, err := formatter.WriteMarkdownExport(export, output, export.Owner.AvatarURL)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d files to %s\n", len(res.Files), res.Directory)

	case "txt", "text":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)

	case "json":
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return err
		}
		if output == "" {
			_, err := r.output.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlain("✓ Exported to %s\n", output)

	default:
		return fmt.Errorf("%w: unknown format %q (csv, markdown, txt, json)", shared.ErrInvalidArgument, format)
	}
}

func parseTrackID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: track id %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

func parseTarget(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: target price", shared.ErrMissingArgument)
	}
	target, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: target price %q", shared.ErrInvalidArgument, s)
	}
	return target, nil
}
