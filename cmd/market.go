package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/desertthunder/steamwatch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MarketSearch searches the Steam market by item name.
func (r *Runner) MarketSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	ctl, err := r.session(ctx)
	if err != nil {
		return err
	}

	results, err := ctl.Search(ctx, query)
	if errors.Is(err, shared.ErrNoResults) {
		return r.writePlain("No items found for %q. Try the exact English item name, e.g. AK-47 | Redline (Field-Tested)\n", query)
	}
	if err != nil {
		return err
	}

	if limit := cmd.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Market results for %q", query))
	for i, res := range results {
		r.writePlain("%d. %s\n", i+1, res.Name)
		r.writePlain("   Hash name: %s\n", res.HashName)
		r.writePlain("   Listings: %d", res.SellListings)
		if res.Price != "" {
			r.writePlain(" • from %s", res.Price)
		}
		r.writePlain("\n")
	}
	return nil
}

// MarketPrice looks up current prices. One name prints the full quote; several names (or --file)
// are fetched concurrently.
func (r *Runner) MarketPrice(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if path := cmd.String("file"); path != "" {
		fromFile, err := readLines(path)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}

	switch len(names) {
	case 0:
		return fmt.Errorf("%w: at least one market hash name or --file", shared.ErrMissingArgument)
	case 1:
		return r.quoteOne(ctx, names[0], cmd.Bool("json"))
	}

	prog := make(chan tasks.ProgressUpdate, len(names)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := r.engine.BulkQuote(ctx, prog, names, tasks.BulkQuoteOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Remote.MarketRate,
	})
	close(prog)
	<-done
	if result == nil {
		return err
	}

	if cmd.Bool("json") {
		type row struct {
			HashName string `json:"hash_name"`
			Price    string `json:"price,omitempty"`
			Error    string `json:"error,omitempty"`
		}
		rows := make([]row, len(result.Results))
		for i, res := range result.Results {
			rows[i] = row{HashName: res.HashName}
			if res.OK() {
				rows[i].Price = res.Price.StringFixed(2)
			} else {
				rows[i].Error = res.Error.Error()
			}
		}
		if werr := r.writeJSON(rows, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Prices (%d/%d found)", result.Succeeded, result.Total))
	for _, res := range result.Results {
		if res.OK() {
			r.writePlain("✓ %-50s $%s\n", res.HashName, res.Price.StringFixed(2))
		} else {
			r.writePlain("✗ %-50s %v\n", res.HashName, res.Error)
		}
	}
	return err
}

func (r *Runner) quoteOne(ctx context.Context, hashName string, asJSON bool) error {
	quote, err := r.client.Quote(ctx, hashName)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(quote, true)
	}

	name := quote.ItemName
	if name == "" {
		name = hashName
	}
	r.writePlainHeader(name)
	if quote.Value.Valid {
		r.writePlain("Lowest: $%s\n", quote.Value.Decimal.StringFixed(2))
	} else {
		r.writePlain("Lowest: unavailable\n")
	}
	if quote.MedianPrice != "" {
		r.writePlain("Median: %s\n", quote.MedianPrice)
	}
	if quote.Volume != "" {
		r.writePlain("Volume: %s\n", quote.Volume)
	}
	return nil
}

// readLines returns the non-empty, non-comment lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
