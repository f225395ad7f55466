package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"portfolio-dashboard/internal/dashboard"
	"portfolio-dashboard/internal/format"
)

// Snapshot runs a single refresh cycle and writes the rendered charts as PNG
// files plus an account summary CSV into the output directory.
func (a *App) Snapshot(ctx context.Context, opts SnapshotOptions) error {
	if opts.Dir == "" {
		return fmt.Errorf("output directory is required")
	}

	view := a.initialView()
	if opts.Period != "" {
		view.Period = opts.Period
	}
	if opts.Benchmark != "" {
		view.Benchmark = opts.Benchmark
	}

	svc := a.newService(nil, view)
	snap, err := svc.RefreshView(ctx, view)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return err
	}

	charts := svc.Charts()
	written := 0
	for _, name := range charts.Names() {
		render, ok := charts.Get(name)
		if !ok {
			continue
		}
		png := render.PNG()
		if png == nil {
			continue
		}
		path := filepath.Join(opts.Dir, name+".png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written++
	}

	if len(snap.Summaries) > 0 {
		if err := writeSummaryCSV(filepath.Join(opts.Dir, "summary.csv"), snap); err != nil {
			return err
		}
	}

	a.Logger.Info().
		Int("charts", written).
		Int("section_errors", len(snap.Errors)).
		Str("dir", opts.Dir).
		Msg("snapshot written")
	return nil
}

func writeSummaryCSV(path string, snap *dashboard.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"fetched_at", "name", "equity", "cash", "positions", "day_pnl", "day_pnl_pct", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	fetched := snap.FetchedAt.Format(time.RFC3339)
	for _, s := range snap.Summaries {
		positions := ""
		if s.PositionsCount != nil {
			positions = strconv.Itoa(*s.PositionsCount)
		}
		pct := ""
		if s.DayProfitLossPct != nil {
			pct = format.SignedPercent(*s.DayProfitLossPct)
		}
		record := []string{
			fetched,
			s.Name,
			format.Number(s.Equity),
			format.Number(s.Cash),
			positions,
			format.Number(s.DayProfitLoss),
			pct,
			s.Error,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}
