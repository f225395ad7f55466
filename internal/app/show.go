package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/format"
)

// Show prints the current account summary cards as a table.
func (a *App) Show(ctx context.Context) error {
	client := a.newClient()

	summaries, err := client.AccountSummaries(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(os.Stdout, "no accounts configured")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Account\tEquity\tCash\tPositions\tDay P/L\tDay P/L %\tError")

	for _, s := range summaries {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			summaryLabel(s),
			format.Money(s.Equity),
			cashColumn(s),
			positionsColumn(s),
			format.Money(s.DayProfitLoss),
			pctColumn(s),
			sanitizeInline(s.Error),
		)
	}

	return writer.Flush()
}

func summaryLabel(s api.AccountSummary) string {
	switch {
	case s.IsTotal:
		return s.Name + " (total)"
	case s.IsMarket:
		return s.Name + " (market)"
	default:
		return s.Name
	}
}

func cashColumn(s api.AccountSummary) string {
	if s.IsMarket || s.HasError() {
		return "-"
	}
	return format.Money(s.Cash)
}

func positionsColumn(s api.AccountSummary) string {
	if s.IsMarket || s.HasError() || s.PositionsCount == nil {
		return "-"
	}
	return strconv.Itoa(*s.PositionsCount)
}

func pctColumn(s api.AccountSummary) string {
	if s.DayProfitLossPct == nil {
		return "-"
	}
	return format.SignedPercent(*s.DayProfitLossPct)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
