package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp accepts the timestamp encodings the backend has been observed to
// emit: RFC3339, "2006-01-02 15:04", and epoch seconds or milliseconds.
type Timestamp struct {
	time.Time
}

const legacyTimeLayout = "2006-01-02 15:04"

// UnmarshalJSON decodes a flexible timestamp value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			t.Time = parsed
			return nil
		}
		parsed, err := time.ParseInLocation(legacyTimeLayout, raw, time.UTC)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		t.Time = parsed
		return nil
	}

	epoch, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %s: %w", data, err)
	}
	// Values this large can only be milliseconds.
	if epoch > 1e12 {
		t.Time = time.UnixMilli(int64(epoch)).UTC()
		return nil
	}
	t.Time = time.Unix(int64(epoch), 0).UTC()
	return nil
}

// MarshalJSON encodes the timestamp as RFC3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// AccountSummary is one row of /api/account-summary. Error is mutually
// exclusive with the numeric fields; synthetic rows carry IsTotal/IsMarket.
type AccountSummary struct {
	Name             string   `json:"name"`
	Equity           *float64 `json:"equity,omitempty"`
	Cash             *float64 `json:"cash,omitempty"`
	BuyingPower      *float64 `json:"buying_power,omitempty"`
	PortfolioValue   *float64 `json:"portfolio_value,omitempty"`
	PositionsCount   *int     `json:"positions_count,omitempty"`
	DayProfitLoss    *float64 `json:"day_profit_loss,omitempty"`
	DayProfitLossPct *float64 `json:"day_profit_loss_pct,omitempty"`
	IsTotal          bool     `json:"is_total,omitempty"`
	IsMarket         bool     `json:"is_market,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// HasError reports whether the backend returned an account-level failure.
func (s AccountSummary) HasError() bool { return s.Error != "" }

// AccountHistory carries parallel equity/pnl/pnl_pct/timestamps sequences of
// identical length, or an Error in place of data.
type AccountHistory struct {
	Name        string      `json:"name"`
	Timestamps  []Timestamp `json:"timestamps"`
	Equity      []float64   `json:"equity"`
	PnL         []float64   `json:"pnl"`
	PnLPct      []float64   `json:"pnl_pct"`
	Volatility  float64     `json:"volatility"`
	SharpeRatio float64     `json:"sharpe_ratio"`
	MaxDrawdown float64     `json:"max_drawdown"`
	Error       string      `json:"error,omitempty"`
}

// HasError reports whether the backend returned an account-level failure.
func (h AccountHistory) HasError() bool { return h.Error != "" }

// Times converts the history timestamps to a plain time slice.
func (h AccountHistory) Times() []time.Time {
	out := make([]time.Time, len(h.Timestamps))
	for i, ts := range h.Timestamps {
		out[i] = ts.Time
	}
	return out
}

// BenchmarkSeries is the optional benchmark block of a history response.
type BenchmarkSeries struct {
	Symbol     string      `json:"symbol"`
	Timestamps []Timestamp `json:"timestamps"`
	Close      []float64   `json:"close"`
}

// Times converts the benchmark timestamps to a plain time slice.
func (b BenchmarkSeries) Times() []time.Time {
	out := make([]time.Time, len(b.Timestamps))
	for i, ts := range b.Timestamps {
		out[i] = ts.Time
	}
	return out
}

// HistoryResponse is the decoded /api/portfolio-history payload. The backend
// returns either a bare account array or {accounts: [...], benchmark: {...}};
// both shapes decode into this struct.
type HistoryResponse struct {
	Accounts  []AccountHistory
	Benchmark *BenchmarkSeries
}

// UnmarshalJSON accepts both history payload shapes.
func (r *HistoryResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Accounts  []AccountHistory `json:"accounts"`
		Benchmark *BenchmarkSeries `json:"benchmark"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Accounts != nil {
		r.Accounts = wrapped.Accounts
		r.Benchmark = wrapped.Benchmark
		return nil
	}

	var bare []AccountHistory
	if err := json.Unmarshal(data, &bare); err != nil {
		return fmt.Errorf("decode portfolio history: %w", err)
	}
	r.Accounts = bare
	r.Benchmark = nil
	return nil
}

// RiskMetrics is the /api/risk-metrics payload.
type RiskMetrics struct {
	Allocation map[string]float64 `json:"allocation"`
}
