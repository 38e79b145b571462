package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat accepts table, csv and json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// ExportOptions filters and formats an export.
type ExportOptions struct {
	Format      Format
	Since       time.Time
	Account     string
	OnlySuccess bool
}

// Summarize computes statistics over records.
func Summarize(records []Record) Statistics {
	var stats Statistics
	for _, r := range records {
		stats.Total++
		if !r.Success {
			continue
		}
		stats.Succeeded++
		if amount, err := decimal.NewFromString(r.Amount); err == nil {
			stats.StakedSUI = stats.StakedSUI.Add(amount)
		}
	}
	stats.Failed = stats.Total - stats.Succeeded
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total) * 100
	}
	return stats
}

// Export writes the records matching opts to w, oldest first.
func Export(w io.Writer, records []Record, opts ExportOptions) error {
	filtered := filter(records, opts)
	sort.SliceStable(filtered, func(i, k int) bool {
		return filtered[i].Time.Before(filtered[k].Time)
	})

	switch opts.Format {
	case FormatCSV:
		return exportCSV(w, filtered)
	case FormatJSON:
		return exportJSON(w, filtered)
	case FormatTable, "":
		return exportTable(w, filtered)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func filter(records []Record, opts ExportOptions) []Record {
	var out []Record
	for _, r := range records {
		if !opts.Since.IsZero() && r.Time.Before(opts.Since) {
			continue
		}
		if opts.Account != "" && r.Account != opts.Account {
			continue
		}
		if opts.OnlySuccess && !r.Success {
			continue
		}
		out = append(out, r)
	}
	return out
}

func exportCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r.ToCSV()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

type exportSummary struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	StakedSUI   string  `json:"staked_sui"`
}

func exportJSON(w io.Writer, records []Record) error {
	stats := Summarize(records)
	if records == nil {
		records = []Record{}
	}
	data := struct {
		ExportTime time.Time     `json:"export_time"`
		Count      int           `json:"count"`
		Stakes     []Record      `json:"stakes"`
		Summary    exportSummary `json:"summary"`
	}{
		ExportTime: time.Now(),
		Count:      len(records),
		Stakes:     records,
		Summary: exportSummary{
			Total:       stats.Total,
			Succeeded:   stats.Succeeded,
			Failed:      stats.Failed,
			SuccessRate: stats.SuccessRate,
			StakedSUI:   stats.StakedSUI.String(),
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func exportTable(w io.Writer, records []Record) error {
	for _, r := range records {
		status := "ok"
		detail := r.TxDigest
		if !r.Success {
			status = "failed"
			detail = r.Error
		}
		if _, err := fmt.Fprintf(w, "%s  %-6s  %12s SUI  %s\n",
			r.Time.Local().Format("2006-01-02 15:04:05"), status, r.Amount, detail); err != nil {
			return err
		}
	}
	stats := Summarize(records)
	_, err := fmt.Fprintf(w, "%d stakes, %d succeeded, %s SUI staked\n",
		stats.Total, stats.Succeeded, stats.StakedSUI.String())
	return err
}
