package history

import (
	"strconv"
	"time"
)

// Record is one finished stake attempt.
type Record struct {
	Time           time.Time `json:"time"`
	CorrelationID  string    `json:"correlation_id"`
	Account        string    `json:"account"`
	Amount         string    `json:"amount"`
	Success        bool      `json:"success"`
	TxDigest       string    `json:"tx_digest,omitempty"`
	ReceivedAmount string    `json:"received_amount,omitempty"`
	ElapsedMs      int64     `json:"elapsed_ms,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// CSVHeaders matches the column order of Record.ToCSV.
func CSVHeaders() []string {
	return []string{
		"time", "correlation_id", "account", "amount", "success",
		"tx_digest", "received_amount", "elapsed_ms", "error",
	}
}

func (r Record) ToCSV() []string {
	return []string{
		r.Time.UTC().Format(time.RFC3339Nano),
		r.CorrelationID,
		r.Account,
		r.Amount,
		strconv.FormatBool(r.Success),
		r.TxDigest,
		r.ReceivedAmount,
		strconv.FormatInt(r.ElapsedMs, 10),
		r.Error,
	}
}
