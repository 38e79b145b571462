// Package history keeps the stake attempts of the running session in memory.
package history

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/events"
)

const DefaultMaxRecords = 100

// Statistics summarises stake attempts.
type Statistics struct {
	Total       int
	Succeeded   int
	Failed      int
	SuccessRate float64         // percent
	StakedSUI   decimal.Decimal // sum of successful amounts
}

// Journal holds the most recent records and running totals for the session.
type Journal struct {
	mu         sync.Mutex
	records    []Record
	maxRecords int
	logger     *zap.Logger

	total     int
	succeeded int
	staked    decimal.Decimal
}

func NewJournal(maxRecords int, logger *zap.Logger) *Journal {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Journal{
		records:    make([]Record, 0, maxRecords),
		maxRecords: maxRecords,
		logger:     logger.Named("history"),
	}
}

// Add stores r, evicting the oldest record when the window is full.
func (j *Journal) Add(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.records) >= j.maxRecords {
		j.records = j.records[1:]
	}
	j.records = append(j.records, r)

	j.total++
	if r.Success {
		j.succeeded++
		if amount, err := decimal.NewFromString(r.Amount); err == nil {
			j.staked = j.staked.Add(amount)
		}
	}

	j.logger.Debug("Stake recorded",
		zap.String("correlation_id", r.CorrelationID),
		zap.String("amount", r.Amount),
		zap.Bool("success", r.Success))
}

// Recent returns up to limit records, oldest first. A non-positive limit
// returns everything retained.
func (j *Journal) Recent(limit int) []Record {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 || limit > len(j.records) {
		limit = len(j.records)
	}
	out := make([]Record, limit)
	copy(out, j.records[len(j.records)-limit:])
	return out
}

// Statistics covers every record added, including evicted ones.
func (j *Journal) Statistics() Statistics {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := Statistics{
		Total:     j.total,
		Succeeded: j.succeeded,
		Failed:    j.total - j.succeeded,
		StakedSUI: j.staked,
	}
	if j.total > 0 {
		stats.SuccessRate = float64(j.succeeded) / float64(j.total) * 100
	}
	return stats
}

// Subscribe records every completed and failed stake published on bus.
func (j *Journal) Subscribe(bus *events.Bus) events.Subscription {
	return events.Forward(bus, func(e events.Event) {
		if r, ok := FromEvent(e); ok {
			j.Add(r)
		}
	}, events.StakeCompleted, events.StakeFailed)
}

// FromEvent converts a stake outcome event into a record.
func FromEvent(e events.Event) (Record, bool) {
	switch ev := e.(type) {
	case events.StakeCompletedEvent:
		return Record{
			Time:           ev.Timestamp(),
			CorrelationID:  ev.CorrelationID,
			Account:        ev.Account,
			Amount:         ev.Amount,
			Success:        true,
			TxDigest:       ev.TxDigest,
			ReceivedAmount: ev.ReceivedAmount,
			ElapsedMs:      ev.ElapsedMs,
		}, true
	case events.StakeFailedEvent:
		return Record{
			Time:          ev.Timestamp(),
			CorrelationID: ev.CorrelationID,
			Account:       ev.Account,
			Amount:        ev.Amount,
			Error:         ev.Error,
		}, true
	}
	return Record{}, false
}
