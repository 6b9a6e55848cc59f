/*
Package notify provides Notifier implementations for the settlement engine.

PURPOSE:
  The engine's Notifier contract is fire-and-forget: one dispatch per settled
  installment, or one batched dispatch when a backlog settles together.
  Logger writes each dispatch as a structured log line (the deployment's
  delivery channel hangs off the log pipeline); Memory records dispatches for
  tests, which assert on single-vs-batch shape.
*/
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/warp/yield-engine/invest"
)

// =============================================================================
// LOGGER NOTIFIER - Structured-log delivery
// =============================================================================

// Logger emits every notification as a zap log line.
type Logger struct {
	Log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{Log: log}
}

var _ invest.Notifier = (*Logger)(nil)

func (n *Logger) NotifyOne(_ context.Context, investor invest.InvestorID, subject, comment string) error {
	n.Log.Info("notification",
		zap.String("investor", string(investor)),
		zap.String("subject", subject),
		zap.String("comment", comment))
	return nil
}

func (n *Logger) NotifyBatch(_ context.Context, investor invest.InvestorID, notices []invest.Notice) error {
	subjects := make([]string, len(notices))
	comments := make([]string, len(notices))
	for i, nt := range notices {
		subjects[i] = nt.Subject
		comments[i] = nt.Comment
	}
	n.Log.Info("batch notification",
		zap.String("investor", string(investor)),
		zap.Int("count", len(notices)),
		zap.Strings("subjects", subjects),
		zap.Strings("comments", comments))
	return nil
}

// =============================================================================
// MEMORY NOTIFIER - Test recorder
// =============================================================================

// Single is one recorded single-notification dispatch.
type Single struct {
	Investor invest.InvestorID
	Subject  string
	Comment  string
}

// Batch is one recorded batched dispatch.
type Batch struct {
	Investor invest.InvestorID
	Notices  []invest.Notice
}

// Memory records every dispatch. If Err is set, dispatches still record and
// then return Err - used to prove notification failure never aborts a
// settlement.
type Memory struct {
	mu      sync.Mutex
	Singles []Single
	Batches []Batch
	Err     error
}

func NewMemory() *Memory { return &Memory{} }

var _ invest.Notifier = (*Memory)(nil)

func (m *Memory) NotifyOne(_ context.Context, investor invest.InvestorID, subject, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Singles = append(m.Singles, Single{Investor: investor, Subject: subject, Comment: comment})
	return m.Err
}

func (m *Memory) NotifyBatch(_ context.Context, investor invest.InvestorID, notices []invest.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, Batch{
		Investor: investor,
		Notices:  append([]invest.Notice(nil), notices...),
	})
	return m.Err
}

// SingleCount returns how many single dispatches were recorded.
func (m *Memory) SingleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Singles)
}

// BatchCount returns how many batched dispatches were recorded.
func (m *Memory) BatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Batches)
}
