package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
)

// ErrSessionBusy is returned when a refresh or conversion batch is requested
// while one is already in flight. Two batches against the same wallet
// session would race on refreshing the same snapshot.
var ErrSessionBusy = errors.New("a refresh or conversion batch is already in flight")

// SweepSessionImpl implements port.SweepSession. It owns the current
// snapshot, selection state and last batch report for one wallet, and is the
// only place that mutates them.
type SweepSessionImpl struct {
	walletAddress string
	holdings      port.HoldingsProvider
	conversion    port.ConversionRunner
	logger        port.Logger
	policy        entity.SelectionPolicy
	protectedIDs  []string

	mu         sync.Mutex
	busy       bool
	snapshot   *entity.HoldingsSnapshot
	selection  *entity.SelectionSet
	lastReport *entity.ConversionBatchReport
	lastErrors []entity.PipelineError
}

// NewSweepSession creates a session for one wallet. The session starts with
// an empty snapshot; call Refresh to populate it.
func NewSweepSession(
	walletAddress string,
	hp port.HoldingsProvider,
	cr port.ConversionRunner,
	l port.Logger,
	policy entity.SelectionPolicy,
	protectedIDs ...string,
) *SweepSessionImpl {
	snapshot := &entity.HoldingsSnapshot{
		WalletAddress: walletAddress,
		Holdings:      []entity.Holding{},
		FetchedAt:     time.Now().UTC(),
	}
	return &SweepSessionImpl{
		walletAddress: walletAddress,
		holdings:      hp,
		conversion:    cr,
		logger:        l,
		policy:        policy,
		protectedIDs:  protectedIDs,
		snapshot:      snapshot,
		selection:     entity.NewSelectionSet(snapshot, policy, protectedIDs...),
	}
}

// acquire claims the single in-flight slot. It reports false when a refresh
// or batch already holds it.
func (s *SweepSessionImpl) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *SweepSessionImpl) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Refresh implements port.SweepSession. It replaces the snapshot wholesale
// and rebuilds the selection from the configured policy; stale selection
// keys never survive a refresh.
func (s *SweepSessionImpl) Refresh(ctx context.Context) ([]entity.PipelineError, error) {
	if !s.acquire() {
		return nil, ErrSessionBusy
	}
	defer s.release()

	return s.refreshLocked(ctx), nil
}

// refreshLocked performs the snapshot replacement. The caller must hold the
// in-flight slot.
func (s *SweepSessionImpl) refreshLocked(ctx context.Context) []entity.PipelineError {
	snapshot, pipelineErrs := s.holdings.FetchSnapshot(ctx, s.walletAddress)

	s.mu.Lock()
	s.snapshot = snapshot
	s.selection = entity.NewSelectionSet(snapshot, s.policy, s.protectedIDs...)
	s.lastErrors = pipelineErrs
	s.mu.Unlock()

	return pipelineErrs
}

// ToggleSelection implements port.SweepSession.
func (s *SweepSessionImpl) ToggleSelection(assetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Toggle(assetID)
}

// RunConversion implements port.SweepSession. The selected subset is
// captured once, in deterministic order, then handed to the runner. A batch
// with at least one success triggers exactly one snapshot refresh so
// converted assets disappear from or shrink in the next snapshot.
func (s *SweepSessionImpl) RunConversion(ctx context.Context) (*entity.ConversionBatchReport, error) {
	if !s.acquire() {
		return nil, ErrSessionBusy
	}
	defer s.release()

	s.mu.Lock()
	subset := s.selection.SelectedSubset(s.snapshot)
	s.mu.Unlock()

	report := s.conversion.RunBatch(ctx, s.walletAddress, subset)

	if report.Successes > 0 {
		report.RefreshTriggered = true
		s.refreshLocked(ctx)
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	return report, nil
}

// WalletAddress implements port.SweepSession.
func (s *SweepSessionImpl) WalletAddress() string {
	return s.walletAddress
}

// Snapshot implements port.SweepSession.
func (s *SweepSessionImpl) Snapshot() *entity.HoldingsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Selection implements port.SweepSession.
func (s *SweepSessionImpl) Selection() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.View()
}

// SelectionSummary implements port.SweepSession.
func (s *SweepSessionImpl) SelectionSummary() port.SelectionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return port.SelectionSummary{
		Count:         s.selection.SelectedCount(),
		TotalValueUSD: s.selection.SelectedValueUSD(s.snapshot),
	}
}

// LastReport implements port.SweepSession.
func (s *SweepSessionImpl) LastReport() *entity.ConversionBatchReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// LastErrors implements port.SweepSession.
func (s *SweepSessionImpl) LastErrors() []entity.PipelineError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErrors
}
