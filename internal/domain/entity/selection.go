package entity

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SelectionPolicy decides the initial selection state for a fresh snapshot.
type SelectionPolicy string

const (
	// PolicySelectNone selects nothing; every conversion requires explicit
	// user intent. This is the shipped default.
	PolicySelectNone SelectionPolicy = "none"
	// PolicyAllExceptProtected selects every holding except the protected
	// assets (the conversion target and the wrapped native asset).
	PolicyAllExceptProtected SelectionPolicy = "all_except_protected"
)

// SelectionSet tracks which held assets the user intends to convert. It is
// scoped to exactly one snapshot: keys are the snapshot's asset identifiers,
// and a new snapshot gets a freshly built set rather than a merge, since
// keys from a prior snapshot are meaningless.
type SelectionSet struct {
	selected map[string]bool
}

// NewSelectionSet builds the selection state for a snapshot according to the
// given policy. Protected identifiers are never auto-selected by any policy,
// though Toggle may still select them explicitly.
func NewSelectionSet(snapshot *HoldingsSnapshot, policy SelectionPolicy, protectedIDs ...string) *SelectionSet {
	protected := make(map[string]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}

	selected := make(map[string]bool, len(snapshot.Holdings))
	for _, h := range snapshot.Holdings {
		_, isProtected := protected[h.AssetID]
		selected[h.AssetID] = policy == PolicyAllExceptProtected && !isProtected
	}
	return &SelectionSet{selected: selected}
}

// Toggle flips the selection for assetID if it belongs to the current
// snapshot and reports whether the toggle applied. Unknown identifiers are a
// no-op.
func (s *SelectionSet) Toggle(assetID string) bool {
	current, ok := s.selected[assetID]
	if !ok {
		return false
	}
	s.selected[assetID] = !current
	return true
}

// IsSelected reports the selection intent for assetID.
func (s *SelectionSet) IsSelected(assetID string) bool {
	return s.selected[assetID]
}

// SelectedSubset returns the holdings whose selection is true, ordered
// ascending by USD value with ties broken by asset identifier. The order is
// a pure function of the snapshot and selection, so a batch built from it is
// reproducible.
func (s *SelectionSet) SelectedSubset(snapshot *HoldingsSnapshot) []Holding {
	subset := lo.Filter(snapshot.Holdings, func(h Holding, _ int) bool {
		return s.selected[h.AssetID]
	})
	sort.Slice(subset, func(i, j int) bool {
		vi, vj := subset[i].valueOrZero(), subset[j].valueOrZero()
		if vi.Equal(vj) {
			return subset[i].AssetID < subset[j].AssetID
		}
		return vi.LessThan(vj)
	})
	return subset
}

// SelectedCount returns the number of selected assets.
func (s *SelectionSet) SelectedCount() int {
	return lo.CountValues(lo.Values(s.selected))[true]
}

// SelectedValueUSD sums the known USD value of the selected holdings.
func (s *SelectionSet) SelectedValueUSD(snapshot *HoldingsSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, h := range snapshot.Holdings {
		if s.selected[h.AssetID] {
			total = total.Add(h.valueOrZero())
		}
	}
	return total
}

// View returns a copy of the selection map for read-only consumers.
func (s *SelectionSet) View() map[string]bool {
	view := make(map[string]bool, len(s.selected))
	for id, sel := range s.selected {
		view[id] = sel
	}
	return view
}
