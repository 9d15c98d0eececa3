package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func holdingWithValue(assetID, value string) Holding {
	v := dec(value)
	price := dec("1")
	return Holding{
		AssetID:       assetID,
		RawAmount:     "1000",
		DisplayAmount: v,
		PriceUSD:      &price,
		ValueUSD:      &v,
	}
}

func testSnapshot(holdings ...Holding) *HoldingsSnapshot {
	return &HoldingsSnapshot{WalletAddress: "wallet-1", Holdings: holdings}
}

func TestNewSelectionSetDefaultsToNothingSelected(t *testing.T) {
	snap := testSnapshot(
		holdingWithValue("asset-a", "10"),
		holdingWithValue("asset-b", "20"),
	)
	sel := NewSelectionSet(snap, PolicySelectNone)

	if got := sel.SelectedSubset(snap); len(got) != 0 {
		t.Errorf("SelectedSubset = %d holdings, want 0", len(got))
	}
	if sel.SelectedCount() != 0 {
		t.Errorf("SelectedCount = %d, want 0", sel.SelectedCount())
	}
}

func TestNewSelectionSetAllExceptProtected(t *testing.T) {
	snap := testSnapshot(
		holdingWithValue("asset-a", "10"),
		holdingWithValue("target", "5"),
		holdingWithValue("wrapped-native", "7"),
	)
	sel := NewSelectionSet(snap, PolicyAllExceptProtected, "target", "wrapped-native")

	if !sel.IsSelected("asset-a") {
		t.Error("asset-a should be selected by the all-except-protected policy")
	}
	if sel.IsSelected("target") {
		t.Error("the target asset must never be auto-selected")
	}
	if sel.IsSelected("wrapped-native") {
		t.Error("the wrapped native asset must never be auto-selected")
	}
}

func TestToggleIsAnInvolution(t *testing.T) {
	snap := testSnapshot(holdingWithValue("asset-a", "10"))
	sel := NewSelectionSet(snap, PolicySelectNone)

	original := sel.IsSelected("asset-a")
	if !sel.Toggle("asset-a") {
		t.Fatal("Toggle on a snapshot member should apply")
	}
	if !sel.Toggle("asset-a") {
		t.Fatal("second Toggle on a snapshot member should apply")
	}
	if sel.IsSelected("asset-a") != original {
		t.Error("two toggles should restore the original selection")
	}
}

func TestToggleUnknownAssetIsNoOp(t *testing.T) {
	snap := testSnapshot(holdingWithValue("asset-a", "10"))
	sel := NewSelectionSet(snap, PolicySelectNone)

	if sel.Toggle("asset-unknown") {
		t.Error("Toggle on an identifier outside the snapshot should not apply")
	}
	if sel.IsSelected("asset-unknown") {
		t.Error("unknown identifier must not become selected")
	}
}

func TestProtectedAssetCanStillBeToggledExplicitly(t *testing.T) {
	snap := testSnapshot(holdingWithValue("target", "5"))
	sel := NewSelectionSet(snap, PolicyAllExceptProtected, "target")

	if !sel.Toggle("target") {
		t.Fatal("an explicit toggle of a protected asset should apply")
	}
	if !sel.IsSelected("target") {
		t.Error("target should be selected after an explicit toggle")
	}
}

func TestSelectedSubsetOrderedByValueThenAssetID(t *testing.T) {
	snap := testSnapshot(
		holdingWithValue("asset-c", "10"),
		holdingWithValue("asset-a", "2"),
		holdingWithValue("asset-d", "2"),
		holdingWithValue("asset-b", "50"),
	)
	sel := NewSelectionSet(snap, PolicySelectNone)
	for _, id := range []string{"asset-a", "asset-b", "asset-c", "asset-d"} {
		sel.Toggle(id)
	}

	want := []string{"asset-a", "asset-d", "asset-c", "asset-b"}
	got := sel.SelectedSubset(snap)
	if len(got) != len(want) {
		t.Fatalf("SelectedSubset = %d holdings, want %d", len(got), len(want))
	}
	for i, h := range got {
		if h.AssetID != want[i] {
			t.Errorf("position %d = %s, want %s", i, h.AssetID, want[i])
		}
	}
}

func TestSelectedSubsetIsDeterministic(t *testing.T) {
	snap := testSnapshot(
		holdingWithValue("asset-b", "3"),
		holdingWithValue("asset-a", "3"),
		holdingWithValue("asset-c", "1"),
	)
	sel := NewSelectionSet(snap, PolicySelectNone)
	for _, h := range snap.Holdings {
		sel.Toggle(h.AssetID)
	}

	first := sel.SelectedSubset(snap)
	second := sel.SelectedSubset(snap)
	for i := range first {
		if first[i].AssetID != second[i].AssetID {
			t.Fatalf("ordering not stable at position %d: %s vs %s",
				i, first[i].AssetID, second[i].AssetID)
		}
	}
}

func TestSelectedValueUSDSumsSelectedHoldings(t *testing.T) {
	snap := testSnapshot(
		holdingWithValue("asset-a", "1.50"),
		holdingWithValue("asset-b", "2.25"),
		holdingWithValue("asset-c", "100"),
	)
	sel := NewSelectionSet(snap, PolicySelectNone)
	sel.Toggle("asset-a")
	sel.Toggle("asset-b")

	if got := sel.SelectedValueUSD(snap); !got.Equal(dec("3.75")) {
		t.Errorf("SelectedValueUSD = %s, want 3.75", got)
	}
	if got := sel.SelectedCount(); got != 2 {
		t.Errorf("SelectedCount = %d, want 2", got)
	}
}
