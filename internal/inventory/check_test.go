package inventory

import "testing"

func TestClassifyLine_Partition(t *testing.T) {
	tests := []struct {
		name      string
		exists    bool
		created   bool
		available float64
		required  float64
		want      LineStatus
	}{
		{"exact stock", true, false, 10, 10, LineAvailable},
		{"surplus stock", true, false, 25, 10, LineAvailable},
		{"short stock", true, false, 5, 10, LineInsufficientStock},
		{"zero stock but record exists", true, false, 0, 10, LineInsufficientStock},
		{"no record, no auto-create", false, false, 0, 10, LineNotInInventory},
		{"no record, auto-created", false, true, 0, 10, LineCreatedNoStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.exists, tt.created, tt.available, tt.required)
			if got != tt.want {
				t.Errorf("ClassifyLine(%v, %v, %v, %v) = %s, want %s",
					tt.exists, tt.created, tt.available, tt.required, got, tt.want)
			}
		})
	}
}

func TestSuggestedQuantity(t *testing.T) {
	tests := []struct {
		name      string
		status    LineStatus
		required  float64
		available float64
		want      float64
	}{
		{"stock covers request", LineAvailable, 10, 30, 10},
		{"never exceed available", LineInsufficientStock, 20, 15, 15},
		{"never exceed requested", LineAvailable, 20, 100, 20},
		{"missing line suggests nothing", LineNotInInventory, 10, 0, 0},
		{"auto-created line suggests nothing", LineCreatedNoStock, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestedQuantity(tt.status, tt.required, tt.available)
			if got != tt.want {
				t.Errorf("SuggestedQuantity(%s, %v, %v) = %v, want %v",
					tt.status, tt.required, tt.available, got, tt.want)
			}
		})
	}
}

// A requirement spread over several warehouses classifies against the total
// but the suggestion must stay within the single record it points at, so the
// pre-filled issue row cannot exceed that material's stock. The remainder is
// covered by splitting along the breakdown.
func TestSuggestedQuantity_SplitStock(t *testing.T) {
	refs := []StockRef{
		{MaterialID: 1, WarehouseID: 10, StockQty: 5},
		{MaterialID: 2, WarehouseID: 11, StockQty: 5},
	}
	required := 8.0

	status := ClassifyLine(true, false, TotalStock(refs), required)
	if status != LineAvailable {
		t.Fatalf("ClassifyLine over total = %s, want AVAILABLE", status)
	}

	best := BestSource(refs)
	if best < 0 {
		t.Fatal("BestSource = -1, want a record")
	}
	got := SuggestedQuantity(status, required, refs[best].StockQty)
	if got != 5 {
		t.Errorf("SuggestedQuantity = %v, want 5 (capped at one record's stock)", got)
	}
	if rest := required - got; rest > TotalStock(refs)-refs[best].StockQty {
		t.Errorf("remainder %v not coverable by the other records", rest)
	}
}

func TestBestSource(t *testing.T) {
	if got := BestSource(nil); got != -1 {
		t.Errorf("BestSource(nil) = %d, want -1", got)
	}
	refs := []StockRef{{MaterialID: 1, StockQty: 3}, {MaterialID: 2, StockQty: 9}, {MaterialID: 3, StockQty: 4}}
	if got := BestSource(refs); got != 1 {
		t.Errorf("BestSource = %d, want 1", got)
	}
}

func line(status LineStatus) CheckLine {
	return CheckLine{Status: status}
}

func TestRollup(t *testing.T) {
	tests := []struct {
		name  string
		lines []CheckLine
		want  InventoryStatus
	}{
		{"no lines", nil, StatusReadyForIssue},
		{"all available", []CheckLine{line(LineAvailable), line(LineAvailable)}, StatusReadyForIssue},
		{"any missing forces purchase", []CheckLine{line(LineAvailable), line(LineNotInInventory)}, StatusNeedsPurchase},
		{"auto-created counts as missing", []CheckLine{line(LineAvailable), line(LineCreatedNoStock)}, StatusNeedsPurchase},
		{"shortage only", []CheckLine{line(LineAvailable), line(LineInsufficientStock)}, StatusInsufficientStock},
		// Missing dominates shortage when both occur.
		{"missing and short together", []CheckLine{line(LineInsufficientStock), line(LineNotInInventory)}, StatusNeedsPurchase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rollup(tt.lines)
			if got != tt.want {
				t.Errorf("Rollup = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	lines := []CheckLine{
		line(LineAvailable), line(LineAvailable),
		line(LineInsufficientStock),
		line(LineNotInInventory),
		line(LineCreatedNoStock),
	}
	s := Summarize(lines)
	if s.Total != 5 || s.Available != 2 || s.Insufficient != 1 || s.NotInInventory != 1 || s.Created != 1 {
		t.Errorf("Summarize = %+v, want total=5 available=2 insufficient=1 not_in_inventory=1 created=1", s)
	}
}

// Two-item scenario: item A has sufficient stock, item B is not in inventory.
// The rollup must demand purchasing, the summary must count one of each, and
// only item A may be offered for issue.
func TestCheckProjection_MixedMrr(t *testing.T) {
	materialID := uint(7)
	lines := []CheckLine{
		{
			MrrItemID:        1,
			MaterialID:       &materialID,
			RequiredQuantity: 10,
			AvailableStock:   40,
			Status:           ClassifyLine(true, false, 40, 10),
		},
		{
			MrrItemID:        2,
			RequiredQuantity: 5,
			Status:           ClassifyLine(false, false, 0, 5),
		},
	}
	for i := range lines {
		lines[i].SuggestedQuantity = SuggestedQuantity(lines[i].Status, lines[i].RequiredQuantity, lines[i].AvailableStock)
	}

	if got := Rollup(lines); got != StatusNeedsPurchase {
		t.Errorf("Rollup = %s, want NEEDS_PURCHASE", got)
	}

	s := Summarize(lines)
	if s.Available != 1 || s.NotInInventory != 1 {
		t.Errorf("Summarize = %+v, want available=1 not_in_inventory=1", s)
	}

	if lines[0].SuggestedQuantity != 10 {
		t.Errorf("item A suggested = %v, want 10", lines[0].SuggestedQuantity)
	}
	if lines[1].SuggestedQuantity != 0 {
		t.Errorf("item B suggested = %v, want 0 (not offered for issue)", lines[1].SuggestedQuantity)
	}
}
