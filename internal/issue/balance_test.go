package issue

import "testing"

func TestBalance(t *testing.T) {
	tests := []struct {
		name                            string
		issued, in, out, returned, want float64
	}{
		{"nothing moved", 0, 0, 0, 0, 0},
		{"issues only", 120, 0, 0, 0, 120},
		{"transfers in add", 100, 30, 0, 0, 130},
		{"transfers out subtract", 100, 0, 40, 0, 60},
		{"returns subtract", 100, 0, 0, 25, 75},
		{"all four movements", 100, 30, 40, 25, 65},
		{"fully drained", 50, 0, 30, 20, 0},
		{"fractional quantities", 10.5, 0.5, 2.25, 1.25, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Balance(tt.issued, tt.in, tt.out, tt.returned); got != tt.want {
				t.Errorf("Balance(%v, %v, %v, %v) = %v, want %v",
					tt.issued, tt.in, tt.out, tt.returned, got, tt.want)
			}
		})
	}
}

// A transfer or return may not exceed the balance; the balance never counts
// cancelled issues, which is the callers' query contract, so draining to
// exactly zero is the permitted floor.
func TestBalance_DrainFloor(t *testing.T) {
	b := Balance(80, 20, 60, 40)
	if b != 0 {
		t.Fatalf("Balance = %v, want 0", b)
	}
	if qty := 1.0; qty <= b {
		t.Error("a further movement must be rejected against a zero balance")
	}
}
