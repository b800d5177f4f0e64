package calculator

import (
	"math"
	"math/rand"
	"testing"
)

func TestComputeTip(t *testing.T) {
	tests := []struct {
		name       string
		bill       float64
		tipPercent int
		want       float64
	}{
		{name: "twenty percent of 100", bill: 100, tipPercent: 20, want: 20},
		{name: "ten percent of 50", bill: 50, tipPercent: 10, want: 5},
		{name: "zero percent", bill: 80, tipPercent: 0, want: 0},
		{name: "full slider", bill: 40, tipPercent: 100, want: 40},
		{name: "just over threshold", bill: 1.01, tipPercent: 100, want: 1.01},
		{name: "bill of exactly one never tips", bill: 1, tipPercent: 50, want: 0},
		{name: "zero bill", bill: 0, tipPercent: 20, want: 0},
		{name: "negative bill", bill: -30, tipPercent: 20, want: 0},
		{name: "percent above range is not clamped", bill: 10, tipPercent: 150, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTip(tt.bill, tt.tipPercent)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeTip(%v, %d) = %v, want %v", tt.bill, tt.tipPercent, got, tt.want)
			}
		})
	}
}

func TestComputeTip_BelowThresholdAlwaysZero(t *testing.T) {
	for _, bill := range []float64{-1000, -1, 0, 0.5, 0.99, 1} {
		for _, tip := range []int{-50, 0, 15, 100, 250} {
			if got := ComputeTip(bill, tip); got != 0 {
				t.Errorf("ComputeTip(%v, %d) = %v, want 0", bill, tip, got)
			}
		}
	}
}

func TestComputePerPerson(t *testing.T) {
	tests := []struct {
		name       string
		bill       float64
		split      int
		tipPercent int
		want       float64
	}{
		{name: "four ways with twenty percent", bill: 100, split: 4, tipPercent: 20, want: 30},
		{name: "single diner", bill: 50, split: 1, tipPercent: 10, want: 55},
		{name: "no tip", bill: 90, split: 3, tipPercent: 0, want: 30},
		{name: "bill under threshold is split untipped", bill: 1, split: 2, tipPercent: 50, want: 0.5},
		{name: "empty bill", bill: 0, split: 5, tipPercent: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePerPerson(tt.bill, tt.split, tt.tipPercent)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputePerPerson(%v, %d, %d) = %v, want %v", tt.bill, tt.split, tt.tipPercent, got, tt.want)
			}
		})
	}
}

func TestComputePerPerson_MatchesTipIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		bill := rng.Float64() * 1000
		split := 1 + rng.Intn(20)
		tip := rng.Intn(101)

		got := ComputePerPerson(bill, split, tip)
		want := (bill + ComputeTip(bill, tip)) / float64(split)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("ComputePerPerson(%v, %d, %d) = %v, want %v", bill, split, tip, got, want)
		}

		if again := ComputePerPerson(bill, split, tip); again != got {
			t.Fatalf("ComputePerPerson not deterministic: %v then %v", got, again)
		}
	}
}

func TestTipPercent(t *testing.T) {
	tests := []struct {
		position float64
		want     int
	}{
		{0, 0},
		{1, 100},
		{0.2, 20},
		{0.125, 13},
		{1.0 / 6, 17},
		{0.504, 50},
		{-0.3, 0},
		{1.7, 100},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := TipPercent(tt.position); got != tt.want {
			t.Errorf("TipPercent(%v) = %d, want %d", tt.position, got, tt.want)
		}
	}
}

func TestTipPercent_RoundsPositionTimesHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		p := rng.Float64()
		want := int(math.Round(p * 100))
		if got := TipPercent(p); got != want {
			t.Fatalf("TipPercent(%v) = %d, want %d", p, got, want)
		}
		if got := TipPercent(p); got < 0 || got > 100 {
			t.Fatalf("TipPercent(%v) = %d, out of range", p, got)
		}
	}
}

func TestSnapSlider(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		steps    int
		want     float64
	}{
		{name: "already on grid", position: 0.5, steps: 6, want: 0.5},
		{name: "rounds down", position: 0.2, steps: 6, want: 1.0 / 6},
		{name: "rounds up", position: 0.3, steps: 6, want: 2.0 / 6},
		{name: "upper bound", position: 1, steps: 6, want: 1},
		{name: "clamped above", position: 3, steps: 6, want: 1},
		{name: "clamped below", position: -1, steps: 6, want: 0},
		{name: "continuous", position: 0.234, steps: 0, want: 0.234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapSlider(tt.position, tt.steps)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SnapSlider(%v, %d) = %v, want %v", tt.position, tt.steps, got, tt.want)
			}
		})
	}
}

func TestParseBill(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{" 12.50 ", 12.5},
		{"abc", 0},
		{"12,50", 0},
		{"-5", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e2", 100},
	}

	for _, tt := range tests {
		if got := ParseBill(tt.text); got != tt.want {
			t.Errorf("ParseBill(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClampSplit(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 40: 40} {
		if got := ClampSplit(in); got != want {
			t.Errorf("ClampSplit(%d) = %d, want %d", in, got, want)
		}
	}
}
