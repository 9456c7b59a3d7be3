package calculator

import (
	"math"
	"testing"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// TestActQty covers the box list round trip.
func TestActQty(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pack    int
		want    int
	}{
		{"round trip", "10,20,30", 5, 300},
		{"single entry", "7", 12, 84},
		{"empty text", "", 20, 0},
		{"zero pack", "10,20", 0, 0},
		{"unparseable entry ignored", "10,,20", 5, 150},
		{"all unparseable", ",", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActQty(tt.text, tt.pack)
			if got != tt.want {
				t.Errorf("ActQty(%q, %d) = %d, want %d", tt.text, tt.pack, got, tt.want)
			}
		})
	}
}

func TestGap(t *testing.T) {
	tests := []struct {
		name                                    string
		stockAwal, produksi, transferSum, actQty int
		want                                    int
	}{
		{"surplus", 100, 50, 30, 40, 80},
		{"shortfall", 10, 0, 5, 20, -15},
		{"neutral", 10, 10, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gap(tt.stockAwal, tt.produksi, tt.transferSum, tt.actQty)
			if got != tt.want {
				t.Errorf("Gap = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStockStrengthPerDay(t *testing.T) {
	if got := StockStrengthPerDay(300, 150); got != 2 {
		t.Errorf("StockStrengthPerDay(300, 150) = %v, want 2", got)
	}

	// Division by zero must yield the undefined sentinel, never 0.
	got := StockStrengthPerDay(300, 0)
	if !IsUndefined(got) {
		t.Errorf("StockStrengthPerDay with zero forecast = %v, want NaN", got)
	}
	if got == 0 {
		t.Error("zero forecast must not collapse to 0")
	}

	if !IsUndefined(SafetyStockStrengthPerDay(50, 0)) {
		t.Error("SafetyStockStrengthPerDay with zero forecast must be NaN")
	}
	if !IsUndefined(StockStrengthPerDay(300, math.NaN())) {
		t.Error("NaN forecast must stay NaN")
	}
}

func TestClassifyGap(t *testing.T) {
	if ClassifyGap(5) != GapSurplus {
		t.Error("positive gap should classify as surplus")
	}
	if ClassifyGap(-5) != GapShortfall {
		t.Error("negative gap should classify as shortfall")
	}
	if ClassifyGap(0) != GapNeutral {
		t.Error("zero gap should classify as neutral")
	}
}

func TestSanitizeBoxList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{",10,,20", "10,20"},
		{"10,20,30", "10,20,30"},
		{"10,20,", "10,20"},
		{",,,", ""},
		{"a1b2,3c", "12,3"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeBoxList(tt.in); got != tt.want {
			t.Errorf("SanitizeBoxList(%q) = %q, want %q", tt.in, tt.want, got)
		}
	}
}

func TestSanitizeQty(t *testing.T) {
	if got := SanitizeQty("12a3 "); got != "123" {
		t.Errorf("SanitizeQty = %q, want %q", got, "123")
	}
	if got := SanitizeQty("-45"); got != "45" {
		t.Errorf("SanitizeQty should drop the sign, got %q", got)
	}
}

func TestSanitizeForecast(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5", "12.5"},
		{"12.5.7", "12.5"},
		{"1.2.3.4", "1.2.3"},
		{"abc", ""},
		{"7", "7"},
	}

	for _, tt := range tests {
		if got := SanitizeForecast(tt.in); got != tt.want {
			t.Errorf("SanitizeForecast(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseForecast(t *testing.T) {
	if v, ok := ParseForecast("12.50"); !ok || v != 12.5 {
		t.Errorf("ParseForecast(12.50) = %v, %v", v, ok)
	}
	if _, ok := ParseForecast(""); ok {
		t.Error("empty forecast must not parse")
	}
	if _, ok := ParseForecast("."); ok {
		t.Error("bare point must not parse")
	}
}

// TestRecomputeIdempotent verifies repeated recomputation with unchanged
// inputs yields identical derived values.
func TestRecomputeIdempotent(t *testing.T) {
	code := model.Code{Kode: "TEST", StdPack: 5}
	raw := model.RawInputs{
		StockAwal: "100",
		Produksi:  "50",
		Surcip:    "10",
		Sunter:    "10",
		Kiic:      "10",
		ActBox:    "10,20,30",
		FC2D:      "150",
	}

	first := Recompute(code, raw)
	second := Recompute(code, raw)

	if first != second {
		t.Errorf("Recompute not idempotent: %+v vs %+v", first, second)
	}
	if first.ActQty != 300 {
		t.Errorf("ActQty = %d, want 300", first.ActQty)
	}
	if first.Gap != 100+50-30-300 {
		t.Errorf("Gap = %d, want %d", first.Gap, 100+50-30-300)
	}
	if first.BoxActQty != first.ActQty {
		t.Error("BoxActQty must track ActQty")
	}
	if first.KekuatanStock != 2 {
		t.Errorf("KekuatanStock = %v, want 2", first.KekuatanStock)
	}
}

// TestRecomputeEmptyForecast verifies the sentinel rides through Recompute.
func TestRecomputeEmptyForecast(t *testing.T) {
	code := model.Code{Kode: "TEST", StdPack: 5}
	d := Recompute(code, model.RawInputs{ActBox: "10"})
	if !IsUndefined(d.KekuatanStock) || !IsUndefined(d.KekuatanAnzen) {
		t.Errorf("empty forecast must yield NaN strengths, got %+v", d)
	}
}
