// Package calculator holds the pure derived-value functions for the STO
// report tables. Every function is deterministic and depends only on the
// inputs for a single KODE INJECT row, so recomputation order across rows
// does not matter.
package calculator

import (
	"math"
	"strconv"
	"strings"
)

// ActQty computes the actual quantity from a sanitized comma-separated box
// count list and the per-code standard pack size: sum(box counts) * pack.
// Empty or unparseable entries contribute 0. The result is never negative.
func ActQty(actBoxText string, stdPack int) int {
	if actBoxText == "" || stdPack <= 0 {
		return 0
	}
	total := 0
	for _, part := range strings.Split(actBoxText, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			continue
		}
		total += n
	}
	return total * stdPack
}

// Gap computes the signed stock-balance discrepancy:
// stockAwal + produksi - transferSum - actQty. Negative means shortfall.
// Classification by sign is a presentation concern; the raw value is stored.
func Gap(stockAwal, produksi, transferSum, actQty int) int {
	return stockAwal + produksi - transferSum - actQty
}

// StockStrengthPerDay computes the Kekuatan Stock coverage metric:
// actQty / forecast2Day in days. A zero, negative or absent forecast yields
// NaN, the explicit "undefined" sentinel. It never panics and never
// collapses to 0, so a missing forecast stays distinguishable from an empty
// warehouse.
func StockStrengthPerDay(actQty int, forecast2Day float64) float64 {
	if forecast2Day <= 0 || math.IsNaN(forecast2Day) {
		return math.NaN()
	}
	return float64(actQty) / forecast2Day
}

// SafetyStockStrengthPerDay is the same coverage rule applied to the anzen
// (safety) stock quantity.
func SafetyStockStrengthPerDay(safetyStock int, forecast2Day float64) float64 {
	if forecast2Day <= 0 || math.IsNaN(forecast2Day) {
		return math.NaN()
	}
	return float64(safetyStock) / forecast2Day
}

// IsUndefined reports whether a strength value is the undefined sentinel.
// The presentation layer renders it as a dash.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// GapClass is the display classification of a gap value.
type GapClass int

const (
	GapNeutral   GapClass = iota // gap == 0
	GapSurplus                   // gap > 0
	GapShortfall                 // gap < 0
)

// ClassifyGap maps a signed gap to its display class.
func ClassifyGap(gap int) GapClass {
	switch {
	case gap > 0:
		return GapSurplus
	case gap < 0:
		return GapShortfall
	}
	return GapNeutral
}
