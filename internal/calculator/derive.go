package calculator

import (
	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// Recompute rebuilds every derived column for one code from its current raw
// inputs. Idempotent: identical inputs always produce identical outputs.
func Recompute(code model.Code, raw model.RawInputs) model.Derived {
	actQty := ActQty(raw.ActBox, code.StdPack)

	transferSum := ParseQty(raw.Surcip) + ParseQty(raw.Sunter) + ParseQty(raw.Kiic)
	gap := Gap(ParseQty(raw.StockAwal), ParseQty(raw.Produksi), transferSum, actQty)

	fc2d, ok := ParseForecast(raw.FC2D)
	if !ok {
		fc2d = 0 // zero forecast feeds the NaN sentinel path
	}

	return model.Derived{
		ActQty:        actQty,
		Gap:           gap,
		BoxActQty:     actQty,
		KekuatanStock: StockStrengthPerDay(actQty, fc2d),
		KekuatanAnzen: SafetyStockStrengthPerDay(ParseQty(raw.AnzenStock), fc2d),
	}
}

// SanitizeField routes raw text through the field-specific grammar.
func SanitizeField(f model.Field, raw string) string {
	switch f {
	case model.FieldActBox:
		return SanitizeBoxList(raw)
	case model.FieldFC2D:
		return SanitizeForecast(raw)
	default:
		return SanitizeQty(raw)
	}
}
