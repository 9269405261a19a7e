package storagefee

import (
	"fmt"
	"math"
)

// Round2 rounds an amount to cents for display or storage next to a record.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatCurrency renders an amount the way invoices and reports show it.
func FormatCurrency(amount float64) string {
	return fmt.Sprintf("%.2f USD", amount)
}

// CalculateCBM converts centimeter dimensions into cubic meters.
func CalculateCBM(lengthCM, widthCM, heightCM float64) float64 {
	return (lengthCM * widthCM * heightCM) / 1_000_000
}

// TierLine is one human-readable row of a fee breakdown.
type TierLine struct {
	Label string  `json:"label"`
	Days  int     `json:"days"`
	Rate  float64 `json:"rate"`
	Fee   float64 `json:"fee"`
	Text  string  `json:"text"`
}

// DescribeTiers re-derives the tier boundaries of cfg and renders one line per
// tier, e.g. "8-30 days: 23 days x 1.00 x 0.04 CBM = 0.92 USD".
func DescribeTiers(b FeeBreakdown, cfg TariffConfig) []TierLine {
	volume := b.Details.VolumeCBM

	free := TierLine{
		Label: fmt.Sprintf("1-%d days", cfg.FreeDays),
		Days:  b.FreeDays,
		Fee:   b.FreeDaysFee,
	}
	free.Text = fmt.Sprintf("%s: %d days free", free.Label, free.Days)
	if cfg.FreeDays <= 0 {
		free.Label = "no free days"
		free.Text = free.Label
	}

	standard := TierLine{
		Label: fmt.Sprintf("%d-%d days", cfg.FreeDays+1, cfg.StandardDaysLimit),
		Days:  b.StandardDays,
		Rate:  cfg.StandardRate,
		Fee:   b.StandardDaysFee,
	}
	standard.Text = tierText(standard, volume)

	extended := TierLine{
		Label: fmt.Sprintf("%d+ days", cfg.StandardDaysLimit+1),
		Days:  b.ExtendedDays,
		Rate:  cfg.ExtendedRate,
		Fee:   b.ExtendedDaysFee,
	}
	extended.Text = tierText(extended, volume)

	return []TierLine{free, standard, extended}
}

func tierText(line TierLine, volume float64) string {
	return fmt.Sprintf("%s: %d days x %.2f x %g CBM = %s",
		line.Label, line.Days, line.Rate, volume, FormatCurrency(line.Fee))
}
