// Package storagefee computes tiered warehouse storage fees.
//
// A stay is split into three consecutive tiers: a free window, a standard
// rate window that ends at the tariff's standard days limit, and an extended
// rate window for every day past that limit. Fees are charged per cubic
// meter per day. All functions are pure and safe for concurrent use; values
// are returned unrounded so callers can aggregate before rounding for display.
package storagefee

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const secondsPerDay = int64(24 * time.Hour / time.Second)

// ErrInvalidTariff reports a tariff that violates StandardDaysLimit > FreeDays >= 0
// or carries a negative or non-finite rate.
var ErrInvalidTariff = errors.New("invalid tariff")

// ErrInvertedInterval is returned by a strict Calculator when the outbound
// date precedes the inbound date.
var ErrInvertedInterval = errors.New("outbound date is before inbound date")

// TariffConfig holds the thresholds and rates governing the fee tiers.
// Rates are expressed in currency units per CBM per day.
type TariffConfig struct {
	FreeDays          int     `json:"freeDays" bson:"free_days"`
	StandardRate      float64 `json:"standardRate" bson:"standard_rate"`
	ExtendedRate      float64 `json:"extendedRate" bson:"extended_rate"`
	StandardDaysLimit int     `json:"standardDaysLimit" bson:"standard_days_limit"`
}

// DefaultTariff returns the house tariff: 7 free days, 1.0 per CBM per day
// until day 30, 2.0 per CBM per day afterwards.
func DefaultTariff() TariffConfig {
	return TariffConfig{
		FreeDays:          7,
		StandardRate:      1.0,
		ExtendedRate:      2.0,
		StandardDaysLimit: 30,
	}
}

// Validate checks the tariff invariants.
func (t TariffConfig) Validate() error {
	switch {
	case t.FreeDays < 0:
		return fmt.Errorf("%w: freeDays must be >= 0, got %d", ErrInvalidTariff, t.FreeDays)
	case t.StandardDaysLimit <= t.FreeDays:
		return fmt.Errorf("%w: standardDaysLimit (%d) must be greater than freeDays (%d)", ErrInvalidTariff, t.StandardDaysLimit, t.FreeDays)
	case !validRate(t.StandardRate):
		return fmt.Errorf("%w: standardRate must be a finite value >= 0", ErrInvalidTariff)
	case !validRate(t.ExtendedRate):
		return fmt.Errorf("%w: extendedRate must be a finite value >= 0", ErrInvalidTariff)
	}
	return nil
}

func validRate(r float64) bool {
	return r >= 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// StorageInterval describes one stay of a volume of cargo. A nil OutboundDate
// means the cargo is still in storage and the current time is used as the end.
type StorageInterval struct {
	InboundDate  time.Time
	OutboundDate *time.Time
	VolumeCBM    float64
}

// FeeBreakdown is the per-tier result of a fee computation.
type FeeBreakdown struct {
	FreeDays        int     `json:"freeDays"`
	StandardDays    int     `json:"standardDays"`
	ExtendedDays    int     `json:"extendedDays"`
	FreeDaysFee     float64 `json:"freeDaysFee"`
	StandardDaysFee float64 `json:"standardDaysFee"`
	ExtendedDaysFee float64 `json:"extendedDaysFee"`
	TotalFee        float64 `json:"totalFee"`
	Details         Details `json:"details"`
}

// Details echoes the inputs a breakdown was computed from.
type Details struct {
	TotalDays    int     `json:"totalDays"`
	VolumeCBM    float64 `json:"cbm"`
	StandardRate float64 `json:"standardRate"`
	ExtendedRate float64 `json:"extendedRate"`
}

// DaysBetween returns the number of started days between start and end,
// ceil(|end-start| / 24h). The absolute value is taken, so an inverted pair
// yields the same count as the ordered one.
//
// The span is measured in whole seconds plus a nanosecond remainder rather
// than a time.Duration, which saturates past roughly 292 years.
func DaysBetween(start, end time.Time) int {
	secs := end.Unix() - start.Unix()
	nanos := int64(end.Nanosecond() - start.Nanosecond())
	if nanos < 0 {
		secs--
		nanos += int64(time.Second)
	}
	if secs < 0 {
		secs = -secs
		if nanos > 0 {
			secs--
			nanos = int64(time.Second) - nanos
		}
	}

	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos != 0 {
		days++
	}
	return int(days)
}

// ComputeStorageDays returns the storage days from inbound to outbound, or to
// now when outbound is nil.
func ComputeStorageDays(inbound time.Time, outbound *time.Time) int {
	end := time.Now()
	if outbound != nil {
		end = *outbound
	}
	return DaysBetween(inbound, end)
}

// ComputeStorageFee splits days into tiers and prices each tier for the
// given volume. Negative or non-finite volumes are treated as 0, negative day
// counts as 0.
func ComputeStorageFee(volumeCBM float64, days int, cfg TariffConfig) FeeBreakdown {
	volume := sanitizeVolume(volumeCBM)
	if days < 0 {
		days = 0
	}

	freeDays := min(days, cfg.FreeDays)
	if freeDays < 0 {
		freeDays = 0
	}

	standardDays := 0
	if days > cfg.FreeDays {
		standardDays = max(0, min(days-cfg.FreeDays, cfg.StandardDaysLimit-cfg.FreeDays))
	}

	extendedDays := 0
	if days > cfg.StandardDaysLimit {
		extendedDays = days - cfg.StandardDaysLimit
	}

	const freeDaysFee = 0.0
	standardDaysFee := float64(standardDays) * cfg.StandardRate * volume
	extendedDaysFee := float64(extendedDays) * cfg.ExtendedRate * volume

	return FeeBreakdown{
		FreeDays:        freeDays,
		StandardDays:    standardDays,
		ExtendedDays:    extendedDays,
		FreeDaysFee:     freeDaysFee,
		StandardDaysFee: standardDaysFee,
		ExtendedDaysFee: extendedDaysFee,
		TotalFee:        freeDaysFee + standardDaysFee + extendedDaysFee,
		Details: Details{
			TotalDays:    days,
			VolumeCBM:    volume,
			StandardRate: cfg.StandardRate,
			ExtendedRate: cfg.ExtendedRate,
		},
	}
}

// ComputeFeeForInterval is the single entry point for pricing a stay.
func ComputeFeeForInterval(interval StorageInterval, cfg TariffConfig) FeeBreakdown {
	days := ComputeStorageDays(interval.InboundDate, interval.OutboundDate)
	return ComputeStorageFee(interval.VolumeCBM, days, cfg)
}

func sanitizeVolume(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Calculator binds the fee operations to a clock and to the inverted
// interval policy. The zero value uses time.Now and accepts inverted
// intervals.
type Calculator struct {
	Now                     func() time.Time
	RejectInvertedIntervals bool
}

// NewCalculator returns a Calculator using the wall clock.
func NewCalculator(rejectInverted bool) *Calculator {
	return &Calculator{Now: time.Now, RejectInvertedIntervals: rejectInverted}
}

func (c *Calculator) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// End returns the effective end of an interval.
func (c *Calculator) End(outbound *time.Time) time.Time {
	if outbound != nil {
		return *outbound
	}
	return c.now()
}

// StorageDays mirrors ComputeStorageDays with the calculator's clock.
func (c *Calculator) StorageDays(inbound time.Time, outbound *time.Time) int {
	return DaysBetween(inbound, c.End(outbound))
}

// CheckInterval enforces the inverted interval policy.
func (c *Calculator) CheckInterval(inbound time.Time, outbound *time.Time) error {
	if c != nil && c.RejectInvertedIntervals && c.End(outbound).Before(inbound) {
		return ErrInvertedInterval
	}
	return nil
}

// FeeForInterval prices a stay with the calculator's clock. It only fails
// when RejectInvertedIntervals is set and the interval is inverted.
func (c *Calculator) FeeForInterval(interval StorageInterval, cfg TariffConfig) (FeeBreakdown, error) {
	if err := c.CheckInterval(interval.InboundDate, interval.OutboundDate); err != nil {
		return FeeBreakdown{}, err
	}
	days := c.StorageDays(interval.InboundDate, interval.OutboundDate)
	return ComputeStorageFee(interval.VolumeCBM, days, cfg), nil
}
