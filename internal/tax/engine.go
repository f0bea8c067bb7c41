// Package tax implements the deterministic tax engine: slab computation,
// rebate and cess rules for the old and new regimes, and the comparison
// between them. Everything here is pure; no I/O, no external state.
package tax

import (
	"fmt"
	"math"

	"taxadvisor/internal/domain"
)

// Statutory constants for the modeled assessment year.
const (
	oldStandardDeduction = 50000
	newStandardDeduction = 75000

	section80CCap = 150000
	section80DCap = 25000

	oldRebateThreshold = 500000
	newRebateThreshold = 700000

	cessRate = 0.04
)

// slab is one progressive bracket. A ceiling of 0 means unbounded.
type slab struct {
	ceiling int64
	rate    float64
}

var oldSlabs = []slab{
	{250000, 0},
	{500000, 0.05},
	{1000000, 0.20},
	{0, 0.30},
}

var newSlabs = []slab{
	{300000, 0},
	{700000, 0.05},
	{1000000, 0.10},
	{1200000, 0.15},
	{1500000, 0.20},
	{0, 0.30},
}

// ComputeOldRegime computes liability under the deduction-heavy old regime.
// Section 80C and 80D claims above their caps are clamped, never rejected.
// Deterministic for any non-negative gross income; negative input is the
// caller's responsibility to reject upstream.
func ComputeOldRegime(grossIncome int64, d domain.DeductionSet) domain.RegimeResult {
	c80c := clamp(d.Section80C, section80CCap)
	c80d := clamp(d.Section80D, section80DCap)
	totalDeductions := oldStandardDeduction + c80c + c80d + d.HRA + d.Other
	taxable := grossIncome - totalDeductions
	if taxable < 0 {
		taxable = 0
	}
	baseTax := slabTax(taxable, oldSlabs)
	if taxable <= oldRebateThreshold {
		// Full statutory rebate: not a deduction, a post-slab zeroing.
		baseTax = 0
	}
	return assemble(domain.RegimeOld, grossIncome, totalDeductions, taxable, baseTax)
}

// ComputeNewRegime computes liability under the new regime, which accepts
// no itemized deductions beyond its own standard deduction.
func ComputeNewRegime(grossIncome int64) domain.RegimeResult {
	totalDeductions := int64(newStandardDeduction)
	taxable := grossIncome - totalDeductions
	if taxable < 0 {
		taxable = 0
	}
	baseTax := slabTax(taxable, newSlabs)
	if taxable <= newRebateThreshold {
		baseTax = 0
	}
	return assemble(domain.RegimeNew, grossIncome, totalDeductions, taxable, baseTax)
}

// CompareRegimes runs both calculators and picks the cheaper regime.
// Savings is signed: old minus new, so a positive value favors the new
// regime.
func CompareRegimes(grossIncome int64, d domain.DeductionSet) domain.Comparison {
	oldRes := ComputeOldRegime(grossIncome, d)
	newRes := ComputeNewRegime(grossIncome)
	savings := oldRes.TotalTax - newRes.TotalTax

	var better domain.Regime
	var rec string
	switch {
	case savings > 0:
		better = domain.RegimeNew
		rec = fmt.Sprintf("The new regime saves you ₹%d per year compared to the old regime.", savings)
	case savings < 0:
		better = domain.RegimeOld
		rec = fmt.Sprintf("The old regime saves you ₹%d per year compared to the new regime.", -savings)
	default:
		better = domain.RegimeEqual
		rec = "Both regimes result in the same tax liability; either choice is fine."
	}

	return domain.Comparison{
		Old:            oldRes,
		New:            newRes,
		BetterRegime:   better,
		Savings:        savings,
		Recommendation: rec,
	}
}

// slabTax sums rate × income-within-bracket across the progressive slab
// table, rounding the total to the nearest whole unit.
func slabTax(taxable int64, slabs []slab) int64 {
	total := 0.0
	var prev int64
	for _, s := range slabs {
		if taxable <= prev {
			break
		}
		upper := taxable
		if s.ceiling > 0 && upper > s.ceiling {
			upper = s.ceiling
		}
		total += s.rate * float64(upper-prev)
		if s.ceiling == 0 {
			break
		}
		prev = s.ceiling
	}
	return int64(math.Round(total))
}

func assemble(regime domain.Regime, gross, deductions, taxable, baseTax int64) domain.RegimeResult {
	var cess int64
	if baseTax > 0 {
		cess = int64(math.Round(float64(baseTax) * cessRate))
	}
	totalTax := baseTax + cess
	var effRate float64
	if gross > 0 {
		effRate = math.Round(float64(totalTax)/float64(gross)*100*100) / 100
	}
	return domain.RegimeResult{
		Regime:               regime,
		GrossIncome:          gross,
		TotalDeductions:      deductions,
		TaxableIncome:        taxable,
		BaseTax:              baseTax,
		Cess:                 cess,
		TotalTax:             totalTax,
		EffectiveRatePercent: effRate,
	}
}

func clamp(v, limit int64) int64 {
	if v > limit {
		return limit
	}
	if v < 0 {
		return 0
	}
	return v
}
