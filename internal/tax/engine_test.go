package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taxadvisor/internal/domain"
)

func TestComputeOldRegimeZeroIncome(t *testing.T) {
	res := ComputeOldRegime(0, domain.DeductionSet{})
	assert.EqualValues(t, 0, res.TaxableIncome)
	assert.EqualValues(t, 0, res.BaseTax)
	assert.EqualValues(t, 0, res.Cess)
	assert.EqualValues(t, 0, res.TotalTax)
	assert.EqualValues(t, 0, res.EffectiveRatePercent)
}

func TestComputeNewRegimeZeroIncome(t *testing.T) {
	res := ComputeNewRegime(0)
	assert.EqualValues(t, 0, res.TaxableIncome)
	assert.EqualValues(t, 0, res.TotalTax)
	assert.EqualValues(t, 0, res.EffectiveRatePercent)
}

func TestOldRegimeRebateCliff(t *testing.T) {
	// Standard deduction is 50000, so gross 550000 puts taxable income
	// exactly at the 500000 rebate threshold.
	atThreshold := ComputeOldRegime(550000, domain.DeductionSet{})
	assert.EqualValues(t, 500000, atThreshold.TaxableIncome)
	assert.EqualValues(t, 0, atThreshold.TotalTax)

	// One unit above the threshold the rebate vanishes and the full slab
	// tax plus cess is due. The discontinuity is statutory.
	aboveThreshold := ComputeOldRegime(550001, domain.DeductionSet{})
	assert.EqualValues(t, 500001, aboveThreshold.TaxableIncome)
	assert.EqualValues(t, 12500, aboveThreshold.BaseTax)
	assert.EqualValues(t, 500, aboveThreshold.Cess)
	assert.EqualValues(t, 13000, aboveThreshold.TotalTax)
}

func TestNewRegimeRebateCliff(t *testing.T) {
	atThreshold := ComputeNewRegime(775000)
	assert.EqualValues(t, 700000, atThreshold.TaxableIncome)
	assert.EqualValues(t, 0, atThreshold.TotalTax)

	aboveThreshold := ComputeNewRegime(775001)
	assert.EqualValues(t, 700001, aboveThreshold.TaxableIncome)
	assert.EqualValues(t, 20000, aboveThreshold.BaseTax)
	assert.EqualValues(t, 800, aboveThreshold.Cess)
	assert.EqualValues(t, 20800, aboveThreshold.TotalTax)
}

func TestOldRegimeClampsDeductionCaps(t *testing.T) {
	res := ComputeOldRegime(2000000, domain.DeductionSet{Section80C: 200000})
	// 50000 standard + 150000 clamped 80C, not the claimed 200000.
	assert.EqualValues(t, 200000, res.TotalDeductions)

	res = ComputeOldRegime(2000000, domain.DeductionSet{Section80C: 200000, Section80D: 90000})
	assert.EqualValues(t, 225000, res.TotalDeductions)
}

func TestOldRegimeDeductionsExceedIncome(t *testing.T) {
	res := ComputeOldRegime(100000, domain.DeductionSet{Section80C: 150000, HRA: 80000})
	assert.EqualValues(t, 0, res.TaxableIncome)
	assert.EqualValues(t, 0, res.TotalTax)
}

func TestOldRegimeSlabTable(t *testing.T) {
	tests := []struct {
		name    string
		gross   int64
		baseTax int64
	}{
		// taxable = gross - 50000 standard deduction
		{"top of 20% bracket", 1050000, 112500},
		{"into 30% bracket", 1550000, 262500},
		{"just above rebate", 550001, 12500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeOldRegime(tt.gross, domain.DeductionSet{})
			assert.EqualValues(t, tt.baseTax, res.BaseTax)
			assert.EqualValues(t, tt.baseTax+roundedCess(tt.baseTax), res.TotalTax)
		})
	}
}

func TestNewRegimeSlabTable(t *testing.T) {
	tests := []struct {
		name    string
		gross   int64
		baseTax int64
	}{
		// taxable = gross - 75000 standard deduction
		{"top of 10% bracket", 1075000, 50000},
		{"top of 15% bracket", 1275000, 80000},
		{"top of 20% bracket", 1575000, 140000},
		{"into 30% bracket", 2075000, 290000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeNewRegime(tt.gross)
			assert.EqualValues(t, tt.baseTax, res.BaseTax)
		})
	}
}

func TestTotalTaxMonotonicInIncome(t *testing.T) {
	d := domain.DeductionSet{Section80C: 100000, HRA: 20000}
	var prevOld, prevNew int64
	for gross := int64(0); gross <= 3000000; gross += 50000 {
		oldRes := ComputeOldRegime(gross, d)
		newRes := ComputeNewRegime(gross)
		assert.GreaterOrEqual(t, oldRes.TotalTax, prevOld, "old regime at gross %d", gross)
		assert.GreaterOrEqual(t, newRes.TotalTax, prevNew, "new regime at gross %d", gross)
		prevOld = oldRes.TotalTax
		prevNew = newRes.TotalTax
	}
}

func TestCompareRegimesEqualScenario(t *testing.T) {
	cmp := CompareRegimes(700000, domain.DeductionSet{Section80C: 150000, Section80D: 25000})
	assert.EqualValues(t, 475000, cmp.Old.TaxableIncome)
	assert.EqualValues(t, 0, cmp.Old.TotalTax)
	assert.EqualValues(t, 625000, cmp.New.TaxableIncome)
	assert.EqualValues(t, 0, cmp.New.TotalTax)
	assert.Equal(t, domain.RegimeEqual, cmp.BetterRegime)
	assert.EqualValues(t, 0, cmp.Savings)
	assert.NotEmpty(t, cmp.Recommendation)
}

func TestCompareRegimesHighIncomeScenario(t *testing.T) {
	cmp := CompareRegimes(1500000, domain.DeductionSet{Section80C: 150000, Section80D: 25000, HRA: 50000})
	assert.EqualValues(t, 1225000, cmp.Old.TaxableIncome)
	assert.EqualValues(t, 187200, cmp.Old.TotalTax)
	assert.EqualValues(t, 1425000, cmp.New.TaxableIncome)
	assert.EqualValues(t, 130000, cmp.New.TotalTax)
	assert.Equal(t, domain.RegimeNew, cmp.BetterRegime)
	assert.EqualValues(t, 57200, cmp.Savings)
	assert.InDelta(t, 12.48, cmp.Old.EffectiveRatePercent, 0.001)
}

func TestCompareRegimesOldWins(t *testing.T) {
	// Heavy itemized deductions pull the old regime below the new one.
	cmp := CompareRegimes(1400000, domain.DeductionSet{Section80C: 150000, Section80D: 25000, HRA: 300000, Other: 200000})
	assert.Equal(t, domain.RegimeOld, cmp.BetterRegime)
	assert.Negative(t, cmp.Savings)
}

func TestCompareRegimesConsistency(t *testing.T) {
	deductions := []domain.DeductionSet{
		{},
		{Section80C: 150000},
		{Section80C: 150000, Section80D: 25000, HRA: 120000},
		{Other: 400000},
	}
	for gross := int64(0); gross <= 2500000; gross += 137000 {
		for _, d := range deductions {
			cmp := CompareRegimes(gross, d)
			assert.Equal(t, ComputeOldRegime(gross, d).TotalTax-ComputeNewRegime(gross).TotalTax, cmp.Savings)
			switch {
			case cmp.Savings > 0:
				assert.Equal(t, domain.RegimeNew, cmp.BetterRegime)
			case cmp.Savings < 0:
				assert.Equal(t, domain.RegimeOld, cmp.BetterRegime)
			default:
				assert.Equal(t, domain.RegimeEqual, cmp.BetterRegime)
			}
		}
	}
}

func roundedCess(baseTax int64) int64 {
	if baseTax == 0 {
		return 0
	}
	return (baseTax*4 + 50) / 100
}
