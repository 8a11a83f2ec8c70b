package valuation

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/projection"
)

// Result holds the outputs of a forward DCF run.
type Result struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	TerminalValue   float64 `json:"terminal_value"`
	PVTerminalValue float64 `json:"pv_terminal_value"`
	SumPVFCF        float64 `json:"sum_pv_fcf"`
	TerminalFCF     float64 `json:"terminal_fcf"` // FCF of the first year after the horizon

	Projection      projection.Result `json:"projection"`
	DiscountFactors []float64         `json:"discount_factors"`
	PVFCF           []float64         `json:"pv_fcf"`
}

// Value runs the projection engine and discounts its free cash flows.
//
// FORMULAS:
//
//	TV   = FCF_n × (1 + g) / (r - g)
//	DF_i = (1 + r)^-(i+1)                 period-end discounting
//	EV   = Σ FCF_i × DF_i + TV × DF_{n-1}
//
// It fails with ErrDivergentTerminalValue when r <= g, and with
// projection.ErrOverflow when any discounted amount is not finite.
func Value(a assumption.AssumptionSet) (Result, error) {
	proj, err := projection.Project(a)
	if err != nil {
		return Result{}, err
	}

	n := proj.Years()
	terminalFCF := proj.FCF[n-1] * (1 + a.TerminalGrowthRate)
	tv, err := GordonTerminalValue(terminalFCF, a.DiscountRate, a.TerminalGrowthRate)
	if err != nil {
		return Result{}, err
	}

	factors := DiscountFactors(a.DiscountRate, n)
	pv := make([]float64, n)
	var sumPV float64
	for i, cf := range proj.FCF {
		pv[i] = cf * factors[i]
		sumPV += pv[i]
	}
	pvTerminal := tv * factors[n-1]
	ev := sumPV + pvTerminal

	for _, v := range []struct {
		name  string
		value float64
	}{
		{"terminal value", tv},
		{"sum of discounted fcf", sumPV},
		{"discounted terminal value", pvTerminal},
		{"enterprise value", ev},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return Result{}, fmt.Errorf("%w: %s is not finite", projection.ErrOverflow, v.name)
		}
	}

	return Result{
		EnterpriseValue: ev,
		TerminalValue:   tv,
		PVTerminalValue: pvTerminal,
		SumPVFCF:        sumPV,
		TerminalFCF:     terminalFCF,
		Projection:      proj,
		DiscountFactors: factors,
		PVFCF:           pv,
	}, nil
}

// GordonTerminalValue capitalises the next-period cash flow at (r - g).
func GordonTerminalValue(nextPeriodCF, discountRate, growthRate float64) (float64, error) {
	if discountRate <= growthRate {
		return 0, fmt.Errorf("%w: discount rate %g <= terminal growth %g",
			ErrDivergentTerminalValue, discountRate, growthRate)
	}
	return nextPeriodCF / (discountRate - growthRate), nil
}

// DiscountFactors returns (1+r)^-(t) for t = 1..n.
func DiscountFactors(discountRate float64, n int) []float64 {
	factors := make([]float64, n)
	for i := range factors {
		factors[i] = math.Pow(1+discountRate, -float64(i+1))
	}
	return factors
}

// EquityBridge converts enterprise value to equity value and value per share.
type EquityBridge struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	NetDebt         float64 `json:"net_debt"`
	EquityValue     float64 `json:"equity_value"`
	Shares          float64 `json:"shares_outstanding"`
	SharePrice      float64 `json:"share_price"`
}

// BridgeToEquity subtracts net debt from ev and divides by the share count.
func BridgeToEquity(ev, netDebt, shares float64) (EquityBridge, error) {
	if !(shares > 0) || math.IsInf(shares, 0) {
		return EquityBridge{}, fmt.Errorf("%w: shares outstanding must be positive, got %g",
			assumption.ErrInvalidInput, shares)
	}
	if math.IsNaN(netDebt) || math.IsInf(netDebt, 0) {
		return EquityBridge{}, fmt.Errorf("%w: net debt is not finite", assumption.ErrInvalidInput)
	}
	equity := ev - netDebt
	return EquityBridge{
		EnterpriseValue: ev,
		NetDebt:         netDebt,
		EquityValue:     equity,
		Shares:          shares,
		SharePrice:      equity / shares,
	}, nil
}
