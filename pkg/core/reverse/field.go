package reverse

import (
	"fmt"
	"strings"

	"dcf_valuation/pkg/core/assumption"
)

// QueryField names a perturbable input of a Query. The horizon and the
// search range are structural and cannot be perturbed.
type QueryField int

const (
	QueryCurrentPrice QueryField = iota + 1
	QuerySharesOutstanding
	QueryNetDebt
	QueryInitialRevenue
	QueryEBITMargins
	QueryTaxRate
	QueryNWCPercent
	QueryCapexPercent
	QueryDiscountRate
	QueryTerminalGrowthRate
)

var queryFieldNames = map[QueryField]string{
	QueryCurrentPrice:       "current_price",
	QuerySharesOutstanding:  "shares_outstanding",
	QueryNetDebt:            "net_debt",
	QueryInitialRevenue:     "initial_revenue",
	QueryEBITMargins:        "ebit_margins",
	QueryTaxRate:            "tax_rate",
	QueryNWCPercent:         "nwc_percent",
	QueryCapexPercent:       "capex_percent",
	QueryDiscountRate:       "discount_rate",
	QueryTerminalGrowthRate: "terminal_growth_rate",
}

// QueryFields lists every perturbable query field in declaration order.
func QueryFields() []QueryField {
	return []QueryField{
		QueryCurrentPrice,
		QuerySharesOutstanding,
		QueryNetDebt,
		QueryInitialRevenue,
		QueryEBITMargins,
		QueryTaxRate,
		QueryNWCPercent,
		QueryCapexPercent,
		QueryDiscountRate,
		QueryTerminalGrowthRate,
	}
}

func (f QueryField) String() string {
	if name, ok := queryFieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("QueryField(%d)", int(f))
}

// Valid reports whether f names a known query field.
func (f QueryField) Valid() bool {
	_, ok := queryFieldNames[f]
	return ok
}

// ParseQueryField maps a snake_case name to its QueryField.
func ParseQueryField(name string) (QueryField, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, n := range queryFieldNames {
		if n == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a perturbable reverse-DCF input", assumption.ErrUnknownVariable, name)
}

func (f QueryField) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", assumption.ErrUnknownVariable, int(f))
	}
	return []byte(f.String()), nil
}

func (f *QueryField) UnmarshalText(text []byte) error {
	parsed, err := ParseQueryField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Scale returns a copy of q with field f multiplied by factor.
func (q Query) Scale(f QueryField, factor float64) (Query, error) {
	out := q.Clone()
	switch f {
	case QueryCurrentPrice:
		out.CurrentPrice *= factor
	case QuerySharesOutstanding:
		out.SharesOutstanding *= factor
	case QueryNetDebt:
		out.NetDebt *= factor
	case QueryInitialRevenue:
		out.InitialRevenue *= factor
	case QueryEBITMargins:
		for i := range out.EBITMargins {
			out.EBITMargins[i] *= factor
		}
	case QueryTaxRate:
		out.TaxRate *= factor
	case QueryNWCPercent:
		out.NWCPercent *= factor
	case QueryCapexPercent:
		out.CapexPercent *= factor
	case QueryDiscountRate:
		out.DiscountRate *= factor
	case QueryTerminalGrowthRate:
		out.TerminalGrowthRate *= factor
	default:
		return Query{}, fmt.Errorf("%w: %s", assumption.ErrUnknownVariable, f)
	}
	return out, nil
}
