package projection

// Result holds the per-year operating projection. Every slice has length
// Years(); index 0 is forecast year 1. A Result is never modified after
// Project returns it.
type Result struct {
	Revenue   []float64 `json:"revenue"`
	EBIT      []float64 `json:"ebit"`
	NOPAT     []float64 `json:"nopat"`
	NWCChange []float64 `json:"nwc_change"`
	Capex     []float64 `json:"capex"`
	FCF       []float64 `json:"fcf"`
}

// YearRow is one forecast year of a Result, used by report renderers.
type YearRow struct {
	Year      int     `json:"year" csv:"year"` // 1-based
	Revenue   float64 `json:"revenue" csv:"revenue"`
	EBIT      float64 `json:"ebit" csv:"ebit"`
	NOPAT     float64 `json:"nopat" csv:"nopat"`
	NWCChange float64 `json:"nwc_change" csv:"nwc_change"`
	Capex     float64 `json:"capex" csv:"capex"`
	FCF       float64 `json:"fcf" csv:"fcf"`
}

// Years returns the forecast horizon.
func (r Result) Years() int {
	return len(r.Revenue)
}

// Rows flattens the parallel slices into per-year rows.
func (r Result) Rows() []YearRow {
	rows := make([]YearRow, r.Years())
	for i := range rows {
		rows[i] = YearRow{
			Year:      i + 1,
			Revenue:   r.Revenue[i],
			EBIT:      r.EBIT[i],
			NOPAT:     r.NOPAT[i],
			NWCChange: r.NWCChange[i],
			Capex:     r.Capex[i],
			FCF:       r.FCF[i],
		}
	}
	return rows
}
