package valuation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"
	coreValuation "dcf_valuation/pkg/core/valuation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceAssumptions = `{
	"revenue_growth_rates": [0.15, 0.12, 0.10, 0.08, 0.06],
	"ebit_margins": [0.25, 0.26, 0.27, 0.27, 0.28],
	"tax_rate": 0.25,
	"nwc_percent": 0.12,
	"capex_percent": 0.08,
	"discount_rate": 0.10,
	"terminal_growth_rate": 0.02,
	"initial_revenue": 1000000
}`

const referenceQuery = `
	"current_price": 2,
	"shares_outstanding": 1000000,
	"net_debt": 0,
	"initial_revenue": 1000000,
	"ebit_margins": [0.25, 0.26, 0.27, 0.27, 0.28],
	"tax_rate": 0.25,
	"nwc_percent": 0.12,
	"capex_percent": 0.08,
	"discount_rate": 0.10,
	"terminal_growth_rate": 0.02`

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Parallelism = 2
	return NewHandler(cfg, nil).Router()
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := do(t, newRouter(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestProject(t *testing.T) {
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/project", referenceAssumptions)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Revenue []float64 `json:"revenue"`
		FCF     []float64 `json:"fcf"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Revenue, 5)
	assert.InDelta(t, 1_150_000, got.Revenue[0], 1e-6)
	assert.InDelta(t, 105_625, got.FCF[0], 1e-6)
}

func TestValue_WithBridge(t *testing.T) {
	body := `{"assumptions": ` + referenceAssumptions + `,
		"market": {"current_price": 50, "shares_outstanding": 1000000, "net_debt": 500000}}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/value", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got valueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.InEpsilon(t, 2_148_410.7062359136, got.Result.EnterpriseValue, 1e-9)
	require.NotNil(t, got.EquityBridge)
	assert.InEpsilon(t, 1.6484107062359135, got.EquityBridge.SharePrice, 1e-9)
}

func TestValue_MarkdownFormat(t *testing.T) {
	body := `{"assumptions": ` + referenceAssumptions + `}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/value?format=md", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "| Enterprise value | 2148410.71 |")
}

func TestValue_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"assumptions": `, http.StatusBadRequest},
		{"invalid", `{"assumptions": {"revenue_growth_rates": [], "ebit_margins": [0.2], "initial_revenue": 1}}`, http.StatusBadRequest},
		{"divergent", `{"assumptions": {"revenue_growth_rates": [0.1], "ebit_margins": [0.2], "initial_revenue": 1,
			"discount_rate": 0.02, "terminal_growth_rate": 0.03}}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, newRouter(), http.MethodPost, "/api/dcf/value", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestValue_OverflowIsRejectedBeforeRendering(t *testing.T) {
	body := `{"assumptions": ` + strings.Replace(referenceAssumptions, "1000000", "1e308", 1) + `}`
	for _, path := range []string{"/api/dcf/value", "/api/dcf/value?format=md"} {
		w := do(t, newRouter(), http.MethodPost, path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "projection overflowed")
	}
}

func TestValue_CSVCarriesEnterpriseValue(t *testing.T) {
	body := `{"assumptions": ` + referenceAssumptions + `}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/value?format=csv", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ",2148410.706")
}

func TestSensitivity_DefaultGrids(t *testing.T) {
	body := `{"assumptions": ` + referenceAssumptions + `}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/sensitivity", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tables []sensitivity.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "discount_rate", tables[0].Variable.String())
	assert.InEpsilon(t, 2_911_977.7818704247, tables[0].Points[0].EnterpriseValue, 1e-9)
}

func TestSensitivity_UnknownVariable(t *testing.T) {
	body := `{"assumptions": ` + referenceAssumptions + `, "specs": [{"variable": "years", "perturbations": [0.1]}]}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/sensitivity", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReverse(t *testing.T) {
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/reverse", "{"+referenceQuery+"}")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sol reverse.Solution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sol))
	assert.InDelta(t, 0.091, sol.ImpliedGrowth, 1e-9)
	assert.Equal(t, 500, sol.Candidates)
}

func TestReverse_EmptyGrid(t *testing.T) {
	body := "{" + referenceQuery + `, "search_range": {"min_growth": 0.2, "max_growth": 0.1, "step": 0.01}}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/reverse", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReverseSensitivity(t *testing.T) {
	body := "{" + referenceQuery + `, "specs": [{"variable": "current_price", "perturbations": [-0.1, 0, 0.1]}]}`
	w := do(t, newRouter(), http.MethodPost, "/api/dcf/reverse/sensitivity", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tables []reverse.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	require.Len(t, tables, 1)
	want := []float64{0.059, 0.091, 0.12}
	for i, p := range tables[0].Points {
		assert.InDelta(t, want[i], p.ImpliedGrowth, 1e-9)
	}
}

func TestFootballField(t *testing.T) {
	body := `{
		"target": {"fcf": 100, "ebitda": 120, "earnings": 80, "revenue": 500, "net_debt": 200},
		"comparables": [
			{"name": "A", "ev": 1000, "ebitda": 100, "price": 800, "earnings": 60},
			{"name": "B", "ev": 1500, "ebitda": 140, "price": 1200, "earnings": 90},
			{"name": "C", "ev": 2000, "ebitda": 180, "price": 1600, "earnings": 120}
		],
		"synergies": {"cost_savings": 20, "revenue_synergies": 10, "implementation_costs": 50}
	}`
	w := do(t, newRouter(), http.MethodPost, "/api/mna/football-field", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []mna.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.InDelta(t, 1275.0, rows[0].High, 1e-6)
	assert.InDelta(t, 175.0, rows[2].Low, 1e-9)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(coreValuation.ErrDivergentTerminalValue))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(mna.ErrNoTransactions))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assertErr("boom")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
