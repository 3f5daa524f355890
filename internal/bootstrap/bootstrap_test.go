package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/models/dto/enums"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/config"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "costequity-test"
	cfg.Metrics.PartitionTolerance = 0.5
	cfg.Metrics.DemographicFields = []string{"female_pct", "male_pct", "pell_pct"}
	cfg.Metrics.BracketOrder = []string{"0-30000", "30001-48000", "110001+"}
	cfg.Metrics.SummaryTopN = 5

	deps := BuildDependencies(cfg, store.NewMemoryStore(), zerolog.Nop())
	router := SetupRouter(cfg, deps)

	token, _, err := deps.JWTService.GenerateToken("test-loader", string(enums.RoleLoader))
	if err != nil {
		t.Fatal(err)
	}
	return &apiClient{t: t, router: router, token: token}
}

func (c *apiClient) do(method, path string, body interface{}, auth bool) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func (c *apiClient) expect(method, path string, body interface{}, auth bool, status int) map[string]interface{} {
	c.t.Helper()
	w, decoded := c.do(method, path, body, auth)
	if w.Code != status {
		c.t.Fatalf("%s %s: status = %d, want %d, body %s", method, path, w.Code, status, w.Body.String())
	}
	return decoded
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return d
}

func TestIngestionAndMetricsOverHTTP(t *testing.T) {
	c := newAPIClient(t)

	// writes need a loader token
	c.expect(http.MethodPost, "/api/v1/institutions", map[string]interface{}{"name": "Alpha U", "degreeLength": 4}, false, http.StatusUnauthorized)

	created := c.expect(http.MethodPost, "/api/v1/institutions",
		map[string]interface{}{"name": "Alpha U", "state": "TX", "degreeLength": 4, "region": "South"}, true, http.StatusCreated)
	id := int(data(t, created)["id"].(float64))
	base := "/api/v1/institutions/" + strconv.Itoa(id)

	c.expect(http.MethodPost, "/api/v1/institutions",
		map[string]interface{}{"name": "Alpha U", "state": "TX", "degreeLength": 4}, true, http.StatusConflict)
	c.expect(http.MethodPost, "/api/v1/institutions",
		map[string]interface{}{"name": "Lower", "state": "tx", "degreeLength": 4}, true, http.StatusBadRequest)

	c.expect(http.MethodPut, base+"/tuition/2020", map[string]interface{}{"amount": 10000}, true, http.StatusNoContent)
	c.expect(http.MethodPut, base+"/tuition/2021", map[string]interface{}{"amount": 11000}, true, http.StatusNoContent)
	c.expect(http.MethodPut, base+"/tuition/1800", map[string]interface{}{"amount": 11000}, true, http.StatusBadRequest)
	c.expect(http.MethodPut, base+"/tuition/2020", map[string]interface{}{"amount": -1}, true, http.StatusBadRequest)
	c.expect(http.MethodPut, "/api/v1/institutions/999/tuition/2020", map[string]interface{}{"amount": 1}, true, http.StatusNotFound)

	c.expect(http.MethodPut, base+"/brackets/0-30000", map[string]interface{}{"avgNetCost": 4000}, true, http.StatusNoContent)
	c.expect(http.MethodPut, base+"/brackets/110001+", map[string]interface{}{"avgNetCost": 9000}, true, http.StatusNoContent)
	c.expect(http.MethodPost, base+"/salaries", map[string]interface{}{"medianSalary": 50000}, true, http.StatusCreated)

	c.expect(http.MethodPut, base+"/diversity/2020",
		map[string]interface{}{"demographics": map[string]interface{}{"pell_pct": 150}}, true, http.StatusBadRequest)
	c.expect(http.MethodPut, base+"/diversity/2020",
		map[string]interface{}{"demographics": map[string]interface{}{"pell_pct": 50, "female_pct": 60, "male_pct": 40},
			"partitions": [][]string{{"female_pct", "male_pct"}}}, true, http.StatusNoContent)

	got := data(t, c.expect(http.MethodGet, base+"/metrics/affordability?year=2020&bracket=0-30000", nil, false, http.StatusOK))
	if got["value"].(float64) != 0.4 {
		t.Fatalf("affordability = %v, want 0.4", got["value"])
	}

	got = data(t, c.expect(http.MethodGet, base+"/metrics/equity-gap?year=2020", nil, false, http.StatusOK))
	if got["value"].(float64) != 5000 {
		t.Fatalf("equity gap = %v, want 5000", got["value"])
	}

	got = data(t, c.expect(http.MethodGet, base+"/metrics/outcome-to-cost", nil, false, http.StatusOK))
	if v := got["value"].(float64); v < 4.545 || v > 4.546 {
		t.Fatalf("outcome to cost = %v, want 50000/11000", v)
	}

	got = data(t, c.expect(http.MethodGet, base+"/metrics/diversity-weighted?year=2020&bracket=0-30000&field=pell_pct", nil, false, http.StatusOK))
	if got["value"].(float64) != 0.2 {
		t.Fatalf("diversity weighted = %v, want 0.2", got["value"])
	}

	c.expect(http.MethodGet, base+"/metrics/affordability?year=2021&bracket=30001-48000", nil, false, http.StatusUnprocessableEntity)
	c.expect(http.MethodGet, base+"/metrics/affordability?year=2020.5&bracket=0-30000", nil, false, http.StatusBadRequest)

	series := data(t, c.expect(http.MethodGet, base+"/series?metric=tuition_change", nil, false, http.StatusOK))
	points := series["points"].([]interface{})
	if len(points) != 1 || points[0].(map[string]interface{})["value"].(float64) != 1000 {
		t.Fatalf("tuition_change series = %v", points)
	}
	c.expect(http.MethodGet, base+"/series?metric=graduation_rate", nil, false, http.StatusBadRequest)

	trend := data(t, c.expect(http.MethodGet, base+"/metrics/cost-trend", nil, false, http.StatusOK))
	if len(trend["points"].([]interface{})) != 2 {
		t.Fatalf("cost trend = %v", trend)
	}

	// delete cascades
	c.expect(http.MethodDelete, base, nil, true, http.StatusNoContent)
	c.expect(http.MethodGet, base, nil, false, http.StatusNotFound)
	c.expect(http.MethodGet, base+"/metrics/cost-trend", nil, false, http.StatusNotFound)
}

func TestQueriesOverHTTP(t *testing.T) {
	c := newAPIClient(t)

	for _, in := range []map[string]interface{}{
		{"name": "Alpha U", "state": "TX", "degreeLength": 4, "region": "South"},
		{"name": "Beta U", "state": "CA", "degreeLength": 4, "region": "West"},
		{"name": "Gamma CC", "degreeLength": 2, "region": "South"},
	} {
		created := c.expect(http.MethodPost, "/api/v1/institutions", in, true, http.StatusCreated)
		id := strconv.Itoa(int(data(t, created)["id"].(float64)))
		c.expect(http.MethodPut, "/api/v1/institutions/"+id+"/tuition/2021",
			map[string]interface{}{"amount": 1000 * (len(in["name"].(string)))}, true, http.StatusNoContent)
	}

	list := data(t, c.expect(http.MethodGet, "/api/v1/institutions?region=South&size=1", nil, false, http.StatusOK))
	items := list["items"].([]interface{})
	pagination := list["pagination"].(map[string]interface{})
	if len(items) != 1 || pagination["totalItems"].(float64) != 2 || pagination["totalPages"].(float64) != 2 {
		t.Fatalf("unexpected page %v", list)
	}

	twoYear := data(t, c.expect(http.MethodGet, "/api/v1/institutions?degreeLength=2", nil, false, http.StatusOK))
	if len(twoYear["items"].([]interface{})) != 1 {
		t.Fatalf("unexpected degreeLength filter result %v", twoYear)
	}
	c.expect(http.MethodGet, "/api/v1/institutions?degreeLength=abc", nil, false, http.StatusBadRequest)
	c.expect(http.MethodGet, "/api/v1/institutions?degreeLength=0", nil, false, http.StatusBadRequest)

	agg := data(t, c.expect(http.MethodGet, "/api/v1/aggregates/tuition?groupBy=state&year=2021", nil, false, http.StatusOK))
	groups := agg["groups"].(map[string]interface{})
	if _, ok := groups["unknown"]; !ok || len(groups) != 3 {
		t.Fatalf("unexpected groups %v", groups)
	}
	c.expect(http.MethodGet, "/api/v1/aggregates/tuition?groupBy=city&year=2021", nil, false, http.StatusBadRequest)

	ranking := data(t, c.expect(http.MethodGet, "/api/v1/rankings?metric=tuition&year=2021&direction=asc&limit=2", nil, false, http.StatusOK))
	ranked := ranking["items"].([]interface{})
	if len(ranked) != 2 {
		t.Fatalf("unexpected ranking %v", ranked)
	}
	first := ranked[0].(map[string]interface{})["institution"].(map[string]interface{})
	if first["name"] != "Beta U" {
		t.Fatalf("unexpected first ranked %v", first)
	}
	c.expect(http.MethodGet, "/api/v1/rankings?metric=tuition&year=2021&direction=sideways", nil, false, http.StatusBadRequest)
	c.expect(http.MethodGet, "/api/v1/rankings?metric=tuition&year=2021&limit=-1", nil, false, http.StatusBadRequest)
	c.expect(http.MethodGet, "/api/v1/rankings?metric=tuition&year=2021&limit=two", nil, false, http.StatusBadRequest)
	c.expect(http.MethodGet, "/api/v1/rankings?year=2021", nil, false, http.StatusBadRequest)
	c.expect(http.MethodGet, "/api/v1/rankings?metric=equity_gap&year=2021&order=%3C30k,%3C30k", nil, false, http.StatusBadRequest)

	all := data(t, c.expect(http.MethodGet, "/api/v1/rankings?metric=tuition&year=2021", nil, false, http.StatusOK))
	if all["direction"] != "desc" || len(all["items"].([]interface{})) != 3 {
		t.Fatalf("unexpected default ranking %v", all)
	}

	summary := data(t, c.expect(http.MethodGet, "/api/v1/summary?year=2021&topN=1", nil, false, http.StatusOK))
	if summary["institutionCount"].(float64) != 3 || len(summary["topStatesByTuition"].([]interface{})) != 1 {
		t.Fatalf("unexpected summary %v", summary)
	}

	c.expect(http.MethodGet, "/health", nil, false, http.StatusOK)
}
