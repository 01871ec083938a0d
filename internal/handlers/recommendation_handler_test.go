package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"pricing-service/internal/models"
)

type mockRunner struct {
	runFunc func(ctx context.Context, req models.RunRequest) (*models.RunResponse, error)
	calls   int
}

func (m *mockRunner) Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
	m.calls++
	return m.runFunc(ctx, req)
}

type mockRunLister struct {
	runs  []models.PricingRun
	total int64
	err   error
}

func (m *mockRunLister) ListRuns(ctx context.Context, limit, offset int) ([]models.PricingRun, int64, error) {
	return m.runs, m.total, m.err
}

func newTestRouter(h *RecommendationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/pricing/runs", h.CreateRun)
	r.GET("/api/v1/pricing/runs", h.ListRuns)
	return r
}

func TestCreateRun(t *testing.T) {
	runner := &mockRunner{
		runFunc: func(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
			assert.Equal(t, "inv.csv", req.InventoryKey)
			assert.Equal(t, "sales.csv", req.SalesKey)
			return &models.RunResponse{
				RunID:    "2026-03-01T12:00:00Z",
				SKUCount: 1,
				Recommendations: []models.Recommendation{
					{SKU: "A1", Strategy: models.StrategyClearInventory},
				},
			}, nil
		},
	}
	router := newTestRouter(NewRecommendationHandler(runner, nil, nil))

	body := bytes.NewBufferString(`{"inventory_s3_key":"inv.csv","sales_s3_key":"sales.csv"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/pricing/runs", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)

	var resp models.RunResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.RunID)
	assert.Equal(t, 1, resp.SKUCount)
	assert.Len(t, resp.Recommendations, 1)
}

func TestCreateRun_PassesCostPriceFactor(t *testing.T) {
	runner := &mockRunner{
		runFunc: func(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
			assert.NotNil(t, req.CostPriceFactor)
			assert.Equal(t, 0.4, *req.CostPriceFactor)
			return &models.RunResponse{Recommendations: []models.Recommendation{}}, nil
		},
	}
	router := newTestRouter(NewRecommendationHandler(runner, nil, nil))

	body := bytes.NewBufferString(`{"inventory_s3_key":"inv.csv","sales_s3_key":"sales.csv","cost_price_factor":0.4}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/pricing/runs", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
}

func TestCreateRun_MissingRequiredField(t *testing.T) {
	runner := &mockRunner{
		runFunc: func(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
			t.Fatal("runner must not be called")
			return nil, nil
		},
	}
	router := newTestRouter(NewRecommendationHandler(runner, nil, nil))

	body := bytes.NewBufferString(`{"inventory_s3_key":"inv.csv"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/pricing/runs", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestCreateRun_PipelineFailure(t *testing.T) {
	runner := &mockRunner{
		runFunc: func(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
			return nil, fmt.Errorf("sku \"A1\": unparseable currency value \"oops\"")
		},
	}
	router := newTestRouter(NewRecommendationHandler(runner, nil, nil))

	body := bytes.NewBufferString(`{"inventory_s3_key":"inv.csv","sales_s3_key":"sales.csv"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/pricing/runs", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unparseable currency value")
}

func TestListRuns(t *testing.T) {
	lister := &mockRunLister{
		runs:  []models.PricingRun{{RunID: "r1", Status: models.PricingRunStatusCompleted}},
		total: 1,
	}
	router := newTestRouter(NewRecommendationHandler(&mockRunner{}, lister, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/pricing/runs?limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs  []models.PricingRun `json:"runs"`
		Total int64               `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)
	assert.Equal(t, int64(1), resp.Total)
}

func TestListRuns_HistoryDisabled(t *testing.T) {
	router := newTestRouter(NewRecommendationHandler(&mockRunner{}, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/pricing/runs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs  []models.PricingRun `json:"runs"`
		Total int64               `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Runs)
}
