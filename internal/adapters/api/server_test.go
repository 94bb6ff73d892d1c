package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/adapters/api"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func newTestServer(t *testing.T, requestsPerSecond, burst int) http.Handler {
	t.Helper()
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	cfg := config.ServerConfig{
		Address:         ":0",
		Mode:            "test",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		RateLimit:       config.RateLimitConfig{Requests: requestsPerSecond, Burst: burst},
	}
	return api.NewServer(cfg, engine.Mediator, zerolog.Nop(), "").Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func TestAPI_FabricRoundTripAndInsufficientFabric(t *testing.T) {
	// Arrange
	h := newTestServer(t, 100, 100)
	batchRec := do(t, h, http.MethodPost, "/api/v1/fabric/batches", map[string]string{
		"fabric_type": "denim", "color": "indigo", "design": "plain", "quality": "A",
	})
	require.Equal(t, http.StatusCreated, batchRec.Code)
	var batch struct {
		BatchID string `json:"batch_id"`
	}
	decode(t, batchRec, &batch)

	rollRec := do(t, h, http.MethodPost, "/api/v1/fabric/rolls", map[string]interface{}{"batch_id": batch.BatchID, "length": "20"})
	require.Equal(t, http.StatusCreated, rollRec.Code)
	var roll struct {
		RollID string `json:"roll_id"`
	}
	decode(t, rollRec, &roll)

	jobRec := do(t, h, http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"product_id": "jeans", "target": map[string]int{"32": 4}, "worker_id": "cutter-1",
	})
	require.Equal(t, http.StatusCreated, jobRec.Code)
	var job struct {
		JobID string `json:"job_id"`
	}
	decode(t, jobRec, &job)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/jobs/"+job.JobID+"/fabric-usages", map[string]interface{}{
		"roll_id": roll.RollID, "amount": "25",
	})
	rolls := do(t, h, http.MethodGet, "/api/v1/fabric/batches/"+batch.BatchID+"/rolls", nil)

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body api.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "INSUFFICIENT_FABRIC", body.Code)
	assert.Equal(t, roll.RollID, body.Details["roll_id"])
	assert.Equal(t, "20", body.Details["remaining"])

	require.Equal(t, http.StatusOK, rolls.Code)
	assert.Contains(t, rolls.Body.String(), `"remaining_length":"20"`)
}

func TestAPI_NotFoundMapsTo404(t *testing.T) {
	// Arrange
	h := newTestServer(t, 100, 100)

	// Act
	rec := do(t, h, http.MethodGet, "/api/v1/orders/missing-order", nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body api.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestAPI_BindingErrorsAreValidationFailures(t *testing.T) {
	// Arrange
	h := newTestServer(t, 100, 100)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/orders", map[string]interface{}{"client": "ACME"})

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body api.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Contains(t, body.Details["fields"], "Lines")
}

func TestAPI_FractionalQuantityIsInvalidQuantityMap(t *testing.T) {
	// Arrange
	h := newTestServer(t, 100, 100)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"product_id": "tee",
		"worker_id":  "cutter-1",
		"target":     map[string]interface{}{"M": 1.5},
	})

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body api.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "INVALID_QUANTITY_MAP", body.Code)
	assert.Contains(t, body.Message, "non-integer")
}

func TestAPI_PackWithNothingFinishedIsRejected(t *testing.T) {
	// Arrange
	h := newTestServer(t, 100, 100)
	created := do(t, h, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client": "ACME",
		"lines":  []map[string]interface{}{{"product_id": "tee", "quantities": map[string]int{"M": 2}}},
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var order struct {
		OrderID string   `json:"order_id"`
		LineIDs []string `json:"line_ids"`
	}
	decode(t, created, &order)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/orders/"+order.OrderID+"/pack", nil)
	status := do(t, h, http.MethodGet, "/api/v1/orders/"+order.OrderID, nil)

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body api.ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "NOTHING_TO_PACK", body.Code)

	require.Equal(t, http.StatusOK, status.Code)
	assert.Contains(t, status.Body.String(), `"status":"PENDING"`)
	assert.Len(t, order.LineIDs, 1)
}

func TestAPI_CommandsAreRateLimited(t *testing.T) {
	// Arrange
	h := newTestServer(t, 1, 1)
	body := map[string]interface{}{"product_id": "tee", "quantities": map[string]int{"M": 1}}

	// Act
	first := do(t, h, http.MethodPost, "/api/v1/stock/batches", body)
	second := do(t, h, http.MethodPost, "/api/v1/stock/batches", body)
	read := do(t, h, http.MethodGet, "/api/v1/stock/batches", nil)

	// Assert
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestStatusFor_MapsCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, api.StatusFor("CONCURRENT_MODIFICATION"))
	assert.Equal(t, http.StatusConflict, api.StatusFor("INVALID_STATE"))
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusFor("OVER_RECEIPT"))
	assert.Equal(t, http.StatusInternalServerError, api.StatusFor(""))
}
