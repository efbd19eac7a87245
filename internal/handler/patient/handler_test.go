package patient_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-api/internal/handler"
	patientHandler "github.com/jwalitptl/patient-api/internal/handler/patient"
	"github.com/jwalitptl/patient-api/internal/repository/jsonfile"
	"github.com/jwalitptl/patient-api/internal/router"
	patientService "github.com/jwalitptl/patient-api/internal/service/patient"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "patient.json"))
	svc := patientService.NewService(store)

	r := router.NewRouter(handler.NewHandler(), patientHandler.NewHandler(svc), router.DefaultConfig())
	r.Setup()
	return r.Engine()
}

func makeRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func validPatientBody(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"name":        "John Doe",
		"age":         30,
		"blood_group": "O+",
		"gender":      "male",
		"phone":       "+1234567890",
		"email":       "abc@gmail.com",
		"address":     "123 Main St, City, Country",
		"doctor":      "Dr. Smith",
		"salary":      50000.0,
		"height":      170.0,
		"weight":      70.0,
	}
}

func TestRootAndAbout(t *testing.T) {
	engine := newTestEngine(t)

	w := makeRequest(t, engine, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Patient management system")

	w = makeRequest(t, engine, http.MethodGet, "/about", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fully functional")
}

func TestCreatePatientReturnsDerivedFields(t *testing.T) {
	engine := newTestEngine(t)

	w := makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 24.22, created["bmi"])
	assert.Equal(t, "Normal weight", created["verdict"])
}

func TestCreateDuplicateIDReturns400(t *testing.T) {
	engine := newTestEngine(t)

	w := makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}

func TestCreateValidationFailures(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"age out of range", func(b map[string]interface{}) { b["age"] = 120 }},
		{"negative height", func(b map[string]interface{}) { b["height"] = -170.0 }},
		{"zero weight", func(b map[string]interface{}) { b["weight"] = 0.0 }},
		{"bad gender", func(b map[string]interface{}) { b["gender"] = "unknown" }},
		{"missing name", func(b map[string]interface{}) { delete(b, "name") }},
		{"zero salary", func(b map[string]interface{}) { b["salary"] = 0.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validPatientBody("1")
			tt.mutate(body)

			w := makeRequest(t, engine, http.MethodPost, "/create", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing was persisted by any of the rejected requests.
	w := makeRequest(t, engine, http.MethodGet, "/patient/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPatient(t *testing.T) {
	engine := newTestEngine(t)

	w := makeRequest(t, engine, http.MethodGet, "/patient/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))

	w = makeRequest(t, engine, http.MethodGet, "/patient/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	assert.Equal(t, "John Doe", got["name"])
	assert.Equal(t, 24.22, got["bmi"])
}

func TestViewReturnsMappingKeyedByID(t *testing.T) {
	engine := newTestEngine(t)

	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))
	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("2"))

	w := makeRequest(t, engine, http.MethodGet, "/view", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &records))
	assert.Len(t, records, 2)
	assert.Contains(t, records, "1")
	assert.Contains(t, records, "2")
}

func TestUpdatePatient(t *testing.T) {
	engine := newTestEngine(t)

	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))

	w := makeRequest(t, engine, http.MethodPut, "/update/1", map[string]interface{}{
		"weight": 90.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &updated))
	assert.Equal(t, 31.14, updated["bmi"])
	assert.Equal(t, "Obesity", updated["verdict"])

	w = makeRequest(t, engine, http.MethodPut, "/update/404", map[string]interface{}{
		"weight": 90.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRejectsInvalidPartialFields(t *testing.T) {
	engine := newTestEngine(t)

	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))

	w := makeRequest(t, engine, http.MethodPut, "/update/1", map[string]interface{}{
		"age": 150,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePatient(t *testing.T) {
	engine := newTestEngine(t)

	makeRequest(t, engine, http.MethodPost, "/create", validPatientBody("1"))

	w := makeRequest(t, engine, http.MethodDelete, "/delete/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var removed map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &removed))
	assert.Equal(t, "1", removed["id"])

	w = makeRequest(t, engine, http.MethodDelete, "/delete/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSortEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	ages := map[string]int{"1": 30, "2": 50, "3": 20}
	for id, age := range ages {
		body := validPatientBody(id)
		body["age"] = age
		makeRequest(t, engine, http.MethodPost, "/create", body)
	}

	w := makeRequest(t, engine, http.MethodGet, "/sort?sort_by=age&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sorted []map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &sorted))
	require.Len(t, sorted, 3)
	assert.Equal(t, float64(50), sorted[0]["age"])
	assert.Equal(t, float64(30), sorted[1]["age"])
	assert.Equal(t, float64(20), sorted[2]["age"])

	// Order defaults to asc.
	w = makeRequest(t, engine, http.MethodGet, "/sort?sort_by=age", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &sorted))
	assert.Equal(t, float64(20), sorted[0]["age"])

	w = makeRequest(t, engine, http.MethodGet, "/sort?sort_by=name", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(t, engine, http.MethodGet, "/sort?sort_by=age&order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	makeRequest(t, engine, http.MethodGet, "/view", nil)

	w := makeRequest(t, engine, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patient_api_requests_total")
}

func TestRequestIDPropagation(t *testing.T) {
	engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "test-rid-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "test-rid-42", w.Header().Get("X-Request-ID"))
}
