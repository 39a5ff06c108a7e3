package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	h "tripplanner/internal/http/handlers"
	"tripplanner/internal/metrics"
	"tripplanner/internal/services"
	"tripplanner/internal/sources"
)

var testSecret = []byte("router-test-secret")

type memItineraries struct {
	mu    sync.Mutex
	items map[string]models.SavedItinerary
}

func (m *memItineraries) Save(_ context.Context, s models.SavedItinerary) (models.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.NewString()
	s.TotalCost = s.Itinerary.Summary.TotalCost
	s.CreatedAt = time.Now()
	m.items[s.ID] = s
	return s, nil
}

func (m *memItineraries) GetByID(_ context.Context, userID int64, id string) (models.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return models.SavedItinerary{}, domain.NotFoundError{Resource: "itinerary"}
	}
	return s, nil
}

func (m *memItineraries) ListByUser(_ context.Context, userID int64, _ int) ([]models.SavedSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SavedSummary{}
	for _, s := range m.items {
		if s.UserID == userID {
			out = append(out, models.SavedSummary{ID: s.ID, Origin: s.Origin, Destination: s.Destination})
		}
	}
	return out, nil
}

func (m *memItineraries) Delete(_ context.Context, userID int64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return domain.NotFoundError{Resource: "itinerary"}
	}
	delete(m.items, id)
	return nil
}

type memUsers struct{}

func (memUsers) FindByLogin(context.Context, string) (models.User, error) {
	return models.User{}, domain.NotFoundError{Resource: "user"}
}
func (memUsers) Exists(context.Context, string, string) (bool, error) { return true, nil }
func (memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	return u, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memItineraries, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := intconfig.Default()
	opts := sources.OptionsFromConfig(cfg.Fetch)
	opts.DelayBetweenRequests = 0
	opts.MaxRetries = 0

	store := &memItineraries{items: map[string]models.SavedItinerary{}}
	m := metrics.New()
	a := &h.API{
		Config:      cfg,
		Gatherer:    sources.NewGatherer([]sources.Source{sources.NewMockSource("kayak"), sources.NewMockSource("agoda")}, opts),
		Itineraries: store,
		Users:       memUsers{},
		Metrics:     m,
		Logger:      zerolog.Nop(),
		JWTSecret:   testSecret,
	}
	return NewRouter(intconfig.Env{}, a), store, m
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := services.IssueToken(testSecret, userID, role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func do(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const tripBody = `{"origin":"New York","destination":"Paris","departure_date":"2025-06-01","return_date":"2025-06-08","travelers":2}`

func TestHealthAndNoRoute(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestOptimizeAnonymous(t *testing.T) {
	r, store, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/optimize", tripBody, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "", body["itinerary_id"])

	it := body["itinerary"].(map[string]any)
	assert.Len(t, it["days"], 6)
	summary := it["summary"].(map[string]any)
	assert.Equal(t, 7.0, summary["duration_days"])
	assert.NotNil(t, it["flight"])
	assert.NotNil(t, it["hotel"])
	assert.Empty(t, store.items)
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/optimize",
		`{"departure_date":"2025-06-01","return_date":"2025-06-08","cost_weight":0.7,"time_weight":0.7}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "configuration_error", body["code"])
	assert.NotEmpty(t, body["request_id"])

	w = do(r, http.MethodPost, "/api/optimize", `{"departure_date":"June 1st"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date", decode(t, w)["code"])

	w = do(r, http.MethodPost, "/api/optimize", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/optimize", `{"departure_date":"2025-01-01","return_date":"2125-01-01"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["code"])
}

func TestOptimizeCandidates(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body := `{
		"flights":[{"airline":"A","total_price":1000,"duration_hours":10},{"airline":"B","total_price":1500,"duration_hours":7}],
		"hotels":[{"name":"H","total_price":700,"rating":4.2}],
		"activities":[{"name":"Tour","date":"2025-06-02","total_price":80,"price_per_person":40,"duration_hours":2,"rating":4.5}],
		"departure_date":"2025-06-01","return_date":"2025-06-04","cost_weight":1,"time_weight":0
	}`
	w := do(r, http.MethodPost, "/api/optimize/candidates", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	it := decode(t, w)["itinerary"].(map[string]any)
	assert.Equal(t, "A", it["flight"].(map[string]any)["airline"])
	summary := it["summary"].(map[string]any)
	assert.InDelta(t, 1780.0, summary["total_cost"], 1e-9)
	assert.Len(t, it["days"], 2)
}

func TestItinerariesRequireAuth(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/itineraries", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/itineraries", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSavedItineraryLifecycle(t *testing.T) {
	r, _, _ := newTestRouter(t)
	owner := token(t, 7, models.RoleUser)
	other := token(t, 8, models.RoleUser)

	w := do(r, http.MethodPost, "/api/optimize", tripBody, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := decode(t, w)["itinerary_id"].(string)
	require.NotEmpty(t, id)

	w = do(r, http.MethodGet, "/api/itineraries", "", owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["itineraries"], 1)

	w = do(r, http.MethodGet, "/api/itineraries/"+id, "", owner)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/itineraries/"+id, "", other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/itineraries/"+id+"/pdf", "", owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ITINERARY_Paris_2025-06-01.pdf")

	w = do(r, http.MethodGet, "/api/itineraries/not-a-uuid", "", owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/itineraries/"+id, "", owner)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/itineraries/"+id, "", owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminSources(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/admin/sources", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/admin/sources", "", token(t, 1, models.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/admin/sources", "", token(t, 1, models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	srcs := decode(t, w)["sources"].([]any)
	require.Len(t, srcs, 2)
	assert.Equal(t, "kayak", srcs[0].(map[string]any)["name"])
	assert.Equal(t, "closed", srcs[0].(map[string]any)["state"])
}

func TestRegisterConflictAndLoginFailure(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/auth/register",
		`{"username":"ana","email":"ana@example.com","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"ana","password":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	do(r, http.MethodGet, "/api/health", "", "")

	w := do(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tripplanner_http_requests_total")
}

func TestRoutesAndDBCheck(t *testing.T) {
	r, _, _ := newTestRouter(t)
	intconfig.CloseDB()

	w := do(r, http.MethodGet, "/api/routes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/optimize/candidates")

	w = do(r, http.MethodGet, "/api/db-check", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "db_unavailable", decode(t, w)["code"])
}

func TestDBCheckReportsSchema(t *testing.T) {
	r, _, _ := newTestRouter(t)

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	intconfig.SetDB(conn)
	t.Cleanup(intconfig.CloseDB)

	mock.ExpectQuery("information_schema.tables").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users"))
	mock.ExpectQuery("information_schema.tables").
		WithArgs("itineraries").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("itineraries"))
	mock.ExpectQuery("information_schema.columns").
		WithArgs("users", "password_hash").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("password_hash"))
	mock.ExpectQuery("information_schema.columns").
		WithArgs("users", "role").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("role"))
	mock.ExpectQuery("information_schema.columns").
		WithArgs("itineraries", "payload").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	w := do(r, http.MethodGet, "/api/db-check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ready"])
	assert.Equal(t, []any{"itineraries.payload"}, body["missing_columns"])
	assert.Equal(t, map[string]any{"users": true, "itineraries": true}, body["tables"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
