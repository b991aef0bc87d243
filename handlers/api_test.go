package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/services"
)

type stubSync struct {
	result *models.SyncResult
	err    error
	calls  int
}

func (s *stubSync) Run() (*models.SyncResult, error) {
	s.calls++
	return s.result, s.err
}

type stubHistory struct {
	rooms     []models.Room
	power     []models.PzemData
	rows      []models.SeriesRow
	err       error
	lastQuery models.SeriesQuery
}

func (s *stubHistory) ListRooms() ([]models.Room, error) {
	return s.rooms, s.err
}

func (s *stubHistory) ListPowerData(start, end time.Time, limit int) ([]models.PzemData, error) {
	return s.power, s.err
}

func (s *stubHistory) ListSensorData(start, end time.Time, limit int) ([]models.RoomSensorData, error) {
	return nil, s.err
}

func (s *stubHistory) QuerySeries(q models.SeriesQuery) ([]models.SeriesRow, error) {
	s.lastQuery = q
	return s.rows, s.err
}

type stubRelay struct {
	state    *models.RelayState
	err      error
	lastReq  *models.RelayControlRequest
	controls int
}

func (s *stubRelay) Control(req *models.RelayControlRequest) (*models.RelayState, error) {
	s.controls++
	s.lastReq = req
	return s.state, s.err
}

func (s *stubRelay) States(relayID, roomID string) ([]models.RelayState, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.state == nil {
		return []models.RelayState{}, nil
	}
	return []models.RelayState{*s.state}, nil
}

type stubCleanup struct {
	result   *models.CleanupResult
	err      error
	lastDays int
	calls    int
}

func (s *stubCleanup) Run(days int) (*models.CleanupResult, error) {
	s.calls++
	s.lastDays = days
	return s.result, s.err
}

func (s *stubCleanup) DefaultDays() int { return 90 }

type apiFixture struct {
	echo    *echo.Echo
	sync    *stubSync
	history *stubHistory
	relay   *stubRelay
	cleanup *stubCleanup
}

func newAPIFixture(apiKey string) *apiFixture {
	f := &apiFixture{
		echo:    echo.New(),
		sync:    &stubSync{result: &models.SyncResult{Synced: []string{"living_room"}, Count: 1}},
		history: &stubHistory{},
		relay:   &stubRelay{},
		cleanup: &stubCleanup{result: &models.CleanupResult{}},
	}
	h := NewAPIHandler(f.sync, f.history, f.relay, f.cleanup, apiKey)
	h.RegisterRoutes(f.echo)
	return f
}

func (f *apiFixture) request(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	f := newAPIFixture("")
	rec := f.request(http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("Expected success=true, got %v", body["success"])
	}
}

func TestAPIKeyGate(t *testing.T) {
	t.Run("Missing Key Rejected Without Side Effects", func(t *testing.T) {
		f := newAPIFixture("secret")
		for _, target := range []string{"/api/sync", "/api/cleanup"} {
			rec := f.request(http.MethodPost, target, "", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", target, rec.Code)
			}
		}
		if f.sync.calls != 0 || f.cleanup.calls != 0 {
			t.Error("Rejected requests must not reach the services")
		}
	})

	t.Run("Wrong Key Rejected", func(t *testing.T) {
		f := newAPIFixture("secret")
		rec := f.request(http.MethodPost, "/api/sync", "", map[string]string{"X-API-Key": "guess"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("Valid Key Accepted", func(t *testing.T) {
		f := newAPIFixture("secret")
		rec := f.request(http.MethodPost, "/api/sync", "", map[string]string{"X-API-Key": "secret"})
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if f.sync.calls != 1 {
			t.Errorf("Expected one sync run, got %d", f.sync.calls)
		}
	})

	t.Run("Empty Key Disables Gate", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodPost, "/api/sync", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})
}

func TestRunSync(t *testing.T) {
	t.Run("Reports Synced And Skipped", func(t *testing.T) {
		f := newAPIFixture("")
		f.sync.result = &models.SyncResult{
			Synced:  []string{"living_room", "bedroom"},
			Skipped: []string{"garage"},
			Count:   2,
		}
		rec := f.request(http.MethodPost, "/api/sync", "", nil)
		body := decodeBody(t, rec)
		if body["success"] != true || body["count"] != float64(2) {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("In Flight Tick Is Skipped Not Failed", func(t *testing.T) {
		f := newAPIFixture("")
		f.sync.err = services.ErrSyncInFlight
		rec := f.request(http.MethodPost, "/api/sync", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != true || body["count"] != float64(0) {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("Store Failure Maps To 503", func(t *testing.T) {
		f := newAPIFixture("")
		f.sync.err = base.NewUnavailableError("sync", errors.New("connection refused"))
		rec := f.request(http.MethodPost, "/api/sync", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != false {
			t.Errorf("Expected success=false, got %v", body["success"])
		}
	})
}

func TestRunCleanup(t *testing.T) {
	t.Run("Days Param Forwarded", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodPost, "/api/cleanup?days=30", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if f.cleanup.lastDays != 30 {
			t.Errorf("Expected days=30, got %d", f.cleanup.lastDays)
		}
	})

	t.Run("Missing Days Falls Back To Default", func(t *testing.T) {
		f := newAPIFixture("")
		f.request(http.MethodPost, "/api/cleanup", "", nil)
		if f.cleanup.lastDays != 90 {
			t.Errorf("Expected default days=90, got %d", f.cleanup.lastDays)
		}
	})
}

func TestListEndpoints(t *testing.T) {
	t.Run("Rooms Success Envelope", func(t *testing.T) {
		f := newAPIFixture("")
		f.history.rooms = []models.Room{{ID: "living_room", Name: "Living Room"}}
		rec := f.request(http.MethodGet, "/api/rooms", "", nil)
		body := decodeBody(t, rec)
		if body["success"] != true || body["count"] != float64(1) {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("Live Data Is Not Cacheable", func(t *testing.T) {
		f := newAPIFixture("")
		for _, target := range []string{"/api/rooms", "/api/sensor-data", "/api/pzem-data", "/api/historical-data", "/api/relay-states"} {
			rec := f.request(http.MethodGet, target, "", nil)
			if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
				t.Errorf("%s: expected no-store Cache-Control, got %q", target, cc)
			}
		}
	})

	t.Run("Failure Envelope Has Empty Data Array", func(t *testing.T) {
		f := newAPIFixture("")
		f.history.err = base.NewUnavailableError("rooms", errors.New("down"))
		rec := f.request(http.MethodGet, "/api/rooms", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		data, ok := body["data"].([]interface{})
		if !ok {
			t.Fatalf("data must be an array, got %T", body["data"])
		}
		if len(data) != 0 {
			t.Errorf("Expected empty data array, got %v", data)
		}
	})

	t.Run("Invalid Time Window Rejected", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodGet, "/api/pzem-data?start=yesterday", "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("Historical Data Forwards Rooms And Mode", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodGet, "/api/historical-data?rooms=living_room,%20bedroom&mode=hourly", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		q := f.history.lastQuery
		if len(q.RoomIDs) != 2 || q.RoomIDs[0] != "living_room" || q.RoomIDs[1] != "bedroom" {
			t.Errorf("Unexpected room filter: %v", q.RoomIDs)
		}
		if q.Mode != models.AggregationHourly {
			t.Errorf("Expected hourly mode, got %q", q.Mode)
		}
	})
}

func TestRelayControl(t *testing.T) {
	t.Run("Valid Request Returns Fresh State", func(t *testing.T) {
		f := newAPIFixture("")
		f.relay.state = &models.RelayState{ID: "living_room_light", RoomID: "living_room", Type: "light", State: true}
		rec := f.request(http.MethodPost, "/api/relay-control",
			`{"roomId":"living_room","type":"light","state":true}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("Expected success=true, got %v", body["success"])
		}
		if f.relay.lastReq == nil || f.relay.lastReq.State == nil || !*f.relay.lastReq.State {
			t.Error("Controller must receive the parsed state")
		}
	})

	t.Run("Missing State Rejected", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodPost, "/api/relay-control",
			`{"roomId":"living_room","type":"light"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
		if f.relay.controls != 0 {
			t.Error("Invalid requests must not reach the service")
		}
	})

	t.Run("Missing Room Rejected", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodPost, "/api/relay-control",
			`{"type":"light","state":true}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("Malformed Body Rejected", func(t *testing.T) {
		f := newAPIFixture("")
		rec := f.request(http.MethodPost, "/api/relay-control", `{"state":"on"`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}
