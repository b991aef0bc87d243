package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/services"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/utils"

	"github.com/labstack/echo/v4"
)

// Service contracts consumed by the HTTP layer. The concrete services in the
// services package satisfy them; tests use stubs.

type SyncRunner interface {
	Run() (*models.SyncResult, error)
}

type HistoryProvider interface {
	ListRooms() ([]models.Room, error)
	ListPowerData(start, end time.Time, limit int) ([]models.PzemData, error)
	ListSensorData(start, end time.Time, limit int) ([]models.RoomSensorData, error)
	QuerySeries(q models.SeriesQuery) ([]models.SeriesRow, error)
}

type RelayController interface {
	Control(req *models.RelayControlRequest) (*models.RelayState, error)
	States(relayID, roomID string) ([]models.RelayState, error)
}

type CleanupRunner interface {
	Run(days int) (*models.CleanupResult, error)
	DefaultDays() int
}

// APIHandler handles all dashboard API requests.
type APIHandler struct {
	sync    SyncRunner
	history HistoryProvider
	relay   RelayController
	cleanup CleanupRunner
	apiKey  string
}

// NewAPIHandler creates a new instance of APIHandler. An empty apiKey leaves
// the sync and cleanup endpoints unguarded.
func NewAPIHandler(sync SyncRunner, history HistoryProvider, relay RelayController, cleanup CleanupRunner, apiKey string) *APIHandler {
	return &APIHandler{
		sync:    sync,
		history: history,
		relay:   relay,
		cleanup: cleanup,
		apiKey:  apiKey,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (h *APIHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", h.HealthCheck)

	api.POST("/sync", h.RunSync)
	api.POST("/cleanup", h.RunCleanup)

	api.GET("/rooms", h.GetRooms)
	api.GET("/sensor-data", h.GetSensorData)
	api.GET("/pzem-data", h.GetPzemData)
	api.GET("/historical-data", h.GetHistoricalData)
	api.GET("/relay-states", h.GetRelayStates)

	api.POST("/relay-control", h.RelayControl)
}

// HealthCheck provides a simple health status of the service.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	data := map[string]interface{}{
		"service":   "ecotrack-dashboard",
		"timestamp": time.Now().Unix(),
	}
	return c.JSON(http.StatusOK, utils.SuccessMessage("Service is healthy", data))
}

// ===================================================================
// SYNC & CLEANUP
// ===================================================================

// RunSync executes one sync tick. A tick that is already in flight is skipped,
// not queued.
func (h *APIHandler) RunSync(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, utils.ErrorMessage("invalid or missing API key"))
	}

	result, err := h.sync.Run()
	if err == services.ErrSyncInFlight {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "sync already in progress, tick skipped",
			"synced":  []string{},
			"count":   0,
		})
	}
	if err != nil {
		return c.JSON(statusForError(err), echo.Map{
			"success": false,
			"message": err.Error(),
			"synced":  []string{},
			"count":   0,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"synced":  result.Synced,
		"skipped": result.Skipped,
		"count":   result.Count,
	})
}

// RunCleanup deletes time-series rows older than the retention window.
func (h *APIHandler) RunCleanup(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, utils.ErrorMessage("invalid or missing API key"))
	}

	days := utils.GetIntOrDefault(c.QueryParam("days"), h.cleanup.DefaultDays())
	result, err := h.cleanup.Run(days)
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorMessage(err.Error()))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"deleted": result,
		"days":    days,
	})
}

// ===================================================================
// LIST ENDPOINTS
// ===================================================================

// GetRooms retrieves the room catalog.
func (h *APIHandler) GetRooms(c echo.Context) error {
	setNoStore(c)
	rooms, err := h.history.ListRooms()
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorList(err.Error()))
	}
	return c.JSON(http.StatusOK, utils.SuccessList(rooms, len(rooms)))
}

// GetSensorData retrieves raw room sensor history for the requested window
// (default: the last 24 hours).
func (h *APIHandler) GetSensorData(c echo.Context) error {
	setNoStore(c)

	start, end, err := h.parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorList(err.Error()))
	}
	limit := utils.GetIntOrDefault(c.QueryParam("limit"), 1000)

	readings, err := h.history.ListSensorData(start, end, limit)
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorList(err.Error()))
	}
	return c.JSON(http.StatusOK, utils.SuccessList(readings, len(readings)))
}

// GetPzemData retrieves power meter history for the requested window
// (default: the last 24 hours).
func (h *APIHandler) GetPzemData(c echo.Context) error {
	setNoStore(c)

	start, end, err := h.parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorList(err.Error()))
	}
	limit := utils.GetIntOrDefault(c.QueryParam("limit"), 1000)

	readings, err := h.history.ListPowerData(start, end, limit)
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorList(err.Error()))
	}
	return c.JSON(http.StatusOK, utils.SuccessList(readings, len(readings)))
}

// GetHistoricalData retrieves the aggregated sensor/power projection.
// Query parameters: start, end (default last 24 hours), rooms (CSV of room
// ids), mode (raw or hourly, default raw).
func (h *APIHandler) GetHistoricalData(c echo.Context) error {
	setNoStore(c)

	start, end, err := h.parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorList(err.Error()))
	}

	q := models.SeriesQuery{
		Start: start,
		End:   end,
		Mode:  models.AggregationMode(c.QueryParam("mode")),
	}
	if rooms := c.QueryParam("rooms"); rooms != "" {
		for _, id := range strings.Split(rooms, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.RoomIDs = append(q.RoomIDs, id)
			}
		}
	}

	rows, err := h.history.QuerySeries(q)
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorList(err.Error()))
	}
	return c.JSON(http.StatusOK, utils.SuccessList(rows, len(rows)))
}

// GetRelayStates lists relay rows, optionally filtered by relayId or roomId.
func (h *APIHandler) GetRelayStates(c echo.Context) error {
	setNoStore(c)
	states, err := h.relay.States(c.QueryParam("relayId"), c.QueryParam("roomId"))
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorList(err.Error()))
	}
	return c.JSON(http.StatusOK, utils.SuccessList(states, len(states)))
}

// ===================================================================
// RELAY CONTROL
// ===================================================================

// RelayControl applies an on/off intent to a relay. The request is validated
// before any store access.
func (h *APIHandler) RelayControl(c echo.Context) error {
	var req models.RelayControlRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorMessage("Invalid request body: "+err.Error()))
	}
	if err := utils.ValidateRequired(map[string]string{"roomId": req.RoomID, "type": req.Type}); err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorMessage(err.Error()))
	}
	if req.State == nil {
		return c.JSON(http.StatusBadRequest, utils.ErrorMessage("state is required and must be a boolean"))
	}

	relay, err := h.relay.Control(&req)
	if err != nil {
		return c.JSON(statusForError(err), utils.ErrorMessage(err.Error()))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Relay state updated",
		"relay":   relay,
	})
}

// ===================================================================
// HELPERS
// ===================================================================

// authorized checks the shared-secret header on mutating maintenance
// endpoints. An empty configured key disables the gate.
func (h *APIHandler) authorized(c echo.Context) bool {
	if h.apiKey == "" {
		return true
	}
	return c.Request().Header.Get("X-API-Key") == h.apiKey
}

// parseWindow reads the start/end query parameters, defaulting to the last
// 24 hours and rejecting unparseable or inverted windows.
func (h *APIHandler) parseWindow(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	end, err := utils.ParseTimeParam(c.QueryParam("end"), now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := utils.ParseTimeParam(c.QueryParam("start"), end.Add(-24*time.Hour))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// setNoStore disables caching on live-data responses.
func setNoStore(c echo.Context) {
	header := c.Response().Header()
	header.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")
}
