package services

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/database"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
)

// ErrSyncInFlight is returned when a tick fires while the previous one is
// still running. The new tick is skipped entirely, never queued.
var ErrSyncInFlight = errors.New("sync already in progress")

// SnapshotSource reads the current value per logical source from the
// realtime store. The Redis client satisfies this.
type SnapshotSource interface {
	GetRoomSnapshot(roomID string) (*models.RoomSnapshot, error)
	GetPowerSnapshot(meterID string) (*models.PowerSnapshot, error)
}

// SyncService copies the realtime store snapshot into the relational store.
// One Run is one tick: read every configured source, transform, persist all
// rows in a single transaction.
type SyncService struct {
	db      *database.Database
	source  SnapshotSource
	roomIDs []string
	meterID string
	logger  *slog.Logger

	running atomic.Bool
}

// NewSyncService creates a new SyncService.
func NewSyncService(db *database.Database, source SnapshotSource, roomIDs []string, meterID string, logger *slog.Logger) *SyncService {
	return &SyncService{
		db:      db,
		source:  source,
		roomIDs: roomIDs,
		meterID: meterID,
		logger:  logger.With("component", "sync"),
	}
}

// Run executes one sync tick. Individual sources that cannot be read are
// skipped and reported; a relational store failure aborts the whole tick with
// nothing committed.
func (s *SyncService) Run() (*models.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInFlight
	}
	defer s.running.Store(false)

	result := &models.SyncResult{Synced: []string{}, Skipped: []string{}}

	type roomReading struct {
		room    models.Room
		reading models.RoomSensorData
	}
	roomReadings := make([]roomReading, 0, len(s.roomIDs))

	for _, roomID := range s.roomIDs {
		snapshot, err := s.source.GetRoomSnapshot(roomID)
		if err != nil {
			s.logger.Warn("Skipping room: snapshot unavailable", "roomId", roomID, slog.Any("error", err))
			result.Skipped = append(result.Skipped, roomID)
			continue
		}
		if err := snapshot.Validate(); err != nil {
			s.logger.Warn("Skipping room: invalid snapshot", "roomId", roomID, slog.Any("error", err))
			result.Skipped = append(result.Skipped, roomID)
			continue
		}

		name := snapshot.Name
		if name == "" {
			name = roomID
		}
		roomReadings = append(roomReadings, roomReading{
			room: models.Room{
				ID:    roomID,
				Name:  name,
				Floor: snapshot.Floor,
				Type:  snapshot.Type,
			},
			reading: models.RoomSensorData{
				RoomID:      roomID,
				Temperature: snapshot.Temperature,
				Humidity:    snapshot.Humidity,
				Light:       snapshot.Light,
				Motion:      snapshot.Motion,
				Timestamp:   snapshot.Timestamp.Time,
			},
		})
	}

	var powerReading *models.PzemData
	powerSnapshot, err := s.source.GetPowerSnapshot(s.meterID)
	if err != nil {
		s.logger.Warn("Skipping power meter: snapshot unavailable", "meterId", s.meterID, slog.Any("error", err))
		result.Skipped = append(result.Skipped, s.meterID)
	} else if err := powerSnapshot.Validate(); err != nil {
		s.logger.Warn("Skipping power meter: invalid snapshot", "meterId", s.meterID, slog.Any("error", err))
		result.Skipped = append(result.Skipped, s.meterID)
	} else {
		powerReading = &models.PzemData{
			Current:     powerSnapshot.Current,
			Voltage:     powerSnapshot.Voltage,
			Power:       powerSnapshot.Power,
			Energy:      powerSnapshot.Energy,
			Frequency:   powerSnapshot.Frequency,
			PowerFactor: powerSnapshot.PowerFactor,
			Timestamp:   powerSnapshot.Timestamp.Time,
		}
	}

	if len(roomReadings) == 0 && powerReading == nil {
		s.logger.Info("Sync tick finished: no reachable sources")
		return result, nil
	}

	tx := s.db.UoW.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			s.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	// Catalog rows go in first so every reading's foreign key is satisfiable.
	readings := make([]models.RoomSensorData, 0, len(roomReadings))
	for i := range roomReadings {
		rr := &roomReadings[i]
		if err := s.db.RoomRepo.UpsertRoom(tx, &rr.room); err != nil {
			s.db.UoW.Rollback(tx)
			return nil, err
		}
		readings = append(readings, rr.reading)
	}

	if err := s.db.SensorRepo.BatchInsert(tx, readings); err != nil {
		s.db.UoW.Rollback(tx)
		return nil, err
	}

	if powerReading != nil {
		if err := s.db.PowerRepo.Insert(tx, powerReading); err != nil {
			s.db.UoW.Rollback(tx)
			return nil, err
		}
	}

	if err := s.db.UoW.Commit(tx); err != nil {
		return nil, err
	}

	for _, rr := range roomReadings {
		result.Synced = append(result.Synced, rr.room.ID)
	}
	if powerReading != nil {
		result.Synced = append(result.Synced, s.meterID)
	}
	result.Count = len(result.Synced)

	s.logger.Info("Sync tick finished", "synced", result.Count, "skipped", len(result.Skipped))
	return result, nil
}

// StartScheduler runs the sync pipeline on a fixed interval until done is
// closed. Overlapping ticks are skipped by the guard in Run.
func (s *SyncService) StartScheduler(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				s.logger.Info("Sync scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.Run(); err != nil && !errors.Is(err, ErrSyncInFlight) {
					s.logger.Error("Scheduled sync tick failed", slog.Any("error", err))
				}
			}
		}
	}()
	s.logger.Info("Sync scheduler started", "interval", interval.String())
}
