package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/models"
)

// MonitoringService refreshes the Prometheus state gauges from the database
// on a fixed cadence, so dashboards see pool and bridge totals without every
// scrape hitting the engines.
type MonitoringService struct {
	db            *gorm.DB
	stopCh        chan struct{}
	wg            sync.WaitGroup
	stateInterval time.Duration
	pingInterval  time.Duration
}

// NewMonitoringService creates a monitoring service over the given database
// handle. Queries run read-only and outside any engine transaction.
func NewMonitoringService(db *gorm.DB) *MonitoringService {
	return &MonitoringService{
		db:            db,
		stopCh:        make(chan struct{}),
		stateInterval: 30 * time.Second,
		pingInterval:  10 * time.Second,
	}
}

// Start launches the refresh loops.
func (m *MonitoringService) Start() {
	log.Println("Starting monitoring service")

	m.wg.Add(1)
	go m.connectionLoop()

	m.wg.Add(1)
	go m.stateLoop()
}

// Stop halts the refresh loops and waits for them to exit.
func (m *MonitoringService) Stop() {
	close(m.stopCh)
	m.wg.Wait()
	log.Println("Monitoring service stopped")
}

func (m *MonitoringService) connectionLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.updateConnectionMetrics()
		}
	}
}

func (m *MonitoringService) updateConnectionMetrics() {
	sqlDB, err := m.db.DB()
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		return
	}

	stats := sqlDB.Stats()
	metrics.DBConnectionActive.Set(float64(stats.OpenConnections - stats.Idle))
	metrics.DBConnectionIdle.Set(float64(stats.Idle))

	if err := sqlDB.Ping(); err != nil {
		metrics.DBConnectionStatus.Set(0)
	} else {
		metrics.DBConnectionStatus.Set(1)
	}
}

func (m *MonitoringService) stateLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.stateInterval)
	defer ticker.Stop()

	m.updateEngineState()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.updateEngineState()
		}
	}
}

func (m *MonitoringService) updateEngineState() {
	var count int64

	if err := m.db.Model(&models.Pool{}).Count(&count).Error; err == nil {
		metrics.PoolCount.Set(float64(count))
	}

	if err := m.db.Model(&models.SwapCommitment{}).
		Where("executed = ? AND cancelled = ?", false, false).
		Count(&count).Error; err == nil {
		metrics.OpenSwapCommitments.Set(float64(count))
	}

	var byState []struct {
		State string
		N     int64
	}
	if err := m.db.Model(&models.BridgeTransaction{}).
		Select("state, count(*) as n").
		Group("state").
		Scan(&byState).Error; err == nil {
		metrics.BridgeTransactionsByState.Reset()
		for _, row := range byState {
			metrics.BridgeTransactionsByState.WithLabelValues(row.State).Set(float64(row.N))
		}
	}

	if err := m.db.Model(&models.Relayer{}).
		Where("active = ? AND slashed = ?", true, false).
		Count(&count).Error; err == nil {
		metrics.ActiveRelayers.Set(float64(count))
	}

	if err := m.db.Model(&models.NullifierRecord{}).Count(&count).Error; err == nil {
		metrics.SpentNullifiers.Set(float64(count))
	}

	var cfg models.BridgeConfig
	if err := m.db.Where("id = ?", models.BridgeConfigID).Take(&cfg).Error; err == nil {
		metrics.BridgeValueLocked.Set(float64(cfg.TotalLocked))
		metrics.BridgeValueUnlocked.Set(float64(cfg.TotalUnlocked))
	}
}
