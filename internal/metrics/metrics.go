package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Database connection metrics
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	DBConnectionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_db_connection_active",
		Help: "Number of active database connections",
	})

	DBConnectionIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_db_connection_idle",
		Help: "Number of idle database connections",
	})

	// ============================================
	// Event stream metrics
	// ============================================
	EventStreamConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_event_stream_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_events_published_total",
			Help: "Total number of domain events published to the stream",
		},
		[]string{"kind"},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_event_publish_failures_total",
			Help: "Total number of domain events that failed to publish",
		},
		[]string{"kind"},
	)

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_websocket_clients",
		Help: "Number of connected websocket event subscribers",
	})

	// ============================================
	// Engine operation metrics
	// ============================================
	SwapOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_swap_operations_total",
			Help: "Total number of swap engine operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	BridgeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_bridge_operations_total",
			Help: "Total number of bridge engine operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zkdex_operation_duration_seconds",
			Help:    "Engine operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProofVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_proof_verifications_total",
			Help: "Total number of proof verifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// ============================================
	// Engine state metrics, refreshed by the monitoring service
	// ============================================
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_pools",
		Help: "Number of liquidity pools",
	})

	OpenSwapCommitments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_swap_commitments_open",
		Help: "Number of swap commitments awaiting execution or cancellation",
	})

	BridgeTransactionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zkdex_bridge_transactions",
			Help: "Number of bridge transactions by lifecycle state",
		},
		[]string{"state"},
	)

	ActiveRelayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_active_relayers",
		Help: "Number of relayers eligible to confirm bridge transactions",
	})

	SpentNullifiers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_spent_nullifiers",
		Help: "Number of consumed unlock nullifiers",
	})

	BridgeValueLocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_bridge_value_locked",
		Help: "Cumulative amount locked into the bridge",
	})

	BridgeValueUnlocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zkdex_bridge_value_unlocked",
		Help: "Cumulative amount released by the bridge",
	})

	// ============================================
	// Treasury client metrics
	// ============================================
	TreasuryTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkdex_treasury_transfers_total",
			Help: "Total number of treasury transfer calls by outcome",
		},
		[]string{"outcome"},
	)

	TreasuryTransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zkdex_treasury_transfer_duration_seconds",
		Help:    "Treasury transfer call duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
