// Package app wires configuration, storage, crypto and services into one
// container the server entrypoint and routes share.
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"zkdex-backend/internal/clients"
	"zkdex-backend/internal/config"
	"zkdex-backend/internal/db"
	"zkdex-backend/internal/events"
	"zkdex-backend/internal/repository"
	"zkdex-backend/internal/services"
	"zkdex-backend/internal/zkp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ServiceContainer holds every long-lived dependency of the server
type ServiceContainer struct {
	DB    *gorm.DB
	Store repository.Store

	// Crypto
	Scheme   zkp.CommitmentScheme
	Verifier zkp.ProofVerifier

	// External collaborators
	Transfer  services.TransferAgent
	Publisher *events.NATSPublisher
	Hub       *events.Hub

	// Engines
	SwapService   *services.SwapService
	BridgeService *services.BridgeService

	Monitoring *services.MonitoringService

	Logger *logrus.Logger
}

// Global service container instance
var Container *ServiceContainer
var containerOnce sync.Once

// InitializeContainer builds the container once. The database must be
// initialized first.
func InitializeContainer() (*ServiceContainer, error) {
	var initErr error

	containerOnce.Do(func() {
		log.Println("Initializing service container")

		container := &ServiceContainer{
			DB:     db.DB,
			Logger: logrus.New(),
		}
		if container.DB != nil {
			container.Store = repository.NewStore(container.DB)
		} else {
			// The memory driver leaves db.DB nil; engines run against the
			// in-process store instead.
			container.Store = repository.NewMemoryStore()
		}

		if err := container.initCrypto(); err != nil {
			initErr = fmt.Errorf("failed to initialize crypto backend: %w", err)
			return
		}
		container.initTransferAgent()
		container.initEventSinks()
		container.initEngines()

		if container.DB != nil {
			container.Monitoring = services.NewMonitoringService(container.DB)
			container.Monitoring.Start()
		}

		Container = container
		log.Println("Service container initialized")
	})

	return Container, initErr
}

// initCrypto selects the commitment scheme and proof verifier. The pedersen
// profile compiles the unlock circuit and loads or generates Groth16 keys;
// the stub profile mirrors the placeholder derivations of the reference
// contracts and verifies structure only.
func (c *ServiceContainer) initCrypto() error {
	scheme := "pedersen"
	keysDir := "keys"
	if config.AppConfig != nil {
		scheme = config.AppConfig.Crypto.Scheme
		keysDir = config.AppConfig.Crypto.KeysDir
	}

	switch scheme {
	case "stub":
		c.Scheme = zkp.NewStubScheme()
		c.Verifier = zkp.NewStubVerifier()
		log.Println("Crypto backend: structural stub")
	default:
		ccs, err := zkp.CompileUnlockCircuit()
		if err != nil {
			return fmt.Errorf("compile unlock circuit: %w", err)
		}
		_, vk, err := zkp.SetupOrLoadKeys(ccs,
			filepath.Join(keysDir, "unlock.pk"),
			filepath.Join(keysDir, "unlock.vk"))
		if err != nil {
			return fmt.Errorf("load groth16 keys: %w", err)
		}
		c.Scheme = zkp.NewPedersenScheme()
		c.Verifier = zkp.NewBN254Verifier(vk)
		log.Println("Crypto backend: pedersen commitments with groth16 unlock relation")
	}
	return nil
}

// initTransferAgent wires the treasury client when an endpoint is
// configured, otherwise a no-op agent for development.
func (c *ServiceContainer) initTransferAgent() {
	if config.AppConfig != nil && config.AppConfig.Treasury.BaseURL != "" {
		c.Transfer = clients.NewTreasuryClient(config.AppConfig.Treasury)
		log.Println("Transfer agent: treasury client")
		return
	}
	c.Transfer = services.NopTransferAgent{}
	log.Println("Transfer agent: no-op (no treasury endpoint configured)")
}

// initEventSinks always builds the websocket hub; the NATS publisher is
// optional and a connection failure downgrades to hub-only publishing.
func (c *ServiceContainer) initEventSinks() {
	c.Hub = events.NewHub()

	if config.AppConfig == nil || config.AppConfig.NATS.URL == "" {
		return
	}
	publisher, err := events.NewNATSPublisher(
		config.AppConfig.NATS.URL,
		config.AppConfig.NATS.StreamName,
		config.AppConfig.NATSConnectTimeout(),
	)
	if err != nil {
		log.Printf("NATS publisher unavailable, events go to websocket clients only: %v", err)
		return
	}
	c.Publisher = publisher
}

func (c *ServiceContainer) initEngines() {
	var sink services.EventSink
	if c.Publisher != nil {
		sink = events.NewMultiSink(c.Publisher, c.Hub)
	} else {
		sink = c.Hub
	}

	c.SwapService = services.NewSwapService(c.Store, c.Scheme, c.Verifier, c.Transfer, sink)
	c.BridgeService = services.NewBridgeService(c.Store, c.Scheme, c.Verifier, c.Transfer, sink)

	if config.AppConfig != nil && config.AppConfig.Bridge.RefundWindowHours > 0 {
		c.BridgeService.SetRefundWindow(config.AppConfig.RefundWindow())
	}
}

// Shutdown releases external connections
func (c *ServiceContainer) Shutdown() {
	if c.Monitoring != nil {
		c.Monitoring.Stop()
	}
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	db.CloseDB()
}
