// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/allisson/citadel/internal/audit"
	"github.com/allisson/citadel/internal/config"
	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	"github.com/allisson/citadel/internal/keystore/repository"
	"github.com/allisson/citadel/internal/keystore/service"
	"github.com/allisson/citadel/internal/keystore/usecase"
	"github.com/allisson/citadel/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger

	// Crypto engine
	engine *envelopeService.Engine

	// Repositories
	keyRepo    usecase.KeyRepository
	policyRepo usecase.PolicyRepository

	// Audit
	auditSink usecase.AuditSink

	// Adaptive threat scoring and policy adaptation
	threatAssessor *service.ThreatAssessor
	policyAdapter  usecase.PolicyAdapter

	// Orchestration
	keystore *usecase.Keystore
	sweeper  *usecase.Sweeper

	// Metrics
	metricsProvider *metrics.Provider
	securityMetrics metrics.SecurityMetrics

	mu                  sync.Mutex
	loggerInit          sync.Once
	engineInit          sync.Once
	keyRepoInit         sync.Once
	policyRepoInit      sync.Once
	auditSinkInit       sync.Once
	threatAssessorInit  sync.Once
	policyAdapterInit   sync.Once
	keystoreInit        sync.Once
	sweeperInit         sync.Once
	metricsProviderInit sync.Once
	securityMetricsInit sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Engine returns the hybrid envelope engine.
func (c *Container) Engine() *envelopeService.Engine {
	c.engineInit.Do(func() {
		c.engine = envelopeService.NewEngine()
	})
	return c.engine
}

// KeyRepository returns the file-backed key metadata repository.
func (c *Container) KeyRepository() (usecase.KeyRepository, error) {
	var err error
	c.keyRepoInit.Do(func() {
		c.keyRepo, err = repository.NewFileKeyRepository(filepath.Join(c.config.StorageDir, "keys"))
		if err != nil {
			c.initErrors["keyRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["keyRepo"]; exists {
		return nil, storedErr
	}
	return c.keyRepo, nil
}

// PolicyRepository returns the in-memory policy repository. Policies are
// few and operator-managed, so durability beyond the process lifetime is
// not required the way key metadata durability is.
func (c *Container) PolicyRepository() usecase.PolicyRepository {
	c.policyRepoInit.Do(func() {
		c.policyRepo = repository.NewMemoryPolicyRepository()
	})
	return c.policyRepo
}

// AuditSink returns the composite audit sink: a hash-chained file log,
// mirrored into structured logs for operator visibility.
func (c *Container) AuditSink() (usecase.AuditSink, error) {
	var err error
	c.auditSinkInit.Do(func() {
		c.auditSink, err = c.initAuditSink()
		if err != nil {
			c.initErrors["auditSink"] = err
		}
	})
	if storedErr, exists := c.initErrors["auditSink"]; exists {
		return nil, storedErr
	}
	return c.auditSink, nil
}

// ThreatAssessor returns the adaptive threat assessor, wired to the audit
// sink so every escalation/de-escalation is itself recorded.
func (c *Container) ThreatAssessor() (*service.ThreatAssessor, error) {
	var err error
	c.threatAssessorInit.Do(func() {
		c.threatAssessor, err = c.initThreatAssessor()
		if err != nil {
			c.initErrors["threatAssessor"] = err
		}
	})
	if storedErr, exists := c.initErrors["threatAssessor"]; exists {
		return nil, storedErr
	}
	return c.threatAssessor, nil
}

// PolicyAdapter returns the stateless threat-to-policy adapter.
func (c *Container) PolicyAdapter() usecase.PolicyAdapter {
	c.policyAdapterInit.Do(func() {
		c.policyAdapter = service.NewPolicyAdapter()
	})
	return c.policyAdapter
}

// Keystore returns the keystore facade, the single orchestration point for
// every key lifecycle and crypto operation.
func (c *Container) Keystore() (*usecase.Keystore, error) {
	var err error
	c.keystoreInit.Do(func() {
		c.keystore, err = c.initKeystore()
		if err != nil {
			c.initErrors["keystore"] = err
		}
	})
	if storedErr, exists := c.initErrors["keystore"]; exists {
		return nil, storedErr
	}
	return c.keystore, nil
}

// Sweeper returns the expiration and adaptive-rotation sweeper.
func (c *Container) Sweeper() (*usecase.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		c.sweeper, err = c.initSweeper()
		if err != nil {
			c.initErrors["sweeper"] = err
		}
	})
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// MetricsProvider returns the OpenTelemetry/Prometheus metrics provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// SecurityMetrics returns the composite security score gauges, or a no-op
// implementation when metrics are disabled in configuration.
func (c *Container) SecurityMetrics() (metrics.SecurityMetrics, error) {
	var err error
	c.securityMetricsInit.Do(func() {
		c.securityMetrics, err = c.initSecurityMetrics()
		if err != nil {
			c.initErrors["securityMetrics"] = err
		}
	})
	if storedErr, exists := c.initErrors["securityMetrics"]; exists {
		return nil, storedErr
	}
	return c.securityMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}
	return nil
}

func (c *Container) initLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.config.SlogLevel()})
	return slog.New(handler)
}

func (c *Container) initAuditSink() (usecase.AuditSink, error) {
	if err := os.MkdirAll(filepath.Dir(c.config.AuditLogPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	fileSink, err := audit.NewFileSink(c.config.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	chained, err := audit.NewChainedSink(context.Background(), fileSink)
	if err != nil {
		return nil, fmt.Errorf("failed to resume audit chain: %w", err)
	}

	tracing := audit.NewTracingSink(c.Logger())
	return audit.NewMultiSink(chained, tracing), nil
}

func (c *Container) initThreatAssessor() (*service.ThreatAssessor, error) {
	auditSink, err := c.AuditSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit sink for threat assessor: %w", err)
	}
	return service.NewThreatAssessor(nil).
		WithAuditSink(auditSink).
		WithWindow(c.config.ThreatWindow).
		WithHysteresis(c.config.ThreatHysteresis).
		WithDecayRate(1 - c.config.ThreatDecayRatePerMin), nil
}

func (c *Container) initKeystore() (*usecase.Keystore, error) {
	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for keystore: %w", err)
	}
	auditSink, err := c.AuditSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit sink for keystore: %w", err)
	}
	threatAssessor, err := c.ThreatAssessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get threat assessor for keystore: %w", err)
	}

	return usecase.New(
		c.Engine(),
		keyRepo,
		c.PolicyRepository(),
		auditSink,
		threatAssessor,
		c.PolicyAdapter(),
	), nil
}

func (c *Container) initSweeper() (*usecase.Sweeper, error) {
	keystore, err := c.Keystore()
	if err != nil {
		return nil, fmt.Errorf("failed to get keystore for sweeper: %w", err)
	}
	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for sweeper: %w", err)
	}
	auditSink, err := c.AuditSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit sink for sweeper: %w", err)
	}
	threatAssessor, err := c.ThreatAssessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get threat assessor for sweeper: %w", err)
	}

	return usecase.NewSweeper(
		keystore,
		keyRepo,
		c.PolicyRepository(),
		auditSink,
		threatAssessor,
		c.PolicyAdapter(),
		c.Logger(),
	), nil
}

func (c *Container) initSecurityMetrics() (metrics.SecurityMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpSecurityMetrics(), nil
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for security metrics: %w", err)
	}
	return metrics.NewSecurityMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}
