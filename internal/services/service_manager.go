package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/logic-quiz-service/internal/events"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/storage"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators and rules shared by the services
type ServiceManagerConfig struct {
	// DefaultTimeLimitMinutes applies to levels without stored settings
	DefaultTimeLimitMinutes int

	Publisher events.EventPublisher
	Images    storage.ImageResolver
	Metrics   MetricsRecorder
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	questionBankService QuestionBankService
	sessionService      SessionService
	scoringService      ScoringService
	resultService       ResultService
	adminService        AdminService
	exportService       ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.Publisher == nil {
		config.Publisher = events.NoopEventPublisher{}
	}
	if config.Images == nil {
		config.Images = storage.PassthroughResolver{}
	}
	if config.Metrics == nil {
		config.Metrics = noopRecorder{}
	}

	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}

	sm.logger.Info("Initializing service manager")

	sm.questionBankService = NewQuestionBankService(sm.repo, sm.logger, sm.validator, sm.config.Publisher, sm.config.Images)
	sm.resultService = NewResultService(sm.repo, sm.logger)
	sm.sessionService = NewSessionService(sm.repo, sm.questionBankService, sm.logger, sm.config.DefaultTimeLimitMinutes)
	sm.scoringService = NewScoringService(sm.repo, sm.questionBankService, sm.sessionService, sm.resultService, sm.config.Publisher, sm.config.Metrics, sm.logger)
	sm.adminService = NewAdminService(sm.repo, sm.questionBankService, sm.resultService, sm.config.Publisher, sm.logger, sm.validator, sm.config.DefaultTimeLimitMinutes)
	sm.exportService = NewExportService(sm.resultService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	sm.warnEmptyLevels(ctx)

	return nil
}

// warnEmptyLevels flags levels a test taker could start but never score on
func (sm *serviceManager) warnEmptyLevels(ctx context.Context) {
	for _, level := range models.AllLevels() {
		count, err := sm.repo.Question().CountActiveByLevel(ctx, nil, level)
		if err != nil {
			sm.logger.Warn("Failed to count active questions", "level", level, "error", err)
			continue
		}
		if count == 0 {
			sm.logger.Warn("Level has no active questions", "level", level)
		}
	}
}

// Service getters
func (sm *serviceManager) QuestionBank() QuestionBankService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.questionBankService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.sessionService
}

func (sm *serviceManager) Scoring() ScoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.scoringService
}

func (sm *serviceManager) Result() ResultService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.resultService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.adminService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. Storage connections belong to the repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")
	sm.shutdown = true

	if err := sm.config.Publisher.Close(); err != nil {
		return fmt.Errorf("failed to close event publisher: %w", err)
	}

	sm.logger.Info("Service manager shutdown completed")
	return nil
}
