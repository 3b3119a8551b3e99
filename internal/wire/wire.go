// Package wire provides dependency injection for the sift application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/sift/internal/adapters/braintrust"
	"github.com/example/sift/internal/adapters/llm"
	"github.com/example/sift/internal/adapters/sqlite"
	"github.com/example/sift/internal/app"
	"github.com/example/sift/internal/config"
	"github.com/example/sift/internal/db"
	"github.com/example/sift/internal/ports/primary"
)

var (
	tagService        primary.TagService
	traceService      primary.TraceService
	annotationService primary.AnnotationService
	sessionService    primary.SessionService
	syncService       primary.SyncService
	promptService     primary.PromptService
	loadedConfig      *config.Config
	once              sync.Once
)

// TagService returns the singleton TagService instance.
func TagService() primary.TagService {
	once.Do(initServices)
	return tagService
}

// TraceService returns the singleton TraceService instance.
func TraceService() primary.TraceService {
	once.Do(initServices)
	return traceService
}

// AnnotationService returns the singleton AnnotationService instance.
func AnnotationService() primary.AnnotationService {
	once.Do(initServices)
	return annotationService
}

// SessionService returns the singleton SessionService instance.
func SessionService() primary.SessionService {
	once.Do(initServices)
	return sessionService
}

// SyncService returns the singleton SyncService instance.
func SyncService() primary.SyncService {
	once.Do(initServices)
	return syncService
}

// PromptService returns the singleton PromptService instance.
func PromptService() primary.PromptService {
	once.Do(initServices)
	return promptService
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return loadedConfig
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	loadedConfig = cfg

	// Create repository adapters (secondary ports)
	tagRepo := sqlite.NewTagRepository(database)
	traceRepo := sqlite.NewTraceRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)

	// External collaborators. Credentials are resolved lazily enough
	// that local-only commands never touch them; a missing key fails at
	// the first sync or prompt call, not here.
	btClient := braintrust.NewClient(cfg.BraintrustBaseURL, cfg.ResolveBraintrustKey(), cfg.ExperimentID)
	generator := llm.NewOpenAIGenerator(cfg.ResolveOpenAIKey(), cfg.OpenAIModel)

	// Create services (primary ports implementation)
	tagService = app.NewTagService(tagRepo, traceRepo)
	traceService = app.NewTraceService(traceRepo)
	annotationService = app.NewAnnotationService(traceRepo, tagRepo)
	sessionService = app.NewSessionService(sessionRepo, traceRepo, tagRepo)
	syncService = app.NewSyncService(btClient, btClient, traceRepo, tagRepo)
	promptService = app.NewPromptService(tagRepo, traceRepo, generator)
}
