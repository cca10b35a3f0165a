package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/analysis"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/store"
)

// newGenerator builds the configured generative backend. Any problem degrades to
// ai.Unavailable so interviews still run on fallback text; the returned name is
// empty in that case.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, string) {
	if cfg == nil {
		log.Warn("ai configuration is missing; replies use fallback text")
		return ai.Unavailable{}, ""
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case gemini.Provider:
	case "", "none":
		log.Warn("generative backend is disabled; replies use fallback text")
		return ai.Unavailable{}, ""
	default:
		log.Warn("unsupported ai provider; replies use fallback text", zap.String("provider", cfg.Provider))
		return ai.Unavailable{}, ""
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		log.Warn("gemini is not available; replies use fallback text",
			zap.Error(err),
			zap.String("hint", "set GOOGLE_GENERATIVE_AI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
		return ai.Unavailable{}, ""
	}

	genLogger := logger.WithFields(log, logger.CommonFields(gemini.Provider, gcfg.Model)...).
		With(zap.Int("ai_retry_attempts", gcfg.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, genLogger)
	if err != nil {
		log.Warn("creating gemini client failed; replies use fallback text", zap.Error(err))
		return ai.Unavailable{}, ""
	}

	return ai.WithLogging(generator, genLogger, gcfg.MaxLogLength), gemini.Provider
}

// newAnalyzer loads the keyword table and the regression model. A missing model
// is logged and scoring falls back to the fixed score.
func newAnalyzer(cfg AnalysisConfig, log *zap.Logger) (*analysis.Analyzer, error) {
	keywords, err := analysis.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	var model analysis.Predictor
	booster, err := analysis.LoadBooster(cfg.ModelPath)
	switch {
	case err == nil:
		model = booster
		log.Info("regression model loaded", zap.String("path", cfg.ModelPath), zap.Int("trees", booster.Trees()))
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("regression model not found; scores fall back to the default", zap.String("path", cfg.ModelPath))
	default:
		log.Warn("regression model could not be loaded; scores fall back to the default",
			zap.String("path", cfg.ModelPath),
			zap.Error(err),
		)
	}

	return analysis.NewAnalyzer(analysis.NewExtractor(keywords), analysis.NewScorer(model, log), log), nil
}

// newStore opens the configured session store. The returned close function is never nil.
func newStore(cfg StorageConfig, log *zap.Logger) (interview.Store, func() error, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Driver)) {
	case "", "memory":
		log.Info("using in-memory session store")
		return store.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("using sqlite session store", zap.String("path", cfg.SQLitePath))
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
