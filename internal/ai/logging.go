package ai

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/utils"
)

const defaultMaxLogLength = 200

// LoggingGenerator wraps a Generator and logs truncated request and response previews.
type LoggingGenerator struct {
	next      Generator
	logger    *zap.Logger
	maxLogLen int
}

// WithLogging decorates next with debug logging.
func WithLogging(next Generator, logger *zap.Logger, maxLogLength int) *LoggingGenerator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LoggingGenerator{next: next, logger: logger, maxLogLen: maxLogLength}
}

func (g *LoggingGenerator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	g.logger.Debug("generate content request",
		zap.Int("system_length", utf8.RuneCountInString(system)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	start := time.Now()
	raw, err := g.next.GenerateContent(ctx, system, message)
	if err != nil {
		g.logger.Debug("generate content failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}

	g.logger.Debug("generate content response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return raw, nil
}
