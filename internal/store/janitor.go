package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// RunJanitor expires sessions idle for longer than ttl every interval until ctx
// is done. A non-positive ttl or interval disables expiry.
func RunJanitor(ctx context.Context, st interview.Store, ttl, interval time.Duration, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 || interval <= 0 {
		log.Info("session expiry disabled")
		<-ctx.Done()
		return nil
	}

	log.Info("session janitor started", zap.Duration("ttl", ttl), zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := st.Expire(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn("expiring sessions failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("expired idle sessions", zap.Int("count", removed))
			}
		}
	}
}
