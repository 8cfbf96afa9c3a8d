// internal/workflow/intake/service.go
package intake

import (
	"context"
	stderrors "errors"

	"whitelist-bot/internal/common/discord"
	"whitelist-bot/internal/common/errors"
	"whitelist-bot/internal/common/logger"
	"whitelist-bot/internal/common/metrics"
	"whitelist-bot/internal/workflow/render"
)

// Poster is the single consumer of the intake queue. It renders each
// accepted application and posts it to the review channel. A failed
// post is abandoned: the webhook caller was already acknowledged, so
// the only record is the log and the abandoned counter.
type Poster struct {
	config  *Config
	gateway discord.Gateway
	logger  logger.Logger
}

func NewPoster(config *Config, gateway discord.Gateway, log logger.Logger) *Poster {
	return &Poster{
		config:  config,
		gateway: gateway,
		logger:  log.WithFields(map[string]interface{}{"component": "intake-poster"}),
	}
}

// Run consumes tasks until the queue closes or the context is
// cancelled. Call it in its own goroutine.
func (p *Poster) Run(ctx context.Context, queue <-chan Task) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-queue:
			if !ok {
				return
			}
			p.post(ctx, task)
		}
	}
}

func (p *Poster) post(ctx context.Context, task Task) {
	log := p.logger.WithFields(map[string]interface{}{
		"taskId":      task.ID,
		"applicantId": task.App.ApplicantID,
	})

	message := render.Render(task.App)

	postCtx, cancel := context.WithTimeout(ctx, p.config.PostTimeout)
	defer cancel()

	posted, err := p.gateway.SendMessage(postCtx, p.config.ReviewChannelID, message)
	if err != nil {
		reason := "send_failed"
		stdErr := errors.NewGatewayCallError("post application", err)
		if stderrors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
			stdErr = errors.NewGatewayTimeoutError("post application")
		}
		metrics.PostsAbandoned.WithLabelValues(reason).Inc()
		log.WithError(stdErr).Error("abandoning application post", nil)
		return
	}

	metrics.ApplicationsPosted.Inc()
	log.Info("posted application to review channel", map[string]interface{}{
		"messageId": posted.ID,
	})
}
