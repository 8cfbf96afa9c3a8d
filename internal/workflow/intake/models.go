// internal/workflow/intake/models.go
package intake

import (
	"time"

	"whitelist-bot/internal/models"
)

// Task is one accepted payload queued for posting. The correlation id
// ties handler-side and poster-side log lines together; it has no
// meaning beyond this process.
type Task struct {
	ID         string
	App        models.Application
	ReceivedAt time.Time
}

type acceptedResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
