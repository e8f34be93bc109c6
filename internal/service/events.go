package service

import (
	"context"
	"time"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"

	"github.com/google/uuid"
)

// recordEvent appends an audit entry. The command it describes has already
// taken effect, so a storage failure is logged rather than returned.
func recordEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, typ, desc string, meta map[string]any) {
	ev := models.ControlEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}
	if err := repo.Append(ctx, ev); err != nil {
		log.Errorw("event_append_failed", "type", typ, "error", err)
	}
}
