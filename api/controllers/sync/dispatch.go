package sync

import (
	"context"
	"net/http"

	"github.com/MagnumMax/skyluxse-sub003/api/responses"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
)

type BatchRunner interface {
	RunBatch(ctx context.Context) (outbox.Stats, error)
}

type dispatchResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// TriggerDispatch runs one outbox batch on demand. An external scheduler
// drives this endpoint between the dispatcher's own polls.
func TriggerDispatch(runner BatchRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stats, err := runner.RunBatch(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, dispatchResponse{
			Processed: stats.Claimed,
			Succeeded: stats.Succeeded,
			Failed:    stats.Retried + stats.Exhausted,
		})
	}
}
