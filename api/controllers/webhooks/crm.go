package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/MagnumMax/skyluxse-sub003/api/responses"
	"github.com/MagnumMax/skyluxse-sub003/internal/ingest"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

type IngestService interface {
	Ingest(ctx context.Context, payload []byte, signature string) (*ingest.Result, error)
}

type crmResponse struct {
	Status    string `json:"status"`
	PayloadID string `json:"payloadId"`
}

// CRMWebhook receives stage-change deliveries from the CRM. The caller is a
// machine that retries on anything but 2xx, so every accepted delivery must
// answer success even when downstream processing already failed.
func CRMWebhook(svc IngestService, cfg config.WebhookConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingest service unavailable"))
			return
		}

		// MaxBytesReader guards the read itself; the service re-checks the
		// ceiling so the limit holds for every entry point.
		reader := http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes)
		payload, err := io.ReadAll(reader)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "webhook payload exceeds size ceiling"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading request body"))
			return
		}

		result, err := svc.Ingest(ctx, payload, r.Header.Get(cfg.SignatureHeader))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := crmResponse{Status: "logged", PayloadID: result.Event.ID.String()}
		switch {
		case result.Duplicate:
			resp.Status = "duplicate"
			responses.WriteSuccess(w, resp)
		case result.Deferred:
			resp.Status = "deferred"
			responses.WriteSuccessStatus(w, http.StatusAccepted, resp)
		default:
			responses.WriteSuccess(w, resp)
		}
	}
}
