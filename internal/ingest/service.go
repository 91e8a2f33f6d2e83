package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MagnumMax/skyluxse-sub003/internal/stages"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

// StageApplier moves a booking to the lifecycle state a translated stage
// demands. Implemented by the bookings service.
type StageApplier interface {
	ApplyStage(ctx context.Context, dealID string, mapping stages.Mapping, vehicleRef string) error
}

// Result reports how one webhook delivery was handled.
type Result struct {
	Event     *models.IngestedEvent
	Duplicate bool
	Deferred  bool
}

type ServiceParams struct {
	Config     config.WebhookConfig
	Flags      config.FeatureFlagsConfig
	Repo       Repository
	Classifier *Classifier
	Bookings   StageApplier
	Logger     *logger.Logger
}

// Service is the webhook ingestion pipeline: authenticate, persist, classify,
// act. The event row is written before any side effect so a crash mid-pipeline
// never loses the delivery.
type Service struct {
	cfg        config.WebhookConfig
	flags      config.FeatureFlagsConfig
	repo       Repository
	classifier *Classifier
	bookings   StageApplier
	logg       *logger.Logger

	externalID *Extractor
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ingest service requires a repository")
	}
	if params.Classifier == nil {
		return nil, fmt.Errorf("ingest service requires a classifier")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("ingest service requires a logger")
	}
	return &Service{
		cfg:        params.Config,
		flags:      params.Flags,
		repo:       params.Repo,
		classifier: params.Classifier,
		bookings:   params.Bookings,
		logg:       params.Logger,
		externalID: NewExtractor(
			DirectField{Path: []string{"event_id"}},
			DirectField{Path: []string{"id"}},
			DirectField{Path: []string{"uuid"}},
		),
	}, nil
}

// Ingest runs the full pipeline for one raw delivery. Signature and size
// failures are returned as coded errors before anything is stored; once the
// event row exists, downstream failures are recorded on the row instead of
// being raised, so the caller can always acknowledge the delivery.
func (s *Service) Ingest(ctx context.Context, payload []byte, signature string) (*Result, error) {
	if s.cfg.MaxBodyBytes > 0 && int64(len(payload)) > s.cfg.MaxBodyBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "webhook payload exceeds size ceiling")
	}
	if !VerifySignature(payload, s.cfg.Secret, signature) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}

	var doc map[string]any
	parseErr := json.Unmarshal(payload, &doc)

	externalID, ok := s.externalID.Extract(doc)
	if !ok {
		// Still worth keeping; a synthetic id preserves the delivery at the
		// cost of replay protection for this one payload.
		externalID = "synthetic-" + uuid.NewString()
	}

	event := &models.IngestedEvent{
		ExternalID:        externalID,
		RawPayload:        payload,
		SignatureVerified: true,
		ProcessingStatus:  enums.IngestStatusReceived,
	}

	created, err := s.repo.InsertIfNew(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting ingested event")
	}
	ctx = s.logg.WithEventID(ctx, externalID)
	if !created {
		s.logg.Info(ctx, "duplicate webhook delivery ignored")
		stored, findErr := s.repo.FindByExternalID(ctx, externalID)
		if findErr != nil {
			stored = event
		}
		return &Result{Event: stored, Duplicate: true}, nil
	}
	s.logg.Info(ctx, "webhook event logged")

	if parseErr != nil {
		reason := "payload is not valid JSON"
		if err := s.repo.UpdateClassification(ctx, event.ID, enums.IngestStatusFailed, "", "", &reason); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording malformed payload")
		}
		event.ProcessingStatus = enums.IngestStatusFailed
		s.logg.Warn(ctx, "webhook payload did not decode")
		return &Result{Event: event}, nil
	}

	classification := s.classifier.Classify(event)
	switch classification.Action {
	case ActionDefer:
		if err := s.finish(ctx, event, enums.IngestStatusIgnoredPending, classification, nil); err != nil {
			return nil, err
		}
		s.logg.Info(ctx, "event deferred, booking not yet confirmed")
		return &Result{Event: event, Deferred: true}, nil

	case ActionTranslate:
		return s.translate(ctx, event, classification)

	default:
		if err := s.finish(ctx, event, enums.IngestStatusProcessed, classification, nil); err != nil {
			return nil, err
		}
		s.logg.Info(ctx, "event carries no stage, nothing to apply")
		return &Result{Event: event}, nil
	}
}

func (s *Service) translate(ctx context.Context, event *models.IngestedEvent, classification Classification) (*Result, error) {
	ctx = s.logg.WithField(ctx, "stage_id", classification.StageID)

	if !s.flags.StatusSyncEnabled || s.bookings == nil {
		if err := s.finish(ctx, event, enums.IngestStatusProcessed, classification, nil); err != nil {
			return nil, err
		}
		s.logg.Info(ctx, "status sync disabled, stage translation logged only")
		return &Result{Event: event}, nil
	}

	if classification.DealID == "" {
		reason := "payload carries no deal reference"
		if err := s.finish(ctx, event, enums.IngestStatusFailed, classification, &reason); err != nil {
			return nil, err
		}
		s.logg.Warn(ctx, "stage translation skipped, no deal reference")
		return &Result{Event: event}, nil
	}

	if classification.Stage.NeedsReview {
		s.logg.Warn(ctx, "unmapped stage routed to fallback")
	}

	if applyErr := s.bookings.ApplyStage(ctx, classification.DealID, classification.Stage, classification.VehicleRef); applyErr != nil {
		reason := applyErr.Error()
		if err := s.finish(ctx, event, enums.IngestStatusFailed, classification, &reason); err != nil {
			return nil, err
		}
		s.logg.Error(ctx, "applying translated stage", applyErr)
		return &Result{Event: event}, nil
	}

	if err := s.finish(ctx, event, enums.IngestStatusProcessed, classification, nil); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "stage translated and applied")
	return &Result{Event: event}, nil
}

func (s *Service) finish(ctx context.Context, event *models.IngestedEvent, status enums.IngestStatus, classification Classification, lastError *string) error {
	if err := s.repo.UpdateClassification(ctx, event.ID, status, classification.StageID, classification.VehicleRef, lastError); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating event classification")
	}
	event.ProcessingStatus = status
	event.StageID = classification.StageID
	event.VehicleRef = classification.VehicleRef
	event.LastError = lastError
	return nil
}
