package ingest

import (
	"encoding/json"
	"strings"

	"github.com/MagnumMax/skyluxse-sub003/internal/stages"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
)

// Action is the classifier's verdict on a logged event.
type Action string

const (
	// ActionDefer marks an event whose stage is in the exclusion set; the
	// booking is not confirmed yet and nothing downstream may move.
	ActionDefer Action = "defer"
	// ActionTranslate routes the stage through the registry for a lifecycle
	// update.
	ActionTranslate Action = "translate"
	// ActionIgnore covers events that carry no stage at all.
	ActionIgnore Action = "ignore"
)

// Classification is the result of inspecting one persisted event.
type Classification struct {
	Action     Action
	StageID    string
	Stage      stages.Mapping
	VehicleRef string
	DealID     string
}

// Classifier decides what a logged event means. It owns no persistence; the
// ingest service applies its verdict.
type Classifier struct {
	status   *Extractor
	vehicle  *Extractor
	deal     *Extractor
	excluded map[string]struct{}
}

// NewClassifier builds the extractor rule lists from configuration. The
// direct-field rules always run before the custom-field scan.
func NewClassifier(cfg config.WebhookConfig) *Classifier {
	statusRules := []Rule{
		DirectField{Path: []string{"status_id"}},
		DirectField{Path: []string{"deal", "status_id"}},
		CustomField{
			ArrayPath: []string{"fields"},
			IDKey:     "field_id",
			CodeKey:   "field_code",
			ValueKey:  "value",
			FieldID:   cfg.StatusFieldID,
			FieldCode: cfg.StatusFieldCode,
		},
	}
	vehicleRules := []Rule{
		DirectField{Path: []string{"vehicle_id"}},
		DirectField{Path: []string{"deal", "vehicle_id"}},
		CustomField{
			ArrayPath: []string{"fields"},
			IDKey:     "field_id",
			CodeKey:   "field_code",
			ValueKey:  "value",
			FieldID:   cfg.VehicleFieldID,
			FieldCode: cfg.VehicleFieldCode,
		},
	}

	dealRules := []Rule{
		DirectField{Path: []string{"deal_id"}},
		DirectField{Path: []string{"deal", "id"}},
		DirectField{Path: []string{"id"}},
	}

	excluded := make(map[string]struct{}, len(cfg.ExcludedStages))
	for _, stage := range cfg.ExcludedStages {
		stage = strings.TrimSpace(stage)
		if stage != "" {
			excluded[stage] = struct{}{}
		}
	}

	return &Classifier{
		status:   NewExtractor(statusRules...),
		vehicle:  NewExtractor(vehicleRules...),
		deal:     NewExtractor(dealRules...),
		excluded: excluded,
	}
}

// Classify inspects the stored payload. It never fails: payloads that do not
// decode or carry no stage classify as ignore.
func (c *Classifier) Classify(event *models.IngestedEvent) Classification {
	var doc map[string]any
	if err := json.Unmarshal(event.RawPayload, &doc); err != nil {
		return Classification{Action: ActionIgnore}
	}

	// The vehicle and deal references enrich the audit trail even when they
	// do not gate the decision.
	vehicleRef, _ := c.vehicle.Extract(doc)
	dealID, _ := c.deal.Extract(doc)

	stageID, ok := c.status.Extract(doc)
	if !ok {
		return Classification{Action: ActionIgnore, VehicleRef: vehicleRef, DealID: dealID}
	}

	if _, deferIt := c.excluded[stageID]; deferIt {
		return Classification{Action: ActionDefer, StageID: stageID, VehicleRef: vehicleRef, DealID: dealID}
	}

	return Classification{
		Action:     ActionTranslate,
		StageID:    stageID,
		Stage:      stages.Resolve(stageID),
		VehicleRef: vehicleRef,
		DealID:     dealID,
	}
}
