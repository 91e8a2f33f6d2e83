package stages

import (
	"strings"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// Mapping ties one upstream CRM pipeline stage to the internal booking
// lifecycle plus the display metadata the dashboard renders.
type Mapping struct {
	ExternalStageID string
	Label           string
	Group           string
	Lifecycle       enums.LifecycleStatus
	Badge           string
	NeedsReview     bool
}

// Fallback is returned for stage ids the registry does not know. It keeps the
// translation step total: unknown stages land on the most conservative
// lifecycle and get flagged for manual review instead of failing.
var Fallback = Mapping{
	ExternalStageID: "",
	Label:           "Unmapped stage",
	Group:           "unknown",
	Lifecycle:       enums.LifecycleNew,
	Badge:           "grey",
	NeedsReview:     true,
}

// byStageID is the static stage table. Stage ids are the numeric identifiers
// the CRM assigns per pipeline; they are opaque outside this package.
var byStageID = map[string]Mapping{
	"144": {ExternalStageID: "144", Label: "Booking confirmed", Group: "sales", Lifecycle: enums.LifecycleNew, Badge: "blue"},
	"145": {ExternalStageID: "145", Label: "Vehicle preparation", Group: "operations", Lifecycle: enums.LifecyclePreparation, Badge: "yellow"},
	"146": {ExternalStageID: "146", Label: "Out for delivery", Group: "operations", Lifecycle: enums.LifecycleDelivery, Badge: "orange"},
	"147": {ExternalStageID: "147", Label: "In rent", Group: "operations", Lifecycle: enums.LifecycleInRent, Badge: "green"},
	"148": {ExternalStageID: "148", Label: "Returned / settlement", Group: "finance", Lifecycle: enums.LifecycleSettlement, Badge: "purple"},
	"149": {ExternalStageID: "149", Label: "Closed won", Group: "finance", Lifecycle: enums.LifecycleSettlement, Badge: "purple"},
}

// Resolve maps an upstream stage id onto its internal mapping. It is total:
// absent or blank ids resolve to Fallback.
func Resolve(externalStageID string) Mapping {
	id := strings.TrimSpace(externalStageID)
	if id == "" {
		return Fallback
	}
	if mapping, ok := byStageID[id]; ok {
		return mapping
	}
	fallback := Fallback
	fallback.ExternalStageID = id
	return fallback
}

// Known reports whether the stage id has an explicit mapping.
func Known(externalStageID string) bool {
	_, ok := byStageID[strings.TrimSpace(externalStageID)]
	return ok
}
