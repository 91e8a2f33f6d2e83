package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MagnumMax/skyluxse-sub003/internal/bookings"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
	"github.com/MagnumMax/skyluxse-sub003/pkg/storage"
)

// Deliverer is the outbox consumer for the notification target. It renders
// queued events into messages and fans them out.
type Deliverer struct {
	fanout *Fanout
	media  *storage.Resolver
	logg   *logger.Logger
}

// NewDeliverer wires the fan-out behind the outbox. The media resolver may be
// nil; references then pass through unresolved.
func NewDeliverer(fanout *Fanout, media *storage.Resolver, logg *logger.Logger) (*Deliverer, error) {
	if fanout == nil {
		return nil, fmt.Errorf("notification deliverer requires a fanout")
	}
	if logg == nil {
		return nil, fmt.Errorf("notification deliverer requires a logger")
	}
	return &Deliverer{fanout: fanout, media: media, logg: logg}, nil
}

func (d *Deliverer) Deliver(ctx context.Context, entry models.OutboxEntry) error {
	envelope, err := outbox.DecodeEnvelope(entry.Payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding outbox envelope")
	}

	switch entry.EventType {
	case enums.EventBookingStatusChanged:
		var event bookings.StatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding status change event")
		}
		return d.fanout.Dispatch(ctx, nil, renderStatusChange(event))

	case enums.EventNotificationRequested:
		var request Request
		if err := json.Unmarshal(envelope.Data, &request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding notification request")
		}
		msg := Message{
			Subject:   request.Subject,
			Body:      request.Body,
			MediaURLs: d.resolveMedia(ctx, request.Media),
		}
		return d.fanout.Dispatch(ctx, request.Channels, msg)

	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("notification cannot handle event type %q", entry.EventType))
	}
}

func (d *Deliverer) resolveMedia(ctx context.Context, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		if d.media == nil {
			resolved = append(resolved, ref)
			continue
		}
		url, err := d.media.Resolve(ref)
		if err != nil {
			d.logg.Warn(d.logg.WithField(ctx, "media_ref", ref), "skipping unresolvable media reference")
			continue
		}
		resolved = append(resolved, url)
	}
	return resolved
}

func renderStatusChange(event bookings.StatusChangedEvent) Message {
	subject := fmt.Sprintf("Booking %s: %s", event.DealID, event.StageLabel)
	body := fmt.Sprintf("Booking %s moved from %s to %s.", event.DealID, event.Previous, event.Current)
	if event.VehicleRef != "" {
		body += fmt.Sprintf(" Vehicle: %s.", event.VehicleRef)
	}
	if event.NeedsReview {
		body += " Stage is unmapped and needs review."
	}
	return Message{Subject: subject, Body: body}
}
