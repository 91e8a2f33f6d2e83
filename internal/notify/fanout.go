package notify

import (
	"context"
	"fmt"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

// Fanout routes messages to registered channel providers. An unknown channel
// is logged and skipped so one bad request never poisons the others.
type Fanout struct {
	providers map[enums.NotificationChannel]Provider
	logg      *logger.Logger
}

func NewFanout(providers map[enums.NotificationChannel]Provider, logg *logger.Logger) (*Fanout, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("fanout requires at least one provider")
	}
	if logg == nil {
		return nil, fmt.Errorf("fanout requires a logger")
	}
	return &Fanout{providers: providers, logg: logg}, nil
}

// Channels lists the registered channels.
func (f *Fanout) Channels() []enums.NotificationChannel {
	channels := make([]enums.NotificationChannel, 0, len(f.providers))
	for channel := range f.providers {
		channels = append(channels, channel)
	}
	return channels
}

// Dispatch sends the message to each requested channel. An empty channel list
// means every registered channel. The first provider failure is returned so
// the outbox layer can retry the whole entry; provider sends are expected to
// be idempotent enough for redelivery.
func (f *Fanout) Dispatch(ctx context.Context, channels []enums.NotificationChannel, msg Message) error {
	if len(channels) == 0 {
		channels = f.Channels()
	}
	sent := 0
	for _, channel := range channels {
		provider, ok := f.providers[channel]
		if !ok {
			f.logg.Warn(f.logg.WithField(ctx, "channel", channel), "no provider for notification channel")
			continue
		}
		if err := provider.Send(ctx, msg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("sending via %s", channel))
		}
		sent++
	}
	if sent == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no registered channel matched the request")
	}
	return nil
}
