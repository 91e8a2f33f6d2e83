package main

import (
	"context"
	"errors"

	"github.com/MagnumMax/skyluxse-sub003/internal/accounting"
	"github.com/MagnumMax/skyluxse-sub003/internal/notify"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
	"github.com/MagnumMax/skyluxse-sub003/pkg/storage"
)

// buildDeliverers wires one deliverer per configured downstream target.
// Targets missing their configuration are skipped with a warning so a partial
// deploy still drains the entries it can.
func buildDeliverers(ctx context.Context, cfg *config.Config, logg *logger.Logger) (map[enums.TargetSystem]outbox.Deliverer, error) {
	deliverers := map[enums.TargetSystem]outbox.Deliverer{}

	if cfg.Accounting.BaseURL != "" {
		client, err := accounting.NewClient(cfg.Accounting, logg)
		if err != nil {
			return nil, err
		}
		deliverer, err := accounting.NewDeliverer(client, cfg.Accounting, logg)
		if err != nil {
			return nil, err
		}
		deliverers[enums.TargetAccounting] = deliverer
	} else {
		logg.Warn(ctx, "accounting base url not configured, accounting entries will stay pending")
	}

	providers := map[enums.NotificationChannel]notify.Provider{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		telegram, err := notify.NewTelegramProvider(cfg.Telegram, logg)
		if err != nil {
			return nil, err
		}
		providers[enums.ChannelTelegram] = telegram
	}
	if cfg.SMTP.Host != "" {
		email, err := notify.NewEmailProvider(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		providers[enums.ChannelEmail] = email
	}

	if len(providers) > 0 {
		fanout, err := notify.NewFanout(providers, logg)
		if err != nil {
			return nil, err
		}
		var media *storage.Resolver
		if cfg.Media.BaseURL != "" {
			media, err = storage.NewResolver(cfg.Media)
			if err != nil {
				return nil, err
			}
		}
		deliverer, err := notify.NewDeliverer(fanout, media, logg)
		if err != nil {
			return nil, err
		}
		deliverers[enums.TargetNotification] = deliverer
	} else {
		logg.Warn(ctx, "no notification channel configured, notification entries will stay pending")
	}

	if len(deliverers) == 0 {
		return nil, errors.New("no delivery target is configured")
	}
	return deliverers, nil
}
