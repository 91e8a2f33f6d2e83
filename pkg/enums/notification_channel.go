package enums

// NotificationChannel identifies a fan-out provider.
type NotificationChannel string

const (
	ChannelTelegram NotificationChannel = "telegram"
	ChannelEmail    NotificationChannel = "email"
)

var validNotificationChannels = []NotificationChannel{
	ChannelTelegram,
	ChannelEmail,
}

// IsValid reports whether the value matches a registered channel.
func (c NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == c {
			return true
		}
	}
	return false
}
