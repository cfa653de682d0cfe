package enums

import "fmt"

// NotificationChannel maps to the notification_channel enum in Postgres.
type NotificationChannel string

const (
	NotificationChannelInApp NotificationChannel = "in_app"
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelInApp,
	NotificationChannelEmail,
	NotificationChannelSMS,
}

// String implements fmt.Stringer.
func (n NotificationChannel) String() string {
	return string(n)
}

// IsValid checks whether the given channel matches the canonical enum.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw strings into NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}
