package common

import "time"

// Alert event sources.
const (
	AlertSourceDaily    = "daily"
	AlertSourceRealtime = "realtime"
)

// AlertEvent is the wire form of one newly persisted alert, fanned out to
// websocket subscribers, the MQTT topic and the push notifier.
type AlertEvent struct {
	ID        int64     `json:"id"`
	Cat       string    `json:"cat"`
	Color     string    `json:"color"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	AlertDate string    `json:"alert_date"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}
