package constants

import "time"

const (
	DefaultHTTPPort       = 8080
	DefaultMonitoringPort = 6060
)

const (
	DefaultHTTPRequestTimeout = 10
	GraceWaitPeriod           = 10 * time.Second
)

const (
	// SlotSeconds is the sampling resolution of the timeslot store.
	SlotSeconds = 10

	// DateLayout and DateTimeLayout are the wire formats accepted by the
	// read APIs and produced by the statistics views.
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	MonthLayout    = "2006-01"
)

const (
	DefaultWorkerIntervalSeconds   = 30
	DefaultWorkerDailyCheckSeconds = 600
	// MinWorkerIntervalSeconds bounds tight-looping when the configured
	// interval is too small or every cycle fails.
	MinWorkerIntervalSeconds = 5
)

const (
	MqttDefaultWriteTimeout         = 10 * time.Second
	MqttDefaultKeepAlive            = 30 * time.Second
	MqttDefaultPingTimeout          = 5 * time.Second
	MqttDefaultMaxReconnectInterval = 30 * time.Second
	MqttDefaultConnectTimeout       = 10 * time.Second
	MqttDefaultConnectRetryInterval = 10 * time.Second
	MqttDefaultAlertTopic           = "pet-monitoring/alerts"
)
