package config

const (
	AppName               = "app.name"
	AppLogLevel           = "app.log_level"
	AppHTTPPort           = "app.http_port"
	AppHTTPMode           = "app.http_mode"
	AppHTTPRequestTimeout = "app.http_request_timeout"
	AppMonitoringPort     = "app.monitoring_port"
	AppEnableMonitoring   = "app.enable_monitoring"
	AppEnableTracing      = "app.enable_tracing"
	AppEnableMQTT         = "app.enable_mqtt"
	AppTLSCertFile        = "app.tls_cert_file"
	AppTLSKeyFile         = "app.tls_key_file"
)

const (
	DatabaseDriver = "database.driver"
	DatabaseDSN    = "database.dsn"
)

const (
	MqttEndpoint              = "mqtt.endpoint"
	MqttClientId              = "mqtt.client_id"
	MqttCleanSession          = "mqtt.clean_session"
	MqttAutoReconnect         = "mqtt.auto_reconnect"
	MqttConnectRetry          = "mqtt.connect_retry"
	MqttMaxConnectInterval    = "mqtt.max_connect_interval"
	MqttWriteTimeout          = "mqtt.write_timeout"
	MqttPingTimeout           = "mqtt.ping_timeout"
	MqttKeepAliveDuration     = "mqtt.keep_alive_duration"
	MqttResumeSubs            = "mqtt.resume_subs"
	MqttConnectTimeout        = "mqtt.connect_timeout"
	MqttConnectRetryInterval  = "mqtt.connect_retry_interval"
	MqttTLSInsecureSkipVerify = "mqtt.tls_insecure_skip_verify"
	MqttAlertTopic            = "mqtt.alert_topic"
)

const (
	NotifyEnabled = "notify.enabled"
	NotifyURLs    = "notify.urls"
	NotifyTitle   = "notify.title"
)

const (
	WorkerEnabled           = "worker.enabled"
	WorkerIntervalSeconds   = "worker.interval_seconds"
	WorkerDailyCheckSeconds = "worker.daily_check_seconds"
)

const (
	RoomsCameras = "rooms.cameras"
)

const (
	TracerEndpoint = "tracer.endpoint"
	TracerInsecure = "tracer.insecure"
)
