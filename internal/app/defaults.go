package app

// defaults is registered with the config loader so every key resolves even
// when the config file is missing or partial.
var defaults = map[string]any{
	"app.name": "otpgate",
	"app.tz":   "UTC",

	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       10,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.http.max_body_bytes":              64 << 10,
	"app.server.cors":                             "*",
	"app.server.max_goroutine":                    0,
	"app.maintenance.endpoints":                   "",

	"instrument.enabled":                 false,
	"instrument.service_name":            "otpgate",
	"instrument.service_version":         "0.1.0",
	"instrument.env":                     "local",
	"instrument.otlp_endpoint":           "localhost:4317",
	"instrument.otlp_secure":             false,
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 60,
	"instrument.log_mask_fields":         "secret,code,normalized_secret",
	"instrument.log_level":               "info",

	"totp.period_seconds": 30,
	"totp.digits":         6,
	"totp.skew":           1,
	"totp.epoch_unix":     0,

	"uid.snowflake.node": 1,

	"modules.totp.enabled":              true,
	"modules.totp.generator.enabled":    true,
	"modules.totp.events.enabled":       false,
	"modules.totp.events.retry_base_ms": 100,

	"messaging.driver": "noop",

	"messaging.nsq.producer_addr":                         "",
	"messaging.nsq.producer_config.max_in_flight":         1,
	"messaging.nsq.producer_config.dial_timeout_seconds":  1,
	"messaging.nsq.producer_config.read_timeout_seconds":  60,
	"messaging.nsq.producer_config.write_timeout_seconds": 1,

	"messaging.nats.url":                     "",
	"messaging.nats.name":                    "otpgate",
	"messaging.nats.max_reconnects":          60,
	"messaging.nats.timeout_seconds":         2,
	"messaging.nats.reconnect_wait_seconds":  2,
	"messaging.nats.ping_interval_seconds":   120,
	"messaging.nats.max_pings_outstanding":   2,
	"messaging.nats.retry_on_failed_connect": false,

	"messaging.kafka.brokers":               "",
	"messaging.kafka.write_timeout_seconds": 10,
	"messaging.kafka.required_acks":         -1,

	"messaging.pubsub.project_id":       "",
	"messaging.pubsub.credentials_file": "",
	"messaging.pubsub.credentials_json": "",
	"messaging.pubsub.endpoint":         "",
	"messaging.pubsub.without_auth":     false,

	"messaging.redis.url": "",
}
