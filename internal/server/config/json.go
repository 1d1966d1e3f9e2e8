package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/logitrack/internal/flagx"
	"github.com/dmitrijs2005/logitrack/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept "15m" style strings or integer nanoseconds.
// Keys that are absent leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	AdminEmail                   string         `json:"admin_email"`
	AutoRegister                 *bool          `json:"auto_register"`
	ResetTokenValidity           timex.Duration `json:"reset_token_validity"`
	ResetURLBase                 string         `json:"reset_url_base"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	EventsBroker                 string         `json:"events_broker"`
	KafkaBrokers                 []string       `json:"kafka_brokers"`
	KafkaTopic                   string         `json:"kafka_topic"`
	AMQPURL                      string         `json:"amqp_url"`
	AMQPQueue                    string         `json:"amqp_queue"`
}

// parseJson overlays values from the file named by -c / -config.
// Without the flag nothing is loaded. An unreadable or invalid file panics,
// since the server cannot start with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(config, c)
	setString(&config.AdminEmail, c.AdminEmail)
	if c.AutoRegister != nil {
		config.AutoRegister = *c.AutoRegister
	}
	setString(&config.ResetURLBase, c.ResetURLBase)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.EventsBroker, c.EventsBroker)
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.AMQPQueue, c.AMQPQueue)
}

func setDuration(config *Config, c *JsonConfig) {
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ResetTokenValidity.Duration > 0 {
		config.ResetTokenValidity = c.ResetTokenValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
