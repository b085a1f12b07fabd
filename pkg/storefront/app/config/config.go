package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "storefront"

type Config struct {
	ServeHTTPAddress string `envconfig:"serve_http_address" default:":8080"`

	// Empty DSN means the in-memory store seeded with the showcase
	// catalog; useful for development and demos.
	DatabaseDSN   string `envconfig:"database_dsn"`
	MigrationsDir string `envconfig:"migrations_dir" default:"data/migrations"`

	// Empty address keeps the cart snapshot in process memory.
	RedisAddress string `envconfig:"redis_address"`
	RedisSession string `envconfig:"redis_session" default:"default"`

	// Empty URL routes domain events to the structured log.
	AMQPURL      string `envconfig:"amqp_url"`
	AMQPExchange string `envconfig:"amqp_exchange" default:"storefront.events"`

	AdminEmail     string `envconfig:"admin_email" default:"admin@delicias.cl"`
	GoogleClientID string `envconfig:"google_client_id"`

	WhatsAppPhone string `envconfig:"whatsapp_phone" default:"56934973287"`
	BusinessName  string `envconfig:"business_name" default:"Delicias Los Volcanes"`

	CatalogSnapshotPath string `envconfig:"catalog_snapshot_path"`
}

func ParseEnv() (*Config, error) {
	c := new(Config)
	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	return c, nil
}
