// Package config holds the storefront service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Redis      config.RedisConfig      `koanf:"redis"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	IdP        config.IdP              `koanf:"idp"`
	Media      config.MediaConfig      `koanf:"media"`
	Cart       CartConfig              `koanf:"cart"`
	Catalog    CatalogConfig           `koanf:"catalog"`
}

// CartConfig controls how long an idle cart is kept in the slot.
type CartConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// CatalogConfig controls the featured slider.
type CatalogConfig struct {
	SliderInterval  time.Duration `koanf:"sliderInterval"`
	SliderGroupSize int           `koanf:"sliderGroupSize"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Redis.String())
	b.WriteString(c.NATS.String())
	if c.NATS.Enabled {
		b.WriteString(c.Subscriber.String())
	}
	b.WriteString(c.GRPC.String())
	b.WriteString(c.IdP.String())
	b.WriteString(c.Media.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))
	b.WriteString(fmt.Sprintf("  cart.ttl: %s\n", c.Cart.TTL))
	b.WriteString(fmt.Sprintf("  catalog.sliderInterval: %s\n", c.Catalog.SliderInterval))
	b.WriteString(fmt.Sprintf("  catalog.sliderGroupSize: %d\n", c.Catalog.SliderGroupSize))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Redis,
		&c.NATS,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.Telemetry,
		&c.IdP,
		&c.Media,
	}
	if c.NATS.Enabled {
		validators = append(validators, &c.Subscriber)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Cart.TTL < 0 {
		return fmt.Errorf("cart TTL must not be negative: %s", c.Cart.TTL)
	}
	if c.Catalog.SliderInterval < 0 {
		return fmt.Errorf("catalog slider interval must not be negative: %s", c.Catalog.SliderInterval)
	}
	if c.Catalog.SliderGroupSize < 0 {
		return fmt.Errorf("catalog slider group size must not be negative: %d", c.Catalog.SliderGroupSize)
	}
	return nil
}
