package config

import (
	"fmt"
	"strings"
	"time"
)

// MediaConfig configures the image hosting provider used by the admin API.
type MediaConfig struct {
	UploadURL      string               `koanf:"uploadurl"`
	UploadPreset   string               `koanf:"uploadpreset"`
	Transformation string               `koanf:"transformation"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

const defaultTransformation = "c_pad,w_800,h_600,q_auto,f_auto,b_auto"

// String returns a string representation of the media configuration.
func (c *MediaConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Media ---\n")
	b.WriteString(fmt.Sprintf("  uploadurl: %s\n", c.UploadURL))
	b.WriteString(fmt.Sprintf("  uploadpreset: %s\n", c.UploadPreset))
	b.WriteString(fmt.Sprintf("  transformation: %s\n", c.Transformation))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

func (c *MediaConfig) Validate() error {
	if c.UploadURL == "" {
		return fmt.Errorf("media upload URL is not configured")
	}
	if c.UploadPreset == "" {
		return fmt.Errorf("media upload preset is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("media upload timeout is not configured")
	}
	if c.Transformation == "" {
		c.Transformation = defaultTransformation
	}
	return c.CircuitBreaker.Validate()
}
