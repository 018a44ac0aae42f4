package config

import "fmt"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Port is the TCP port the API server binds to.
	Port int `env:"HTTP_PORT" envDefault:"8080"`

	// ReadTimeoutSeconds and WriteTimeoutSeconds bound request handling.
	ReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS"  envDefault:"15"`
	WriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Port < 1 || h.Port > 65535 {
		h.Port = 8080
	}
	if h.ReadTimeoutSeconds < 1 {
		h.ReadTimeoutSeconds = 1
	}
	if h.WriteTimeoutSeconds < 1 {
		h.WriteTimeoutSeconds = 1
	}
}

// Addr returns the listen address for the configured port.
func (h *HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}
