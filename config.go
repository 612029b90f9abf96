package lineecho

import (
	"github.com/pkg/errors"
)

const (
	// DefaultHost is the host a client connects to when none is given.
	DefaultHost = "localhost"
	// DefaultService is the TCP port both roles use when none is given.
	DefaultService = "8080"
)

// Config names the endpoint to connect to or listen on.
type Config struct {
	// Host is a hostname or numeric address. Empty means every local
	// address for a server and the loopback addresses for a client.
	Host string
	// Service is a port number or a service name.
	Service string
}

// DefaultClientConfig returns the configuration of a client talking to a
// local server on the default port.
func DefaultClientConfig() Config {
	return Config{Host: DefaultHost, Service: DefaultService}
}

// DefaultServerConfig returns the configuration of a server listening on
// every local address on the default port.
func DefaultServerConfig() Config {
	return Config{Service: DefaultService}
}

// Validate reports whether c can be resolved at all.
func (c Config) Validate() error {
	if c.Service == "" {
		return errors.New("service must not be empty")
	}
	return nil
}
