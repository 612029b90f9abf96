package lineecho

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigs(t *testing.T) {
	client := DefaultClientConfig()
	assert.Equal(t, "localhost", client.Host)
	assert.Equal(t, "8080", client.Service)
	assert.NoError(t, client.Validate())

	server := DefaultServerConfig()
	assert.Empty(t, server.Host)
	assert.Equal(t, "8080", server.Service)
	assert.NoError(t, server.Validate())
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{Host: "localhost"}.Validate())
	assert.NoError(t, Config{Service: "http"}.Validate())
}
