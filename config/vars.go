package config

import (
	"github.com/flashbots/go-utils/cli"
)

// Set during build
var (
	// Version is the version of the software, set at build time
	Version = "v0.1.0-dev"
)

// Other settings
var (
	// ServerReadTimeoutMs sets the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.
	ServerReadTimeoutMs = cli.GetEnvInt("FEE_MANAGER_SERVER_READ_TIMEOUT_MS", 5000)

	// ServerReadHeaderTimeoutMs sets the amount of time allowed to read request headers.
	ServerReadHeaderTimeoutMs = cli.GetEnvInt("FEE_MANAGER_SERVER_READ_HEADER_TIMEOUT_MS", 2000)

	// ServerWriteTimeoutMs sets the maximum duration before timing out writes of the response.
	ServerWriteTimeoutMs = cli.GetEnvInt("FEE_MANAGER_SERVER_WRITE_TIMEOUT_MS", 10000)

	// ServerIdleTimeoutMs sets the maximum amount of time to wait for the next request when keep-alives are enabled.
	ServerIdleTimeoutMs = cli.GetEnvInt("FEE_MANAGER_SERVER_IDLE_TIMEOUT_MS", 60000)

	// ServerShutdownTimeoutMs bounds the graceful shutdown of the HTTP server.
	ServerShutdownTimeoutMs = cli.GetEnvInt("FEE_MANAGER_SERVER_SHUTDOWN_TIMEOUT_MS", 10000)

	ServerMaxHeaderBytes = cli.GetEnvInt("MAX_HEADER_BYTES", 4000) // max header byte size for requests for dos prevention

	// ServerMaxBodyBytes caps the size of request bodies.
	ServerMaxBodyBytes = cli.GetEnvInt("FEE_MANAGER_SERVER_MAX_BODY_BYTES", 4<<20)
)
