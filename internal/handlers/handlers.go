// Package handlers implements the HTTP API. Handlers share the package
// level database, services and configuration set up at start.
package handlers

import (
	"github.com/arnold/smartgoals-api/internal/config"
)

var cfg = config.Load()

// Configure installs the process configuration.
func Configure(c *config.Config) {
	cfg = c
}
