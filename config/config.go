package config

import (
	"github.com/germplasm-hub/data-api/log"
)

// Config is the process-wide, read-only configuration consulted by request
// threads.
type Config interface {
	// UseAuthentication reports whether callers must authenticate. When
	// false, only public data is served and edit operations are refused.
	UseAuthentication() bool
	// ReadOnly reports whether the deployment refuses all mutations.
	ReadOnly() bool
	// JWTSecret is the HMAC secret bearer tokens are verified with.
	JWTSecret() string
	Logger() log.Logger
}

type config struct {
	useAuthentication bool
	readOnly          bool
	jwtSecret         string
	logger            log.Logger
}

// New creates a configuration with the given logger; authentication and
// read-only mode default to off.
func New(logger log.Logger) *config {
	return &config{logger: logger}
}

func (c *config) WithAuthentication(enabled bool) *config {
	c.useAuthentication = enabled
	return c
}

func (c *config) WithReadOnly(readOnly bool) *config {
	c.readOnly = readOnly
	return c
}

func (c *config) WithJWTSecret(secret string) *config {
	c.jwtSecret = secret
	return c
}

func (c *config) UseAuthentication() bool {
	return c.useAuthentication
}

func (c *config) ReadOnly() bool {
	return c.readOnly
}

func (c *config) JWTSecret() string {
	return c.jwtSecret
}

func (c *config) Logger() log.Logger {
	return c.logger
}
