package config

import (
	"github.com/germplasm-hub/data-api/log"
	"github.com/stretchr/testify/mock"
)

type ConfigMock struct {
	mock.Mock
}

func NewConfigMock() *ConfigMock {
	return &ConfigMock{}
}

// Default configures open, writable defaults with a discarding logger.
func (o *ConfigMock) Default() *ConfigMock {
	o.On("UseAuthentication").Return(false)
	o.On("ReadOnly").Return(false)
	o.On("JWTSecret").Return("")
	o.On("Logger").Return(log.Logger(log.NewNopLogger()))
	return o
}

func (o *ConfigMock) UseAuthentication() bool {
	args := o.Called()
	return args.Bool(0)
}

func (o *ConfigMock) ReadOnly() bool {
	args := o.Called()
	return args.Bool(0)
}

func (o *ConfigMock) JWTSecret() string {
	args := o.Called()
	return args.String(0)
}

func (o *ConfigMock) Logger() log.Logger {
	args := o.Called()
	return args.Get(0).(log.Logger)
}
