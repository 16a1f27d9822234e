// Package applog provides the zap logger used across the service, in the
// shape erigon itself configures its own loggers: one constructor, a
// component field attached up front, JSON in production and console output
// in development.
package applog

import (
	"go.uber.org/zap"
)

// New builds a component-scoped sugared logger. Set dev to true for
// human-readable console output during local development.
func New(component string, dev bool) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar().With("component", component)
}
