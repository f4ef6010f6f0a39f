// Package logging builds the process logger and keeps dataset contents out
// of log output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger creates the root zap logger for the given environment.
// "local" gets the human-readable development encoder; everything else
// gets production JSON at info level.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
