/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package observability

import "go.uber.org/zap"

// NewLogger builds the process-wide *zap.Logger from the configured
// level. Passed by constructor injection to every component that logs
// (§10.1) — there is no package-level logger global.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
