package config

import (
	"go.uber.org/zap"
)

// NewLogger builds the production logger. Output goes to stdout and, when
// logFile is set, to that file as well.
func NewLogger(logFile string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		logCfg.OutputPaths = append(logCfg.OutputPaths, logFile)
	}
	return logCfg.Build()
}

// NewConsoleLogger builds a human-readable logger writing to stderr.
// Below-warning entries are dropped unless verbose is set.
func NewConsoleLogger(verbose bool) (*zap.Logger, error) {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.DisableStacktrace = true
	if !verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return logCfg.Build()
}
