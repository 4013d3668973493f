package config

import (
	"fmt"
	"os"
	"strings"

	"code.cloudfoundry.org/lager"
)

var logLevels = map[string]lager.LogLevel{
	"debug": lager.DEBUG,
	"info":  lager.INFO,
	"error": lager.ERROR,
	"fatal": lager.FATAL,
}

func getLogLevel(level string) (lager.LogLevel, error) {
	if logLevel, ok := logLevels[strings.ToLower(level)]; ok {
		return logLevel, nil
	}
	return lager.INFO, fmt.Errorf("invalid log level: %s", level)
}

// NewLogger creates the root logger writing to stdout at the configured level.
func NewLogger(s *Settings) (lager.Logger, error) {
	level, err := getLogLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := lager.NewLogger("rds-helpers")
	logger.RegisterSink(lager.NewWriterSink(os.Stdout, level))
	return logger, nil
}
