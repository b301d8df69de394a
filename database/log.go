package database

import (
	"github.com/kyprware/synapse/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.BODB)

// gormLogger routes gorm's trace output into the hub log at trace level.
type gormLogger struct{}

func (l gormLogger) Print(v ...interface{}) {
	log.Trace(v...)
}
