package main

import (
	"github.com/kyprware/synapse/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.SYND)
