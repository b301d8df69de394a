package apiserver

import (
	"github.com/kyprware/synapse/logger"
	"github.com/kyprware/synapse/util/panics"
)

var log, _ = logger.Get(logger.SubsystemTags.APIS)
var spawn = panics.GoroutineWrapperFunc(log)
