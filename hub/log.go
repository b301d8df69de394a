package hub

import (
	"github.com/kyprware/synapse/logger"
	"github.com/kyprware/synapse/util/panics"
)

var log, _ = logger.Get(logger.SubsystemTags.HUBS)
var spawn = panics.GoroutineWrapperFunc(log)
