package scope

import (
	"github.com/npillmayer/schuko/tracing"
)

// T traces with key 'reltable.scope'.
func T() tracing.Trace {
	return tracing.Select("reltable.scope")
}
