// Package telemetry is the process-wide structured logger: operational
// messages about startup, backend selection, descriptor repairs, and
// tick failures. It is distinct from emit, which carries domain-level
// Events a caller can subscribe to; telemetry only ever writes to an
// io.Writer.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the package-level logger every component writes through,
// following the teacher's single shared-logger convention rather than
// threading a *zerolog.Logger through every constructor.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// SetLevel adjusts the minimum level Log emits; cmd/fluxgraphd wires
// this to the logging.level config value (FLUXGRAPH_LOG_LEVEL overrides it).
func SetLevel(level zerolog.Level) {
	Log = Log.Level(level)
}
