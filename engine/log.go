// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured sink every node writes through. Defaults to a
// console writer on stderr; callers (cmd/ltemac4sim) may replace it
// before calling Sim.Run to redirect or reformat output.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: ""}).With().Timestamp().Logger()

// logf emits a node-tagged, tick-tagged log line.
func logf(now Clock, id NodeID, format string, a ...any) {
	Logger.Info().
		Str("tick", now.String()).
		Int("node", int(id)).
		Msgf(format, a...)
}
