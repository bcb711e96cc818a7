// Package sysutil carries the process-wide plumbing that belongs to no
// feature package. Today that is the mapping from the LOG_LEVEL setting
// to the global zerolog threshold.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel applies a textual level to the global zerolog threshold.
// Input is case-insensitive and may carry whitespace; "warning" is
// accepted as an alias for warn. Anything unrecognized, including the
// empty string, lands on info so a typo in LOG_LEVEL never silences the
// service.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
