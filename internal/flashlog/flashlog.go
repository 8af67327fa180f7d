// Package flashlog is a thin wrapper over charmbracelet/log, giving every
// component a consistently prefixed, leveled logger. The teacher
// repository logs ad hoc with fmt.Println/fmt.Printf (see
// lsm/wal.go's reloadWAL); the rest of the retrieved pack favors
// charmbracelet/log for exactly this kind of engine/CLI logging, which is
// what this module adopts instead.
package flashlog

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is a leveled, prefixed logger bound to one component.
type Logger struct {
	*log.Logger
}

var base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Level:           log.WarnLevel,
})

// New returns a Logger prefixed with component (e.g. "store", "append").
func New(component string) *Logger {
	return &Logger{base.WithPrefix(component)}
}

// SetLevel adjusts the verbosity of every Logger sharing this package's
// base logger. The flashkvtool CLI calls this with the configured log level.
func SetLevel(level log.Level) {
	base.SetLevel(level)
}
