package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development builds get a console
// writer, everything else logs JSON to stdout.
func Init(level string, development bool) {
	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	SetLevel(level)
}

func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
		log.Warn().Str("loglevel", level).Msg("unknown log level, using info")
	}
	zerolog.SetGlobalLevel(parsed)
}

func ErrorWithStack(err error, msg string) {
	log.Error().Msgf("%s: %+v", msg, errors.WithStack(err))
}

// Badger routes badger's internal logging through zerolog.
type Badger struct {
	logger zerolog.Logger
}

func NewBadger(component string) *Badger {
	return &Badger{logger: log.With().Str("component", component).Logger()}
}

func (b *Badger) Errorf(format string, args ...interface{}) {
	b.logger.Error().Msg(trim(format, args...))
}

func (b *Badger) Warningf(format string, args ...interface{}) {
	b.logger.Warn().Msg(trim(format, args...))
}

func (b *Badger) Infof(format string, args ...interface{}) {
	b.logger.Debug().Msg(trim(format, args...))
}

func (b *Badger) Debugf(format string, args ...interface{}) {
	b.logger.Trace().Msg(trim(format, args...))
}

func trim(format string, args ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
