package logutils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// UTCFormatter forces log timestamps into UTC before formatting.
type UTCFormatter struct {
	logrus.Formatter
}

func (u UTCFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// Setup configures the global logger from the CLI provided level and format.
func Setup(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	switch strings.ToUpper(format) {
	case "JSON":
		logrus.SetFormatter(UTCFormatter{Formatter: &logrus.JSONFormatter{}})
	default:
		logrus.SetFormatter(UTCFormatter{Formatter: &logrus.TextFormatter{FullTimestamp: true}})
	}
}

// SetupTestLogging configures verbose logging for tests.
func SetupTestLogging() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(UTCFormatter{Formatter: &logrus.TextFormatter{FullTimestamp: true}})
}
