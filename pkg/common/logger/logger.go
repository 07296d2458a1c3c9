package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init so packages can log from tests.
var Log = logrus.New()

// Init configures Log from LOG_LEVEL (default info) and LOG_FORMAT
// (json, or text for local runs).
func Init() {
	Log = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}

func WithService(name string) *logrus.Entry {
	return Log.WithField("service", name)
}

func WithPatient(patientID string) *logrus.Entry {
	return Log.WithField("patient_id", patientID)
}

func WithEvent(id, eventType string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{"event_id": id, "event_type": eventType})
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
