package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production logs JSON at info level,
// everything else logs text at debug level.
func New(output io.Writer, production bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	if !production {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}
