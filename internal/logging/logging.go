package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func SetupLogging() *logrus.Logger {
	return NewLogger(os.Stdout)
}

// NewLogger builds the service's JSON logger writing to out.
func NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:      out,
		Hooks:    make(logrus.LevelHooks),
		Level:    logrus.InfoLevel,
		ExitFunc: os.Exit,
	}

	return &logger
}
