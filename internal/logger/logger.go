package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New создает логгер с JSON форматом вывода в stdout
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput создает логгер с указанным приемником вывода
func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.SetOutput(out)

	return logger
}

// Discard возвращает логгер, который ничего не пишет; используется в тестах
func Discard() *logrus.Logger {
	return NewWithOutput("panic", io.Discard)
}
