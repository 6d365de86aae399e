package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger
var Log = logrus.New()

// Init configures the logger from environment variables
func Init() {
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}
}
