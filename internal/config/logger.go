package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

func Logger() *logrus.Logger {
	return logg
}

// LogError records a failure with enough context to remediate it later.
// Accounting failures are swallowed relative to the order operation, so
// this log line is their only trace.
func LogError(module, funcName string, fields logrus.Fields, err error) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["module"] = module
	fields["funcName"] = funcName
	logg.WithFields(fields).Error(err.Error())
}
