package launcher

import (
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// verbosityLevels maps the numeric CLI verbosity onto logrus levels.
var verbosityLevels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// setupLogging configures the global logrus logger from the launcher config
// and attaches the Sentry hook when a DSN is configured.
func setupLogging(cfg LoggingConfig) error {
	v := cfg.Verbosity
	if v < 0 {
		v = 0
	}
	if v >= len(verbosityLevels) {
		v = len(verbosityLevels) - 1
	}
	logrus.SetLevel(verbosityLevels[v])

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		})
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return err
		}
		logrus.AddHook(hook)
	}
	return nil
}
