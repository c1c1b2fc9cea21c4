package cmd

import "github.com/sirupsen/logrus"

// Log is shared by the command-line tools. Library packages return
// errors instead of logging.
var Log = logrus.New()

func init() {
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "@timestamp",
			logrus.FieldKeyLevel: "@level",
			logrus.FieldKeyMsg:   "@message",
		},
	})
}

func SetLogLevel(level logrus.Level) {
	Log.SetLevel(level)
}
