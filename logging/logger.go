package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It writes to stderr until Init runs.
var Logger = logrus.New()

var once sync.Once

// Init configures the global logger. When logFile is set, output is
// rotated through lumberjack and mirrored to stdout.
func Init(level, logFile string) error {
	var initErr error
	once.Do(func() {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			initErr = fmt.Errorf("invalid log level %q: %w", level, err)
			return
		}

		var out io.Writer = os.Stdout
		if logFile != "" {
			if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
				initErr = fmt.Errorf("failed to create log directory: %w", err)
				return
			}
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}

		Logger.SetOutput(out)
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		Logger.SetLevel(lvl)

		Logger.WithField("file", logFile).Info("Logger initialized")
	})
	return initErr
}
