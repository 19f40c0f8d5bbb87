package stream

import (
	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type logrusLogger struct {
	l *logrus.Logger
}

var _ Logger = (*logrusLogger)(nil)

func (s *logrusLogger) Infof(format string, v ...interface{}) {
	s.l.Infof(format, v...)
}

func (s *logrusLogger) Warnf(format string, v ...interface{}) {
	s.l.Warnf(format, v...)
}

func (s *logrusLogger) Errorf(format string, v ...interface{}) {
	s.l.Errorf(format, v...)
}

func newLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// DefaultLogger returns a logrus-backed Logger that only prints warnings and
// errors. Inject your own via WithLogger for more verbosity.
func DefaultLogger() Logger {
	l := newLogrus()
	l.SetLevel(logrus.WarnLevel)
	return &logrusLogger{l: l}
}

// NewRotatingFileLogger returns a Logger writing to path with size-based
// rotation. maxSizeMB and maxBackups below 1 fall back to 2MB and 30 files.
func NewRotatingFileLogger(path string, maxSizeMB, maxBackups int) Logger {
	if maxSizeMB < 1 {
		maxSizeMB = 2
	}
	if maxBackups < 1 {
		maxBackups = 30
	}
	l := newLogrus()
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	})
	return &logrusLogger{l: l}
}
