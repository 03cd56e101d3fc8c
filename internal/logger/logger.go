package logger

import (
	"go.uber.org/zap"
)

// New returns a console logger for development environments and a JSON
// production logger otherwise. The service name is attached to every entry.
func New(appName string, development bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	if appName != "" {
		l = l.With(zap.String("service", appName))
	}
	return l, nil
}

// OrNop lets constructors accept a nil logger.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
