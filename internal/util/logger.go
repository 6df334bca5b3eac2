package util

import "go.uber.org/zap"

func NewLogger(env string) *zap.SugaredLogger {
	var logger *zap.Logger

	if env == "production" {
		logger = zap.Must(zap.NewProduction())
	} else {
		logger = zap.Must(zap.NewDevelopment())
	}

	return logger.Sugar().With("app", GetAppName())
}
