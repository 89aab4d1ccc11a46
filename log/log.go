package log

import (
	"fmt"
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

func Logger() *zap.Logger {
	return logger
}

// SetLogger 同时替换 zap 的全局 logger, nil 表示关闭日志
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	zap.ReplaceGlobals(l)
}

// Pass 一次解析使用的 logger, 每条日志都带上 pass id 和方向
func Pass(passId string, direction fmt.Stringer) *zap.Logger {
	return logger.With(zap.String("pass", passId), zap.Stringer("direction", direction))
}

func describe(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return fmt.Sprintf("%+v", v)
	}
	return cast.ToString(val)
}

// CastToError 把 recover 的值或任意错误转成带堆栈的 error, debug 级别时消息里包含堆栈
func CastToError(reason any) (string, error) {
	var err error
	switch v := reason.(type) {
	case nil:
		err = errors.NewAndSkip("unknown error", 2)
	case error:
		err = errors.WithStackAndSkip(v, 2)
	default:
		err = errors.NewAndSkip(describe(v), 2)
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		return fmt.Sprintf("%+v", err), err
	}
	return err.Error(), err
}

func Error(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)
	logger.Error(msg, append(field, zap.Error(err))...)
}

func Warn(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)
	logger.Warn(msg, append(field, zap.Error(err))...)
}

func Info(msg string, field ...zap.Field) {
	logger.Info(msg, field...)
}

func Debug(msg string, field ...zap.Field) {
	logger.Debug(msg, field...)
}
