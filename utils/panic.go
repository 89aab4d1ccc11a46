package utils

import (
	"github.com/vuuvv/vdissect/log"
)

// Recover 必须直接 defer 调用, panic 的值转成带堆栈的 error 后交给 handler
func Recover(handler func(msg string, err error)) {
	if r := recover(); r != nil {
		msg, err := log.CastToError(r)
		log.Error(err)
		handler(msg, err)
	}
}
