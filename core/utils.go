package core

import (
	"github.com/spf13/cast"
	"math"
)

func CastTo[T any](src any) (target T, ok bool) {
	target, ok = src.(T)
	return
}

// ToInt 脚本表达式返回的数量统一转成 int, 浮点四舍五入
func ToInt(val any) (int, bool) {
	switch v := val.(type) {
	case float32:
		return int(math.Round(float64(v))), true
	case float64:
		return int(math.Round(v)), true
	case bool, nil:
		return 0, false
	}
	i, err := cast.ToIntE(val)
	if err != nil {
		return 0, false
	}
	return i, true
}
