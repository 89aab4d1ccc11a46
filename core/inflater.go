package core

import (
	"github.com/vuuvv/errors"
)

// Inflater 把压缩的负载还原, 失败时必须返回错误, 不能退回原始字节
type Inflater interface {
	Inflate(data []byte) ([]byte, error)
}

type InflaterFunc func(data []byte) ([]byte, error)

func (f InflaterFunc) Inflate(data []byte) ([]byte, error) {
	return f(data)
}

const DefaultInflater = "zlib"

var inflaters = make(map[string]Inflater)

func RegisterInflater(name string, inflater Inflater) {
	inflaters[name] = inflater
}

func GetInflater(name string) (Inflater, error) {
	if name == "" {
		name = DefaultInflater
	}
	if fn, ok := inflaters[name]; ok {
		return fn, nil
	}
	return nil, errors.Errorf("Inflater not found %s", name)
}
