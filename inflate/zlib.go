package inflate

import (
	"bytes"
	"encoding/binary"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
	"io"
)

const (
	Zlib    = "zlib"
	Qt      = "qt"
	Deflate = "deflate"
)

// MaxInflatedSize 解压后的上限, 防止异常数据撑爆内存
const MaxInflatedSize = 64 << 20

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInflatedSize+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(data) > MaxInflatedSize {
		return nil, errors.Errorf("inflated payload exceeds %d bytes", MaxInflatedSize)
	}
	return data, nil
}

// InflateZlib 标准 zlib 流 (RFC 1950)
func InflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		_ = r.Close()
	}()
	return readAll(r)
}

// InflateDeflate 没有 zlib 头的原始 deflate 流 (RFC 1951)
func InflateDeflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer func() {
		_ = r.Close()
	}()
	return readAll(r)
}

// InflateQt qCompress 格式: 4 字节大端的解压后长度 + zlib 流
func InflateQt(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.Errorf("qt payload too short: %d bytes", len(data))
	}
	expected := binary.BigEndian.Uint32(data[:4])
	if expected > MaxInflatedSize {
		return nil, errors.Errorf("qt payload declares %d bytes, exceeds %d", expected, MaxInflatedSize)
	}
	out, err := InflateZlib(data[4:])
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != expected {
		return nil, errors.Errorf("qt payload declares %d bytes, inflated %d", expected, len(out))
	}
	return out, nil
}

func Register() {
	core.RegisterInflater(Zlib, core.InflaterFunc(InflateZlib))
	core.RegisterInflater(Qt, core.InflaterFunc(InflateQt))
	core.RegisterInflater(Deflate, core.InflaterFunc(InflateDeflate))
}
