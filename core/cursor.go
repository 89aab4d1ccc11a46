package core

import (
	"bytes"
	"encoding/binary"
	"github.com/vuuvv/errors"
	"math"
	"strings"
)

type Direction int

const (
	Inbound  Direction = iota // 客户端发出
	Outbound                  // 服务端发出
)

func (d Direction) String() string {
	if d == Inbound {
		return "Inbound"
	}
	return "Outbound"
}

// Folder 脚本目录约定: Client/<opcode>, Server/<opcode>
func (d Direction) Folder() string {
	if d == Inbound {
		return "Client"
	}
	return "Server"
}

func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "inbound", "in", "client", "cmsg":
		return Inbound, true
	case "outbound", "out", "server", "smsg":
		return Outbound, true
	}
	return Outbound, false
}

// 全系统统一使用小端
var byteOrder = binary.LittleEndian

// Buffer 一个报文的字节和读取游标, 字节在创建后不再修改
type Buffer struct {
	data      []byte
	pos       int
	direction Direction
}

func NewBuffer(data []byte, direction Direction) *Buffer {
	return &Buffer{data: bytes.Clone(data), direction: direction}
}

func (b *Buffer) Direction() Direction {
	return b.direction
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) Pos() int {
	return b.pos
}

func (b *Buffer) Bytes() []byte {
	return bytes.Clone(b.data)
}

func (b *Buffer) Reset() {
	b.pos = 0
}

func (b *Buffer) Remaining() int {
	return len(b.data) - b.pos
}

// ReadBytes 读取 n 个字节, 不足时不移动游标
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, newError(KindOutOfBounds, nil, "negative length %d", n)
	}
	if n > b.Remaining() {
		return nil, newError(KindOutOfBounds, nil, "need %d bytes at offset %d, have %d", n, b.pos, b.Remaining())
	}
	ret := b.data[b.pos : b.pos+n]
	b.pos += n
	return ret, nil
}

// RemainingBytes 读出剩余全部字节, 游标停在末尾
func (b *Buffer) RemainingBytes() []byte {
	ret := bytes.Clone(b.data[b.pos:])
	b.pos = len(b.data)
	return ret
}

func (b *Buffer) Skip(n int) error {
	_, err := b.ReadBytes(n)
	return err
}

func (b *Buffer) ReadUint8() (uint8, error) {
	bs, err := b.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

func (b *Buffer) ReadUint16() (uint16, error) {
	bs, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint16(bs), nil
}

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) ReadUint32() (uint32, error) {
	bs, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(bs), nil
}

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) ReadUint64() (uint64, error) {
	bs, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint64(bs), nil
}

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadFixedString 读取定长字符串, 文本在第一个 0 字节处截断, 游标按完整长度前进
func (b *Buffer) ReadFixedString(n int) (string, error) {
	bs, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(bs, 0); i >= 0 {
		bs = bs[:i]
	}
	return string(bs), nil
}

// ReadPrefixedString 读取带长度前缀的字符串, prefixBits 为 8 或 16.
// 前缀之后的数据不足时, 前缀也不会被消费.
func (b *Buffer) ReadPrefixedString(prefixBits int) (string, error) {
	start := b.pos
	var n int
	switch prefixBits {
	case 8:
		v, err := b.ReadUint8()
		if err != nil {
			return "", err
		}
		n = int(v)
	case 16:
		v, err := b.ReadUint16()
		if err != nil {
			return "", err
		}
		n = int(v)
	default:
		return "", errors.Errorf("unsupported string prefix width %d", prefixBits)
	}
	s, err := b.ReadFixedString(n)
	if err != nil {
		b.pos = start
		return "", err
	}
	return s, nil
}
