package core

import (
	"bytes"
)

// Header 报文头: 声明长度(uint32), 客户端方向多一个填充字节, 操作码(uint16)
type Header struct {
	DeclaredSize uint32
	Opcode       uint16
	Raw          []byte // 读头时实际消费的字节, 解压后原样复用
}

// ReadHeader 从当前游标解析报文头, 失败时游标回到起点
func ReadHeader(buf *Buffer) (*Header, error) {
	start := buf.Pos()
	h := &Header{}
	var err error

	if h.DeclaredSize, err = buf.ReadUint32(); err != nil {
		buf.pos = start
		return nil, err
	}

	// 客户端方向的报文在长度后还有一个未知字节, 读出后丢弃
	if buf.Direction() == Inbound {
		if _, err = buf.ReadUint8(); err != nil {
			buf.pos = start
			return nil, err
		}
	}

	if h.Opcode, err = buf.ReadUint16(); err != nil {
		buf.pos = start
		return nil, err
	}

	h.Raw = bytes.Clone(buf.data[start:buf.pos])
	return h, nil
}

func (h *Header) Len() int {
	return len(h.Raw)
}
