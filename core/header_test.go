package core

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestReadHeaderOutbound(t *testing.T) {
	buf := NewBuffer([]byte{0x05, 0x00, 0x00, 0x00, 0x2A, 0x00}, Outbound)
	h, err := ReadHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), h.DeclaredSize)
	assert.Equal(t, uint16(42), h.Opcode)
	assert.Equal(t, 6, h.Len())
	assert.Equal(t, 6, buf.Pos())
}

func TestReadHeaderInboundFiller(t *testing.T) {
	buf := NewBuffer([]byte{0x05, 0x00, 0x00, 0x00, 0x01, 0x2A, 0x00}, Inbound)
	h, err := ReadHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), h.DeclaredSize)
	assert.Equal(t, uint16(42), h.Opcode)
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00, 0x01, 0x2A, 0x00}, h.Raw)
	assert.Equal(t, 0, buf.Remaining())
}

func TestReadHeaderTruncated(t *testing.T) {
	for _, data := range [][]byte{
		{},
		{0x05, 0x00},
		{0x05, 0x00, 0x00, 0x00},
		{0x05, 0x00, 0x00, 0x00, 0x2A},
	} {
		buf := NewBuffer(data, Outbound)
		_, err := ReadHeader(buf)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, 0, buf.Pos())
	}

	// 客户端方向少一个字节就不够
	buf := NewBuffer([]byte{0x05, 0x00, 0x00, 0x00, 0x2A, 0x00}, Inbound)
	_, err := ReadHeader(buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
