package core

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestBufferReadWidths(t *testing.T) {
	data := []byte{
		0x01,       // bool
		0xFF,       // int8
		0xFE,       // uint8
		0x34, 0x12, // uint16
		0xFE, 0xFF, // int16
		0x78, 0x56, 0x34, 0x12, // uint32
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, // int64
	}
	buf := NewBuffer(data, Outbound)

	b, err := buf.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	i8, err := buf.ReadInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	u8, err := buf.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFE), u8)

	u16, err := buf.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	i16, err := buf.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	u32, err := buf.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	i64, err := buf.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64+1), i64)

	assert.Equal(t, 0, buf.Remaining())
	assert.Equal(t, len(data), buf.Pos())
}

func TestBufferFloats(t *testing.T) {
	data := make([]byte, 12)
	byteOrder.PutUint32(data, math.Float32bits(1.5))
	byteOrder.PutUint64(data[4:], math.Float64bits(-2.25))
	buf := NewBuffer(data, Inbound)

	f, err := buf.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	d, err := buf.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, -2.25, d)
}

func TestBufferRemainingArithmetic(t *testing.T) {
	buf := NewBuffer(make([]byte, 10), Outbound)
	assert.Equal(t, 10, buf.Remaining())

	require.NoError(t, buf.Skip(3))
	assert.Equal(t, 7, buf.Remaining())

	_, err := buf.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, 3, buf.Remaining())
	assert.Equal(t, buf.Len(), buf.Pos()+buf.Remaining())

	rest := buf.RemainingBytes()
	assert.Len(t, rest, 3)
	assert.Equal(t, 0, buf.Remaining())

	buf.Reset()
	assert.Equal(t, 0, buf.Pos())
	assert.Equal(t, 10, buf.Remaining())
}

func TestBufferOutOfBounds(t *testing.T) {
	buf := NewBuffer(nil, Outbound)
	_, err := buf.ReadUint8()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, KindOutOfBounds, KindOf(err))
	assert.Equal(t, 0, buf.Pos())

	buf = NewBuffer([]byte{1, 2, 3}, Outbound)
	require.NoError(t, buf.Skip(1))
	_, err = buf.ReadUint32()
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 1, buf.Pos(), "failed read must not move the cursor")

	assert.ErrorIs(t, buf.Skip(5), ErrOutOfBounds)
	assert.ErrorIs(t, buf.Skip(-1), ErrOutOfBounds)
	assert.Equal(t, 1, buf.Pos())
}

func TestBufferIsSnapshot(t *testing.T) {
	data := []byte{1, 2, 3}
	buf := NewBuffer(data, Outbound)
	data[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, buf.Bytes())

	out := buf.Bytes()
	out[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, buf.Bytes())
}

func TestReadFixedString(t *testing.T) {
	buf := NewBuffer([]byte{0x41, 0x42, 0x00, 0x43}, Outbound)
	s, err := buf.ReadFixedString(3)
	require.NoError(t, err)
	assert.Equal(t, "AB", s)
	assert.Equal(t, 3, buf.Pos())

	s, err = buf.ReadFixedString(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = buf.ReadFixedString(2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 3, buf.Pos())
}

func TestReadPrefixedString(t *testing.T) {
	buf := NewBuffer([]byte{0x02, 'h', 'i', 0x03, 0x00, 'a', 'b', 'c'}, Outbound)
	s, err := buf.ReadPrefixedString(8)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	s, err = buf.ReadPrefixedString(16)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	_, err = buf.ReadPrefixedString(32)
	assert.Error(t, err)
}

func TestReadPrefixedStringShortBody(t *testing.T) {
	buf := NewBuffer([]byte{0x05, 'a', 'b'}, Outbound)
	_, err := buf.ReadPrefixedString(8)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 0, buf.Pos(), "prefix is not consumed when the body is short")
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"inbound", "In", "CLIENT", "cmsg"} {
		d, ok := ParseDirection(s)
		assert.True(t, ok, s)
		assert.Equal(t, Inbound, d, s)
	}
	for _, s := range []string{"outbound", "out", "Server", "SMSG"} {
		d, ok := ParseDirection(s)
		assert.True(t, ok, s)
		assert.Equal(t, Outbound, d, s)
	}
	_, ok := ParseDirection("sideways")
	assert.False(t, ok)

	assert.Equal(t, "Client", Inbound.Folder())
	assert.Equal(t, "Server", Outbound.Folder())
}
