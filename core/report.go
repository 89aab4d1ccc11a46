package core

import (
	"strings"
)

const asciiPlaceholder = '.'

// Report 一次解析的结果, 生成后不可修改
type Report struct {
	PassId       string    `json:"passId,omitempty"`
	Direction    Direction `json:"direction"`
	Opcode       uint16    `json:"opcode"`
	DeclaredSize uint32    `json:"declaredSize"`
	Decompressed bool      `json:"decompressed"`
	Text         string    `json:"text"`
	Err          error     `json:"-"`
}

func (r *Report) String() string {
	return r.Text
}

func FormatHex(data []byte) string {
	const digits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for i, c := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(digits[c>>4])
		sb.WriteByte(digits[c&0x0f])
	}
	return sb.String()
}

// FormatASCII 不可打印字符以 '.' 代替
func FormatASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, c := range data {
		if c >= 0x20 && c < 0x7f {
			out[i] = c
		} else {
			out[i] = asciiPlaceholder
		}
	}
	return string(out)
}

func writePreamble(sink *Sink, h *Header, direction Direction) {
	sink.Line("Opcode : %d", h.Opcode)
	sink.Line("Direction : %s", direction)
	sink.Line("Size : %d", h.DeclaredSize)
	sink.Line("")
	sink.Line("Structure :")
	sink.Line("")
}

func writeTrailer(sink *Sink, rest []byte) {
	sink.Line("")
	sink.Line("Data left : %d", len(rest))
	sink.Line("ASCII LEFT: %s", FormatASCII(rest))
	sink.Line("HEX LEFT: %s", FormatHex(rest))
}
