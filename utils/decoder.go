package utils

import (
	"encoding/binary"
	"encoding/hex"
	"github.com/vuuvv/errors"
	"golang.org/x/exp/constraints"
	"strconv"
	"strings"
	"unicode"
)

func Uint64ToBytes[T constraints.Integer](u T, size int, order binary.ByteOrder) []byte {
	data := make([]byte, 8)
	order.PutUint64(data, uint64(u))

	switch order {
	case binary.LittleEndian:
		return data[:size]
	default: // 默认情况是大端的
		return data[8-size:]
	}
}

const defaultNumberSize = 4

// ParseTValue 解析一个字面量 T[n]'xxx' 为字节:
// b 二进制, o 八进制, d 十进制, x/h 十六进制, s 字符串; n 为字节数.
// 不带类型的输入整体视为十六进制.
func ParseTValue(input string, order binary.ByteOrder) ([]byte, error) {
	typeID, size, dataStr := splitTValue(input)

	switch typeID {
	case "b", "o", "d":
		if size < 0 {
			size = defaultNumberSize
		}
		if size < 1 || size > 8 {
			return nil, errors.Errorf("invalid number size %d in '%s', should be 1-8", size, input)
		}
		u, err := parseNumber(typeID, dataStr)
		if err != nil {
			return nil, errors.Errorf("invalid number '%s': %s", input, err)
		}
		return Uint64ToBytes(u, size, order), nil

	case "x", "h":
		hexStr := strings.TrimPrefix(strings.TrimPrefix(dataStr, "0x"), "h")
		hexStr = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) || r == ':' || r == '-' {
				return -1
			}
			return r
		}, hexStr)
		// 奇数长度时补零
		if len(hexStr)%2 != 0 {
			hexStr = "0" + hexStr
		}
		value, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, errors.Errorf("invalid hex string '%s': %s", input, err)
		}
		if size < 0 {
			return value, nil
		}
		return ResizeBytes(value, size, 0, PaddingRight), nil

	case "s":
		value := []byte(dataStr)
		if size < 0 {
			return value, nil
		}
		return ResizeBytes(value, size, 0, PaddingRight), nil
	}
	return nil, errors.Errorf("unrecognized type identifier: %s. Expected b, o, d, x, h, or s.", typeID)
}

// ParsePacket 解析由空白分隔的多个字面量并依次拼接
func ParsePacket(text string, order binary.ByteOrder) ([]byte, error) {
	var out []byte
	for _, token := range tokenize(text) {
		value, err := ParseTValue(token, order)
		if err != nil {
			return nil, err
		}
		out = append(out, value...)
	}
	return out, nil
}

func splitTValue(input string) (typeID string, size int, data string) {
	size = -1
	quote := strings.IndexByte(input, '\'')
	if quote < 1 || len(input) < quote+2 || input[len(input)-1] != '\'' {
		return "h", size, input
	}
	prefix := input[:quote]
	if n, err := strconv.Atoi(prefix[1:]); err == nil {
		size = n
	} else if len(prefix) > 1 {
		return "h", -1, input
	}
	return strings.ToLower(prefix[:1]), size, input[quote+1 : len(input)-1]
}

func parseNumber(typeID string, s string) (uint64, error) {
	switch typeID {
	case "b":
		return strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0b"), "b"), 2, 64)
	case "o":
		return strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 64)
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint64(i), nil
}

// tokenize 按空白切分, 引号内的空白保留
func tokenize(text string) []string {
	var tokens []string
	var sb strings.Builder
	quoted := false
	for _, r := range text {
		switch {
		case r == '\'':
			quoted = !quoted
			sb.WriteRune(r)
		case unicode.IsSpace(r) && !quoted:
			if sb.Len() > 0 {
				tokens = append(tokens, sb.String())
				sb.Reset()
			}
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}
