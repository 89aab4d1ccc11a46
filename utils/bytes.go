package utils

const (
	PaddingLeft  string = "left"  // 在前面填充
	PaddingRight string = "right" // 在后面填充
)

func ResizeBytes(data []byte, size int, padByte byte, position string) []byte {
	if position == "" {
		position = PaddingRight
	}
	if size < 0 {
		return nil
	}
	if len(data) == size {
		return data
	}
	if len(data) > size {
		return data[:size]
	}

	result := make([]byte, size)
	needPad := size - len(data)
	switch position {
	case PaddingLeft:
		for i := 0; i < needPad; i++ {
			result[i] = padByte
		}
		copy(result[needPad:], data)
	default:
		copy(result, data)
		for i := len(data); i < size; i++ {
			result[i] = padByte
		}
	}
	return result
}
