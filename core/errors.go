package core

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	KindOutOfBounds ErrorKind = iota + 1
	KindDecompression
	KindScriptNotFound
	KindScriptCompile
	KindScriptEvaluation
)

func (k ErrorKind) String() string {
	switch k {
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindDecompression:
		return "DecompressionFailure"
	case KindScriptNotFound:
		return "ScriptNotFound"
	case KindScriptCompile:
		return "ScriptCompileError"
	case KindScriptEvaluation:
		return "ScriptEvaluationError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error 引擎对外返回的结构化错误, 使用 errors.Is 与下面的哨兵比较
type Error struct {
	Kind     ErrorKind
	Message  string
	Location string // 脚本位置, 例如 Server/42.yaml:7
	Err      error
}

var (
	ErrOutOfBounds      = &Error{Kind: KindOutOfBounds}
	ErrDecompression    = &Error{Kind: KindDecompression}
	ErrScriptNotFound   = &Error{Kind: KindScriptNotFound}
	ErrScriptCompile    = &Error{Kind: KindScriptCompile}
	ErrScriptEvaluation = &Error{Kind: KindScriptEvaluation}
)

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf 返回错误链上第一个 *Error 的类型, 没有则为 0
func KindOf(err error) ErrorKind {
	for ; err != nil; err = unwrapOnce(err) {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
	}
	return 0
}

func unwrapOnce(err error) error {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap()
	case interface{ Cause() error }:
		return u.Cause()
	}
	return nil
}

// causeMessage 拼接错误链上每一层的消息, 包装层的 Error() 不一定包含原因
func causeMessage(err error) string {
	var parts []string
	for err != nil {
		msg := err.Error()
		next := unwrapOnce(err)
		if next != nil {
			if inner := next.Error(); inner != "" && strings.HasSuffix(msg, inner) {
				msg = strings.TrimSuffix(strings.TrimSuffix(msg, inner), ": ")
			}
		}
		if msg != "" && (len(parts) == 0 || parts[len(parts)-1] != msg) {
			parts = append(parts, msg)
		}
		err = next
	}
	return strings.Join(parts, ": ")
}
