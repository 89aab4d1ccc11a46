package core

import (
	"github.com/stretchr/testify/assert"
	"github.com/vuuvv/errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindScriptEvaluation, Location: "Server/1:3", Message: "boom"}
	assert.Equal(t, "ScriptEvaluationError at Server/1:3: boom", err.Error())

	err = newError(KindOutOfBounds, nil, "need %d bytes", 4)
	assert.Equal(t, "OutOfBounds: need 4 bytes", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(0), KindOf(nil))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))

	wrapped := errors.Wrapf(newError(KindDecompression, nil, "bad"), "outer")
	assert.Equal(t, KindDecompression, KindOf(wrapped))
	assert.NotEqual(t, KindScriptCompile, KindOf(wrapped))
}

func TestErrorIs(t *testing.T) {
	err := newError(KindScriptNotFound, nil, "x")
	assert.ErrorIs(t, err, ErrScriptNotFound)
	assert.NotErrorIs(t, err, ErrScriptCompile)
}

func TestCauseMessage(t *testing.T) {
	err := errors.Wrapf(errors.WithStack(errors.New("undeclared reference")), "compile 'then' failed")
	msg := causeMessage(err)
	assert.Contains(t, msg, "compile 'then' failed")
	assert.Contains(t, msg, "undeclared reference")

	se := &stepError{Line: 3, Err: errors.New("bad")}
	assert.Equal(t, "line 3: bad", se.Error())
	assert.Same(t, se, innermostStepError(errors.WithStack(se)))
	assert.Nil(t, innermostStepError(errors.New("plain")))
}
