package log

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

type direction string

func (d direction) String() string {
	return string(d)
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zap.DebugLevel)
	previous := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() {
		SetLogger(previous)
	})
	return logs
}

func TestPassFields(t *testing.T) {
	logs := observe(t)
	Pass("p-1", direction("Outbound")).Debug("pass finished")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "p-1", fields["pass"])
	assert.Equal(t, "Outbound", fields["direction"])
}

func TestWarnCarriesError(t *testing.T) {
	logs := observe(t)
	Warn(errors.New("disk full"), zap.String("name", "blob"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Contains(t, entry.Message, "disk full")
	assert.Equal(t, "blob", entry.ContextMap()["name"])
	assert.Contains(t, entry.ContextMap(), "error")
}

func TestCastToError(t *testing.T) {
	SetLogger(nil)
	msg, err := CastToError("boom")
	require.Error(t, err)
	assert.Equal(t, "boom", msg)

	msg, err = CastToError(nil)
	require.Error(t, err)
	assert.Equal(t, "unknown error", msg)

	_, err = CastToError(42)
	assert.EqualError(t, err, "42")
}
