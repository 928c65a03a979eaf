package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedApp() (*Application, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return &Application{logger: zap.New(core)}, logs
}

func TestFinishLogsRelaunchFailure(t *testing.T) {
	app, logs := newObservedApp()

	err := app.finish(true, func() error { return errors.New("exec format error") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec format error")

	entries := logs.FilterMessage("Relaunch failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "exec format error")
}

func TestFinishRelaunchesOnlyOnRestart(t *testing.T) {
	app, logs := newObservedApp()

	called := false
	require.NoError(t, app.finish(false, func() error {
		called = true
		return nil
	}))
	assert.False(t, called)

	require.NoError(t, app.finish(true, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
	assert.Equal(t, 1, logs.FilterMessage("Relaunched updated executable").Len())
}
