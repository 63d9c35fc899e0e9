package obs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_StampsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, runID := NewLogger(&buf, false)
	require.NotEmpty(t, runID)

	logger.Info("hello")
	assert.Contains(t, buf.String(), runID)
	assert.Contains(t, buf.String(), "hello")
}

func TestNewLogger_VerboseEnablesDebugLevel(t *testing.T) {
	var quiet, verbose bytes.Buffer

	quietLogger, _ := NewLogger(&quiet, false)
	quietLogger.Debug("should not appear")
	assert.Empty(t, quiet.String())

	verboseLogger, _ := NewLogger(&verbose, true)
	verboseLogger.Debug("should appear")
	assert.Contains(t, verbose.String(), "should appear")
}

func TestRunRegistry_LastReflectsMostRecentRecord(t *testing.T) {
	reg := NewRunRegistry()
	assert.Nil(t, reg.Last())

	reg.Record(RunSummary{RunID: "first", ResultCount: 1})
	reg.Record(RunSummary{RunID: "second", ResultCount: 2})

	last := reg.Last()
	require.NotNil(t, last)
	assert.Equal(t, "second", last.RunID)
	assert.Equal(t, 2, last.ResultCount)
}

func TestInstallTracerProvider_QuietModeNeedsNoExporter(t *testing.T) {
	var buf bytes.Buffer
	tp, err := InstallTracerProvider(&buf, false)
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Empty(t, buf.String())
}
