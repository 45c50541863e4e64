package ctxlog

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContextMissingLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
	// Must not panic.
	logger.Info("ignored")
}

func TestNewLevels(t *testing.T) {
	var quiet, loud bytes.Buffer

	New(&quiet, false).Debug("hidden detail")
	New(&quiet, false).Warn("visible warning")
	New(&loud, true).Debug("shown detail", "step", "fetch")

	assert.NotContains(t, quiet.String(), "hidden detail")
	assert.Contains(t, quiet.String(), "visible warning")
	assert.Contains(t, loud.String(), "shown detail")
	assert.Contains(t, loud.String(), "step=fetch")
	assert.NotContains(t, loud.String(), "time=")
}
