package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	// a second registration of the same collectors must fail
	assert.Error(t, Register(reg))
}

func TestRecordTick(t *testing.T) {
	ticksTotal.Reset()
	calculatedTotal.Reset()

	RecordTick(true, "happy", 0.01)
	RecordTick(true, "happy", 0.02)
	RecordTick(false, "neutral", 0.001)

	assert.Equal(t, 2.0, testutil.ToFloat64(ticksTotal.WithLabelValues("detected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ticksTotal.WithLabelValues("empty")))
	assert.Equal(t, 2.0, testutil.ToFloat64(calculatedTotal.WithLabelValues("happy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(calculatedTotal.WithLabelValues("neutral")))
}

func TestSessions(t *testing.T) {
	sessionsActive.Set(0)

	SessionOpened()
	SessionOpened()
	SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(sessionsActive))
}

func TestCounters(t *testing.T) {
	transitionsTotal.Reset()
	sfxTotal.Reset()
	tokenRequestsTotal.Reset()
	collaboratorErrorsTotal.Reset()

	RecordTransition("sad")
	RecordSfx("boom")
	RecordTokenRequest("limited")
	RecordCollaboratorError("detector")

	assert.Equal(t, 1.0, testutil.ToFloat64(transitionsTotal.WithLabelValues("sad")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sfxTotal.WithLabelValues("boom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tokenRequestsTotal.WithLabelValues("limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collaboratorErrorsTotal.WithLabelValues("detector")))
}
