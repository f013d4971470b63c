package ebc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerAccumulates(t *testing.T) {
	g := NewTimerGroup(true)
	now := time.Unix(0, 0)
	g.now = func() time.Time { return now }

	g.Start(TimerDependencyAnalysis)
	now = now.Add(30 * time.Millisecond)
	g.Stop(TimerDependencyAnalysis)

	g.Start(TimerDependencyAnalysis)
	now = now.Add(20 * time.Millisecond)
	g.Stop(TimerDependencyAnalysis)

	assert.Equal(t, 50*time.Millisecond, g.Elapsed(TimerDependencyAnalysis))
	assert.Zero(t, g.Elapsed(TimerTotal))
}

func TestTimerDisabledIsInert(t *testing.T) {
	g := NewTimerGroup(false)
	now := time.Unix(0, 0)
	g.now = func() time.Time { return now }

	g.Start(TimerTotal)
	now = now.Add(time.Second)
	g.Stop(TimerTotal)

	assert.Zero(t, g.Elapsed(TimerTotal))
}

func TestTimerStopWithoutStart(t *testing.T) {
	g := NewTimerGroup(true)
	g.Stop(TimerRepair)
	assert.Zero(t, g.Elapsed(TimerRepair))
}

func TestTimerReset(t *testing.T) {
	g := NewTimerGroup(true)
	now := time.Unix(0, 0)
	g.now = func() time.Time { return now }

	g.Start(TimerCleanup)
	now = now.Add(time.Millisecond)
	g.Stop(TimerCleanup)
	require.NotZero(t, g.Elapsed(TimerCleanup))

	g.Reset()
	assert.Zero(t, g.Elapsed(TimerCleanup))
}

func TestTimerReportListsFullTaxonomy(t *testing.T) {
	g := NewTimerGroup(true)
	var buf bytes.Buffer
	require.NoError(t, g.Report(&buf))

	out := buf.String()
	assert.Equal(t, int(timerCount), bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, out, "1.00 Instantiation creation")
	assert.Contains(t, out, "2.01 Dependency analysis")
	assert.Contains(t, out, "2.13 EBC Total")
}
