package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	s := New()
	s.Update()
	s.Update()
	s.Failed()
	s.SetWsClients(3)

	r := s.Report()
	assert.Equal(t, uint64(2), r.FramesProcessed)
	assert.Equal(t, uint64(1), r.FramesFailed)
	assert.Equal(t, 3, r.WsClients)
	assert.Greater(t, r.Uptime, 0.0)
}
