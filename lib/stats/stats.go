package stats

import (
	"sync"
	"time"
)

type Report struct {
	Uptime          float64 `json:"uptime"`
	FPS             uint64  `json:"fps"`
	FramesProcessed uint64  `json:"frames_processed"`
	FramesFailed    uint64  `json:"frames_failed"`
	SourceDropped   uint64  `json:"source_dropped"`
	SinkDropped     uint64  `json:"sink_dropped"`
	Brightness      float64 `json:"brightness"`
	WsClients       int     `json:"ws_clients"`
}

type Stats struct {
	mu     sync.Mutex
	report Report

	frameCounter uint64
	frameTimer   time.Time
	start        time.Time
}

func New() *Stats {
	s := &Stats{}
	s.start = time.Now()
	s.frameTimer = s.start
	return s
}

// Update counts one successfully processed frame.
func (s *Stats) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.FramesProcessed++
	s.frameCounter++
	s.tick()
}

func (s *Stats) Failed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.FramesFailed++
	s.tick()
}

func (s *Stats) tick() {
	if time.Since(s.frameTimer) > 1*time.Second {
		s.fpsReset()
	}
}

// fpsReset publishes the frames counted since the last reset as the fps.
// The caller holds the lock.
func (s *Stats) fpsReset() {
	s.report.FPS = s.frameCounter
	s.frameCounter = 0
	s.frameTimer = time.Now()
}

func (s *Stats) SetWsClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.WsClients = n
}

func (s *Stats) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.Uptime = float64(time.Since(s.start).Nanoseconds()) / 1e9
	return s.report
}
