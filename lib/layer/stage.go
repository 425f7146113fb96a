package layer

import "context"

// Source produces frames into its forwarder from its own goroutines once
// started. Start returns false if the source could not be brought up.
// The forwarder is closed when the source runs out of input.
type Source interface {
	Frames() *FrameForwarder
	Start(ctx context.Context) bool
}

// Sink consumes the frames published on its forwarder. Done is closed once
// the sink has written the last frame of a closed forwarder or given up;
// Err then tells which.
type Sink interface {
	Frames() *FrameForwarder
	Start(ctx context.Context) bool
	Done() <-chan struct{}
	Err() error
}
