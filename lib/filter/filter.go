// Package filter hosts the brightness transform as a frame filter with a
// runtime adjustable property.
package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fosdem/lumafilter/lib/brightness"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/metrics"
)

type FlowReturn int

const (
	FlowOK FlowReturn = iota
	FlowError
)

func (r FlowReturn) String() string {
	switch r {
	case FlowOK:
		return "ok"
	case FlowError:
		return "error"
	default:
		return fmt.Sprintf("FlowReturn(%d)", int(r))
	}
}

const (
	PropBrightness = "brightness"

	EventSetBrightness = "set-brightness"
)

var ErrUnknownProperty = errors.New("unknown property")

// PropertySpec describes a property for introspection by the api.
type PropertySpec struct {
	Name    string
	Blurb   string
	Min     float64
	Max     float64
	Default float64
}

var Properties = []PropertySpec{
	{
		Name:    PropBrightness,
		Blurb:   "Additive brightness factor, scaled by 255 and clamped per format",
		Min:     brightness.Min,
		Max:     brightness.Max,
		Default: brightness.Default,
	},
}

type EventListener func(f *Filter, data interface{})

type pendingEvent struct {
	name string
	data interface{}
}

type EventDataSetBrightness struct {
	Event      string
	Brightness float64
	Offset     int
}

// Filter applies the current brightness to every frame it processes. The
// brightness can be changed from any goroutine while frames are flowing; a
// frame sees either the old or the new value, never a mix.
type Filter struct {
	// float64 bits of the current factor
	factor atomic.Uint64

	fatal atomic.Pointer[error]

	// held across storing a value and queueing its event, so events come
	// out in the order the values were stored
	setMutex sync.Mutex

	listenerMutex sync.Mutex
	listener      map[string][]EventListener

	eventMutex  sync.Mutex
	events      []pendingEvent
	dispatching bool

	logger *slog.Logger
}

func New(initial brightness.Brightness) *Filter {
	f := &Filter{
		listener: make(map[string][]EventListener),
		logger:   slog.Default().With(slog.String("module", "filter")),
	}
	f.store(initial)
	return f
}

func (f *Filter) store(b brightness.Brightness) {
	f.factor.Store(math.Float64bits(b.Factor()))
	metrics.Brightness.Set(b.Factor())
}

func (f *Filter) Brightness() brightness.Brightness {
	return brightness.MustNew(math.Float64frombits(f.factor.Load()))
}

// SetBrightness validates and applies a new factor. On error the previous
// value is kept.
func (f *Filter) SetBrightness(factor float64) error {
	b, err := brightness.New(factor)
	if err != nil {
		return err
	}
	f.setMutex.Lock()
	defer f.setMutex.Unlock()

	f.store(b)
	f.logger.Info("brightness changed", slog.String("brightness", b.String()), slog.Int("offset", b.Offset()))
	f.invoke(EventSetBrightness, &EventDataSetBrightness{
		Event:      EventSetBrightness,
		Brightness: b.Factor(),
		Offset:     b.Offset(),
	})
	return nil
}

func (f *Filter) SetProperty(name string, value float64) error {
	switch name {
	case PropBrightness:
		return f.SetBrightness(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
}

func (f *Filter) GetProperty(name string) (float64, error) {
	switch name {
	case PropBrightness:
		return f.Brightness().Factor(), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
}

// Process runs the transform on one frame. out may be nil or in for in-place
// operation. An unsupported format is latched, since every following frame
// of the stream will have the same format.
func (f *Filter) Process(in, out *encdec.Frame) FlowReturn {
	if f.fatal.Load() != nil {
		metrics.FilterFrames.WithLabelValues("error").Inc()
		return FlowError
	}

	b := f.Brightness()
	start := time.Now()
	err := brightness.Transform(in, b, out)
	if err != nil {
		metrics.FilterFrames.WithLabelValues("error").Inc()
		if errors.Is(err, brightness.ErrUnsupportedFormat) {
			f.Fail(err)
		} else {
			f.logger.Error("transform failed", slog.String("error", err.Error()))
		}
		return FlowError
	}

	metrics.TransformSeconds.WithLabelValues(familyLabel(in.Type)).Observe(time.Since(start).Seconds())
	if b.IsNeutral() {
		metrics.FilterFrames.WithLabelValues("passthrough").Inc()
	} else {
		metrics.FilterFrames.WithLabelValues("adjusted").Inc()
	}
	return FlowOK
}

// Fail latches err as fatal: every later Process call returns FlowError.
// Only the first error is kept.
func (f *Filter) Fail(err error) {
	if f.fatal.CompareAndSwap(nil, &err) {
		f.logger.Error("cannot process stream", slog.String("error", err.Error()))
	}
}

// Err returns the latched fatal error, if any.
func (f *Filter) Err() error {
	if p := f.fatal.Load(); p != nil {
		return *p
	}
	return nil
}

func familyLabel(t encdec.FrameType) string {
	switch t.Family() {
	case encdec.FamilyPlanarYUV:
		return "planar_yuv"
	case encdec.FamilyPackedRGB:
		return "packed_rgb"
	default:
		return "unsupported"
	}
}

func (f *Filter) AddEventListener(event string, callback EventListener) {
	f.listenerMutex.Lock()
	defer f.listenerMutex.Unlock()
	f.listener[event] = append(f.listener[event], callback)
}

// invoke queues an event. Listeners run on a single dispatch goroutine,
// which exits once the queue is empty, so they see events in order and
// never block the caller.
func (f *Filter) invoke(event string, data interface{}) {
	f.eventMutex.Lock()
	defer f.eventMutex.Unlock()
	f.events = append(f.events, pendingEvent{name: event, data: data})
	if !f.dispatching {
		f.dispatching = true
		go f.dispatch()
	}
}

func (f *Filter) dispatch() {
	for {
		f.eventMutex.Lock()
		if len(f.events) == 0 {
			f.dispatching = false
			f.eventMutex.Unlock()
			return
		}
		ev := f.events[0]
		f.events[0] = pendingEvent{}
		f.events = f.events[1:]
		f.eventMutex.Unlock()

		f.listenerMutex.Lock()
		listeners := f.listener[ev.name]
		f.listenerMutex.Unlock()
		for _, listener := range listeners {
			listener(f, ev.data)
		}
	}
}
