package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fosdem/lumafilter/lib/api/docs"
	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/filter"
	"github.com/fosdem/lumafilter/lib/metrics"
	"github.com/fosdem/lumafilter/lib/pipeline"
)

type Api struct {
	srv      http.Server
	mux      *http.ServeMux
	cfg      *config.ApiCfg
	fullCfg  *config.Config
	pipeline *pipeline.Pipeline
	shutdown func()

	wsMutex   sync.Mutex
	wsClients map[*websocket.Conn]bool

	logger *slog.Logger
}

// New builds the api for p. shutdown is called when a client asks the
// process to exit.
func New(cfg *config.ApiCfg, fullCfg *config.Config, p *pipeline.Pipeline, shutdown func()) *Api {
	a := &Api{}
	a.cfg = cfg
	a.fullCfg = fullCfg
	a.mux = http.NewServeMux()
	a.pipeline = p
	a.shutdown = shutdown
	a.srv.Addr = cfg.Bind
	a.srv.Handler = a.mux
	a.wsClients = make(map[*websocket.Conn]bool)
	a.logger = slog.Default().With(slog.String("module", "api"))

	p.Filter.AddEventListener(filter.EventSetBrightness, func(_ *filter.Filter, data interface{}) {
		event := data.(*filter.EventDataSetBrightness)
		packet, err := json.Marshal(event)
		if err != nil {
			a.logger.Error("could not encode event", slog.String("error", err.Error()))
			return
		}
		a.broadcast(packet)
	})

	a.routes()
	return a
}

func (a *Api) routes() {
	if a.cfg.EnableProfiler {
		a.mux.HandleFunc("/prof", a.profileCPU)
	}
	if a.cfg.EnableSwagger {
		a.mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}
	a.mux.Handle("/metrics", metrics.Handler())
	a.mux.HandleFunc("POST /api/kill", a.suicide)
	a.mux.HandleFunc("GET /api/stats", a.getStats)
	a.mux.HandleFunc("GET /api/config", a.handleConfig)
	a.mux.HandleFunc("GET /api/properties", a.getProperties)
	a.mux.HandleFunc("GET /api/brightness", a.getBrightness)
	a.mux.HandleFunc("PUT /api/brightness", a.putBrightness)
	a.mux.HandleFunc("GET /api/ws", a.handleWebsocket)
	a.mux.HandleFunc("GET /api/media/{end}", a.getMedia)
	a.mux.HandleFunc("GET /api/media/{end}/{format}", a.getMedia)
	a.mux.HandleFunc("PUT /api/media/source", a.putMediaSource)
}

func (a *Api) Handler() http.Handler {
	return a.mux
}

// Serve listens until ctx is done.
func (a *Api) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(shutdownCtx)
	}()
	err := a.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// @Summary	Record a cpu profile of the running process for 10 seconds
// @Router		/prof [get]
// @Tags		debug
// @Produce	octet-stream
// @Success	200
func (a *Api) profileCPU(w http.ResponseWriter, _ *http.Request) {
	err := pprof.StartCPUProfile(w)
	if err != nil {
		http.Error(w, fmt.Sprintf("Could not start CPU profile: %s", err), http.StatusInternalServerError)
		return
	}
	time.Sleep(10 * time.Second)
	pprof.StopCPUProfile()
}

// @Summary	Stop the filter and exit
// @Router		/api/kill [post]
// @Tags		base
// @Success	200
func (a *Api) suicide(w http.ResponseWriter, _ *http.Request) {
	a.logger.Info("shutting down as per api request")
	a.shutdown()
	a.writeJSON(w, "ok")
}

// @Summary	Get frame counters of the running pipeline
// @Router		/api/stats [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	stats.Report
func (a *Api) getStats(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, a.pipeline.Report())
}

type Config struct {
	Source      string  `json:"source" example:"ffmpeg_stdout"`
	Sink        string  `json:"sink" example:"ffmpeg_stdin"`
	Format      string  `json:"format" example:"I420"`
	Width       int     `json:"width" example:"1920"`
	Height      int     `json:"height" example:"1080"`
	StrideAlign int     `json:"stride_align" example:"64"`
	Brightness  float64 `json:"brightness" example:"0.2"`
	InPlace     bool    `json:"in_place"`
}

// @Summary	Get the configuration the filter was started with
// @Router		/api/config [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	Config
func (a *Api) handleConfig(w http.ResponseWriter, _ *http.Request) {
	result := &Config{
		Source:      a.fullCfg.Source.Type,
		Sink:        a.fullCfg.Sink.Type,
		Format:      a.fullCfg.Frames.Format.String(),
		Width:       a.fullCfg.Frames.Width,
		Height:      a.fullCfg.Frames.Height,
		StrideAlign: a.fullCfg.Frames.StrideAlign,
		Brightness:  a.fullCfg.Filter.Factor,
		InPlace:     a.fullCfg.Filter.InPlace,
	}
	a.writeJSON(w, result)
}

func (a *Api) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(v)
	if err != nil {
		a.logger.Error("could not write response", slog.String("error", err.Error()))
	}
}

// ServeInBackground starts the api when it is configured, and returns nil
// otherwise.
func ServeInBackground(ctx context.Context, fullCfg *config.Config, p *pipeline.Pipeline, shutdown func()) *Api {
	if fullCfg.Api == nil {
		return nil
	}
	theApi := New(fullCfg.Api, fullCfg, p, shutdown)

	theApi.logger.Info("starting web server", slog.String("bind", fullCfg.Api.Bind))
	go func() {
		err := theApi.Serve(ctx)
		if err != nil {
			theApi.logger.Error("could not start web server", slog.String("error", err.Error()))
			shutdown()
		}
	}()
	return theApi
}
