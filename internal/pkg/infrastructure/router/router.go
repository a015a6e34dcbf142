package router

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"

	"github.com/diwise/sensor-report/domain"
	"github.com/diwise/sensor-report/internal/pkg/application"
	"github.com/diwise/sensor-report/internal/pkg/application/chart"
)

const defaultInterval string = "day"

type Router interface {
	Start(port string) error
}

type routerStruct struct {
	router chi.Router
	app    application.SensorReport
	log    zerolog.Logger
}

func SetupRouter(chiRouter chi.Router, app application.SensorReport, log zerolog.Logger) *routerStruct {
	r := &routerStruct{
		router: chiRouter,
		app:    app,
		log:    log,
	}

	chiRouter.Use(middleware.Logger)
	chiRouter.Get("/health", r.health)
	chiRouter.Get("/api/reports/{node}", r.report)

	return r
}

func (r *routerStruct) Start(port string) error {
	r.log.Info().Str("port", port).Msg("starting to listen for connections")
	return http.ListenAndServe(fmt.Sprintf(":%s", port), r.router)
}

func (router *routerStruct) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (router *routerStruct) report(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node")

	intervalName := r.URL.Query().Get("interval")
	if intervalName == "" {
		intervalName = defaultInterval
	}

	log := router.log.With().Str("node", nodeID).Str("interval", intervalName).Logger()

	report, err := router.app.Compose(r.Context(), nodeID, intervalName)
	if err != nil {
		log.Error().Err(err).Msg("failed to compose report")
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err = chart.Render(report, &buf); err != nil {
		log.Error().Err(err).Msg("failed to render report")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.Filename()))
	w.WriteHeader(http.StatusOK)

	if _, err = buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("failed to write report to response")
	}
}

func statusFor(err error) int {
	var unknown domain.UnknownIntervalError
	var notFound domain.NodeNotFoundError
	var malformed domain.MalformedReadingError

	switch {
	case errors.As(err, &unknown):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &malformed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
