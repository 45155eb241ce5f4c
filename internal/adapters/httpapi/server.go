package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/common"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/commands"
	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning/jobs"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// Server is the daemon's JSON-over-HTTP surface for planning jobs.
// It is a thin shell over the mediator; all behaviour lives in the
// application layer.
type Server struct {
	mediator common.Mediator
	logger   *zap.SugaredLogger
	mux      *http.ServeMux
}

// NewServer wires the planning routes
func NewServer(mediator common.Mediator, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{mediator: mediator, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /schedules/{id}/optimize/jobs", s.startOptimize)
	s.mux.HandleFunc("GET /schedules/{id}/optimize/jobs/{jobId}", s.getJob)
	s.mux.HandleFunc("POST /schedules/{id}/optimize/jobs/{jobId}/stop", s.stopJob)
	s.mux.HandleFunc("GET /schedules/{id}/optimize/jobs/{jobId}/result", s.jobResult)
	s.mux.HandleFunc("POST /schedules/calculate-max/jobs", s.startEstimate)
	s.mux.HandleFunc("GET /schedules/calculate-max/jobs/{jobId}", s.getJobNoSchedule)
	s.mux.HandleFunc("POST /schedules/{id}/validate", s.validateSchedule)
	s.mux.HandleFunc("PUT /schedules/{id}/confirm", s.confirmSchedule)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// jobRequestBody is the start-job payload
type jobRequestBody struct {
	DriverAvailability driver.Availability `json:"driverAvailability"`
	TimeLimitSeconds   int                 `json:"timeLimitSeconds"`
	ScheduleID         string              `json:"scheduleId"` // calculate-max carries it in the body
}

func (s *Server) startOptimize(w http.ResponseWriter, r *http.Request) {
	var body jobRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	s.send(w, r, &commands.OptimizeScheduleCommand{
		ScheduleID:       r.PathValue("id"),
		Availability:     body.DriverAvailability,
		TimeLimitSeconds: body.TimeLimitSeconds,
	}, http.StatusAccepted)
}

func (s *Server) startEstimate(w http.ResponseWriter, r *http.Request) {
	var body jobRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	s.send(w, r, &commands.EstimateCapacityCommand{
		ScheduleID:   body.ScheduleID,
		Availability: body.DriverAvailability,
	}, http.StatusAccepted)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.GetJobQuery{JobID: r.PathValue("jobId")}, http.StatusOK)
}

func (s *Server) getJobNoSchedule(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.GetJobQuery{JobID: r.PathValue("jobId")}, http.StatusOK)
}

func (s *Server) jobResult(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.JobResultQuery{JobID: r.PathValue("jobId")}, http.StatusOK)
}

func (s *Server) stopJob(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.StopJobCommand{JobID: r.PathValue("jobId")}, http.StatusOK)
}

func (s *Server) validateSchedule(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.ValidateScheduleCommand{ScheduleID: r.PathValue("id")}, http.StatusOK)
}

func (s *Server) confirmSchedule(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, &commands.ConfirmScheduleCommand{ScheduleID: r.PathValue("id")}, http.StatusOK)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(into)
	if err != nil && !errors.Is(err, context.Canceled) && err.Error() != "EOF" {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) send(w http.ResponseWriter, r *http.Request, request common.Request, okStatus int) {
	resp, err := s.mediator.Send(r.Context(), request)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(okStatus)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warnw("failed to encode response", "error", err)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var invalid *shared.InvalidInputError
	var validation *shared.ValidationError
	switch {
	case errors.As(err, &invalid), errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, jobs.ErrScheduleBusy):
		status = http.StatusConflict
	case errors.Is(err, jobs.ErrJobNotFound), strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
