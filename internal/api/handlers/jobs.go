package handlers

import (
	"net/http"

	"github.com/wonny/dealfunnel/internal/scheduler"
)

// JobStatusSource reports background job runs
type JobStatusSource interface {
	Status() []scheduler.Status
}

// JobsHandler exposes the background job status
type JobsHandler struct {
	jobs JobStatusSource
}

// NewJobsHandler creates a jobs handler
func NewJobsHandler(jobs JobStatusSource) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// JobsResponse is the jobs endpoint payload
type JobsResponse struct {
	Jobs []scheduler.Status `json:"jobs"`
}

// GetJobs returns the recent runs of every scheduled job
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, JobsResponse{Jobs: h.jobs.Status()})
}
