package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/api"
	"github.com/kumarraju1982/Convertx/internal/ledger"
	"github.com/kumarraju1982/Convertx/internal/svcctx"
)

// JobStatusResponse is the observable state of one conversion job.
type JobStatusResponse struct {
	JobID       string             `json:"job_id"`
	State       string             `json:"state"`
	Filename    string             `json:"filename"`
	Engine      string             `json:"engine,omitempty"`
	PageCount   int                `json:"page_count"`
	PagesDone   int                `json:"pages_done"`
	PagesFailed int                `json:"pages_failed"`
	Percent     int                `json:"percent"`
	Errors      []ledger.PageError `json:"errors,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

func jobStatusResponse(job ledger.Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:       job.ID,
		State:       string(job.State),
		Filename:    job.Filename,
		Engine:      job.Engine,
		PageCount:   job.PageCount,
		PagesDone:   job.PagesDone,
		PagesFailed: job.PagesFailed,
		Percent:     job.Percent(),
		Errors:      job.Errors,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		CompletedAt: job.CompletedAt,
	}
}

// lookupJob fetches a job by path value, writing the error response on
// failure.
func lookupJob(w http.ResponseWriter, r *http.Request) (ledger.Job, bool) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return ledger.Job{}, false
	}

	jobs := svcctx.JobsFrom(r.Context())
	if jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job ledger not initialized")
		return ledger.Job{}, false
	}

	job, err := jobs.Get(jobID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown job: %s", jobID))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return ledger.Job{}, false
	}
	return job, true
}

// JobStatusEndpoint handles GET /api/v1/jobs/{job_id}/status.
type JobStatusEndpoint struct{}

func (e *JobStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/jobs/{job_id}/status", e.handler
}

func (e *JobStatusEndpoint) RequiresInit() bool { return true }

func (e *JobStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	job, ok := lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, jobStatusResponse(job))
}

func (e *JobStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job_id>",
		Short: "Get conversion job status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp JobStatusResponse
			if err := client.Get(cmd.Context(), "/api/v1/jobs/"+args[0]+"/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// JobResultResponse describes the outcome of a finished job.
type JobResultResponse struct {
	JobID       string             `json:"job_id"`
	State       string             `json:"state"`
	OutputPath  string             `json:"output_path,omitempty"`
	DownloadURL string             `json:"download_url,omitempty"`
	PageCount   int                `json:"page_count"`
	PagesFailed int                `json:"pages_failed"`
	Errors      []ledger.PageError `json:"errors,omitempty"`
}

// JobResultEndpoint handles GET /api/v1/jobs/{job_id}/result.
type JobResultEndpoint struct{}

func (e *JobResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/jobs/{job_id}/result", e.handler
}

func (e *JobResultEndpoint) RequiresInit() bool { return true }

func (e *JobResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	job, ok := lookupJob(w, r)
	if !ok {
		return
	}
	if !job.State.Terminal() {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is still %s", job.State))
		return
	}

	resp := JobResultResponse{
		JobID:       job.ID,
		State:       string(job.State),
		OutputPath:  job.OutputPath,
		PageCount:   job.PageCount,
		PagesFailed: job.PagesFailed,
		Errors:      job.Errors,
	}
	if job.State == ledger.StateCompleted {
		resp.DownloadURL = "/api/v1/jobs/" + job.ID + "/download"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *JobResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "result <job_id>",
		Short: "Get the outcome of a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp JobResultResponse
			if err := client.Get(cmd.Context(), "/api/v1/jobs/"+args[0]+"/result", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// JobDownloadEndpoint handles GET /api/v1/jobs/{job_id}/download.
type JobDownloadEndpoint struct{}

func (e *JobDownloadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/jobs/{job_id}/download", e.handler
}

func (e *JobDownloadEndpoint) RequiresInit() bool { return true }

func (e *JobDownloadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	job, ok := lookupJob(w, r)
	if !ok {
		return
	}
	if job.State != ledger.StateCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, nothing to download", job.State))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(job.OutputPath)))
	http.ServeFile(w, r, job.OutputPath)
}

func (e *JobDownloadEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <job_id>",
		Short: "Download the converted document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := out
			if dest == "" {
				dest = args[0] + ".docx"
			}
			client := api.NewClient(getServerURL())
			if err := client.Download(cmd.Context(), "/api/v1/jobs/"+args[0]+"/download", dest); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "f", "", "Destination file (default: <job_id>.docx)")
	return cmd
}

// ListJobsEndpoint handles GET /api/v1/jobs.
type ListJobsEndpoint struct{}

func (e *ListJobsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/jobs", e.handler
}

func (e *ListJobsEndpoint) RequiresInit() bool { return true }

func (e *ListJobsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobs := svcctx.JobsFrom(r.Context())
	if jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job ledger not initialized")
		return
	}

	all := jobs.List()
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	resp := make([]JobStatusResponse, len(all))
	for i, job := range all {
		resp[i] = jobStatusResponse(job)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListJobsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []JobStatusResponse
			if err := client.Get(cmd.Context(), "/api/v1/jobs", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
