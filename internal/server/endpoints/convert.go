package endpoints

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/api"
	"github.com/kumarraju1982/Convertx/internal/convert"
	"github.com/kumarraju1982/Convertx/internal/svcctx"
)

// ConvertResponse is returned after a conversion job is accepted.
type ConvertResponse struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

// ConvertEndpoint handles POST /api/v1/convert with a multipart PDF
// upload. The conversion runs asynchronously; poll the job status
// endpoint for progress.
type ConvertEndpoint struct{}

var _ api.Endpoint = (*ConvertEndpoint)(nil)

func (e *ConvertEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/convert", e.handler
}

func (e *ConvertEndpoint) RequiresInit() bool { return true }

func (e *ConvertEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 500 << 20 // 500MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one file must be uploaded")
		return
	}
	fh := files[0]
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}

	engine := r.FormValue("engine")
	switch engine {
	case "", "tesseract", "remote":
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown engine: %s", engine))
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	jobs := svcctx.JobsFrom(r.Context())
	submitter := svcctx.SubmitterFrom(r.Context())
	if homeDir == nil || jobs == nil || submitter == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	job := jobs.Create(fh.Filename, engine)

	inputPath := homeDir.UploadPath(job.ID, fh.Filename)
	if err := saveUpload(fh, inputPath); err != nil {
		jobs.MarkFailed(job.ID, "invalid_input", err.Error())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}

	baseName := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	outputPath := homeDir.OutputPath(job.ID, baseName)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		jobs.MarkFailed(job.ID, "assembly_error", err.Error())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to prepare output: %v", err))
		return
	}

	submitter.Submit(job.ID, convert.Options{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Engine:     engine,
	})

	writeJSON(w, http.StatusAccepted, ConvertResponse{JobID: job.ID, State: string(job.State)})
}

func saveUpload(fh *multipart.FileHeader, destPath string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to save file: %w", err)
	}
	return dst.Close()
}

func (e *ConvertEndpoint) Command(getServerURL func() string) *cobra.Command {
	var engine string
	cmd := &cobra.Command{
		Use:   "convert <file.pdf>",
		Short: "Upload a PDF for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ConvertResponse
			err := client.Upload(cmd.Context(), "/api/v1/convert", "file", args[0],
				map[string]string{"engine": engine}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&engine, "engine", "", "Recognition engine: tesseract or remote (default: server config)")
	return cmd
}
