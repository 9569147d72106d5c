package review

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review/internal/intake"
	"resume-review/internal/presentation"
	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes. submit runs before the submit
// handler only (rate limiting).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submit ...gin.HandlerFunc) {
	rg.POST("/resumes", append(submit, h.submit)...)
	rg.GET("/resumes/progress", h.progress)
	rg.POST("/resumes/progress/reset", h.resetProgress)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/resume", h.resumeFile)
	rg.GET("/resumes/:id/image", h.imageFile)
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, intake.MaxFileSize+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", StatusNoFile, gin.H{"hasError": true})
		return
	}

	selected, data, err := selectFile(form.File["file"])
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "selection_rejected", err.Error(), nil)
		return
	}

	out, err := h.Svc.Submit(c.Request.Context(), userID, Input{
		FileName:       selected.Name,
		ContentType:    selected.ContentType,
		Data:           data,
		CompanyName:    strings.TrimSpace(c.PostForm("company-name")),
		JobTitle:       strings.TrimSpace(c.PostForm("job-title")),
		JobDescription: strings.TrimSpace(c.PostForm("job-description")),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "submission_in_progress", err.Error(), nil)
		case errors.Is(err, intake.ErrSelectionRejected):
			respond.Error(c, http.StatusBadRequest, "selection_rejected", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit resume", nil)
		}
		return
	}

	if out.ResumeID != "" {
		c.Set("resumeId", out.ResumeID)
	}
	c.Set("statusTransition", string(out.State))
	if out.HasError {
		respond.JSON(c, failureStatus(out.Failure), out)
		return
	}
	respond.Created(c, out)
}

// selectFile keeps the first acceptable part. Rejected parts leave the
// selection empty and the last rejection is reported if nothing passes.
func selectFile(headers []*multipart.FileHeader) (intake.File, []byte, error) {
	var (
		sel     intake.Selector
		data    []byte
		lastErr error
	)
	for _, fh := range headers {
		body, err := readPart(fh)
		if err != nil {
			lastErr = err
			continue
		}
		if err := sel.Offer(intake.File{
			Name:        fh.Filename,
			Size:        int64(len(body)),
			ContentType: fh.Header.Get("Content-Type"),
			Head:        head(body),
		}); err != nil {
			lastErr = err
			continue
		}
		data = body
		break
	}
	f, ok := sel.Selected()
	if !ok {
		return intake.File{}, nil, lastErr
	}
	return f, data, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > intake.MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", intake.ErrSelectionRejected, intake.MaxFileSize)
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, intake.MaxFileSize+1))
}

func failureStatus(kind FailureKind) int {
	switch kind {
	case FailureConversion, FailureParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) progress(c *gin.Context) {
	respond.OK(c, h.Svc.Progress(middleware.UserIDFromContext(c)))
}

func (h *Handler) resetProgress(c *gin.Context) {
	if err := h.Svc.ResetProgress(middleware.UserIDFromContext(c)); err != nil {
		respond.Error(c, http.StatusConflict, "submission_in_progress", err.Error(), nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) list(c *gin.Context) {
	records, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		item := gin.H{
			"id":          rec.ID,
			"companyName": rec.CompanyName,
			"jobTitle":    rec.JobTitle,
			"resumePath":  rec.ResumePath,
			"imagePath":   rec.ImagePath,
			"pending":     rec.Pending(),
		}
		if rec.Feedback != nil {
			item["overallScore"] = rec.Feedback.OverallScore
			item["gauge"] = presentation.OverallGauge(rec.Feedback.OverallScore)
		}
		items = append(items, item)
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	resp := gin.H{"resume": rec, "pending": rec.Pending()}
	if rec.Feedback != nil {
		resp["report"] = presentation.BuildReport(*rec.Feedback)
	}
	respond.OK(c, resp)
}

func (h *Handler) resumeFile(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	h.serveFile(c, rec.ResumePath, "application/pdf")
}

func (h *Handler) imageFile(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	h.serveFile(c, rec.ImagePath, "image/png")
}

func (h *Handler) load(c *gin.Context) (Record, bool) {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("resumeId", id)
	rec, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		}
		return Record{}, false
	}
	return rec, true
}

func (h *Handler) serveFile(c *gin.Context, filePath, contentType string) {
	data, err := h.Svc.ReadFile(c.Request.Context(), middleware.UserIDFromContext(c), filePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		}
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+path.Base(filePath)+`"`)
	c.Data(http.StatusOK, contentType, data)
}
