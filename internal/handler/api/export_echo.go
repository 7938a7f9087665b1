package api

import (
	"github.com/labstack/echo/v4"

	models "CoinPager/internal/domain/models"
	xhttp "CoinPager/pkg/http"
)

type jobStatusPayload struct {
	models.ExportJob
	Percent float64 `json:"percent"`
}

func (h *Handler) ExportStart(c echo.Context) error {
	req := &models.ExportStartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("export_start", 2, 1.0/30) {
		return xhttp.TooManyRequestsResponse(c, "too many export submissions, slow down")
	}

	jobID, err := h.exporter.Submit(c.Request().Context(), req.Symbols, req.Years)
	if err != nil {
		return h.fail(c, "export start", err)
	}
	return xhttp.CreatedResponse(c, map[string]string{"job_id": jobID})
}

func (h *Handler) ExportStatus(c echo.Context) error {
	jobID := c.Param("job_id")

	job, ok := h.exporter.Status(jobID)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("job %s not found", jobID))
	}
	return xhttp.SuccessResponse(c, jobStatusPayload{
		ExportJob: job,
		Percent:   job.Percent(),
	})
}

func (h *Handler) ExportStop(c echo.Context) error {
	req := &models.ExportStopRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	jobID, stopped := h.exporter.Stop(req.JobID)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"job_id":         jobID,
		"stop_requested": stopped,
	})
}
