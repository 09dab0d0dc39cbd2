package v1

import (
	"encoding/json"
	"net/http"

	"resume-review-backend/internal/delivery/http/response"
	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	resumeUC domain.ResumeUsecase
	reviewUC domain.ReviewUsecase
}

func NewAdminHandler(r *gin.RouterGroup, resumeUC domain.ResumeUsecase, reviewUC domain.ReviewUsecase) {
	handler := &AdminHandler{resumeUC: resumeUC, reviewUC: reviewUC}

	resumes := r.Group("/resumes")
	{
		resumes.GET("/pending", handler.ListPending)
		resumes.GET("/pending/export", handler.ExportPending)
		resumes.GET("/:id/file-url", handler.FileURL)
		resumes.PATCH("/:id/review", handler.Review)
	}
}

type ReviewRequest struct {
	Status string `json:"status" binding:"required,review_status" example:"Approved"`
	// Number, numeric string, empty string or null
	Score json.RawMessage `json:"score" swaggertype:"integer" example:"85"`
	Notes *string         `json:"notes" example:"Strong experience section"`
}

// ListPending godoc
// @Summary      Review queue
// @Description  Pending submissions with their owner, newest first
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/resumes/pending [get]
// @Security     BearerAuth
func (h *AdminHandler) ListPending(c *gin.Context) {
	resumes, err := h.resumeUC.ListPending(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending resumes", resumes)
}

// ExportPending godoc
// @Summary      Export review queue
// @Description  Downloads the pending queue as an Excel workbook
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      403  {object}  response.Response
// @Router       /admin/resumes/pending/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportPending(c *gin.Context) {
	data, filename, err := h.resumeUC.ExportPending(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Attachment(c, xlsxContentType, filename, data)
}

// FileURL godoc
// @Summary      Signed download link
// @Description  Short-lived URL for reading the stored resume file
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.Response{data=domain.SignedFileURL}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/resumes/{id}/file-url [get]
// @Security     BearerAuth
func (h *AdminHandler) FileURL(c *gin.Context) {
	link, err := h.reviewUC.SignedFileURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signed URL created", link)
}

// Review godoc
// @Summary      Review a resume
// @Description  Sets status, score and notes together, then emails the candidate
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Resume ID"
// @Param        request  body      ReviewRequest  true  "Review outcome"
// @Success      200      {object}  response.Response{data=domain.ReviewResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/resumes/{id}/review [patch]
// @Security     BearerAuth
func (h *AdminHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	score, err := validation.CoerceScore(req.Score)
	if err != nil {
		c.Error(apperror.Validation("score", err.Error()))
		return
	}

	result, err := h.reviewUC.Review(c.Request.Context(), c.Param("id"), domain.ReviewInput{
		Status: domain.ResumeStatus(req.Status),
		Score:  score,
		Notes:  req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	message := "Review saved"
	if !result.Notified {
		message = "Review saved; the candidate could not be notified"
	}
	response.Success(c, http.StatusOK, message, result)
}
