package v1

import (
	"errors"
	"io"
	"net/http"

	"resume-review-backend/internal/delivery/http/response"
	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file limit for boundaries and headers.
const multipartOverhead = 64 * 1024

type ResumeHandler struct {
	resumeUC       domain.ResumeUsecase
	maxUploadBytes int64
}

func NewResumeHandler(r *gin.RouterGroup, resumeUC domain.ResumeUsecase, maxUploadBytes int64) {
	handler := &ResumeHandler{
		resumeUC:       resumeUC,
		maxUploadBytes: security.FilePolicy{MaxBytes: maxUploadBytes}.Limit(),
	}

	resumes := r.Group("/resumes")
	{
		resumes.GET("", handler.ListMine)
		resumes.POST("", handler.Upload)
	}
}

// ListMine godoc
// @Summary      List my resumes
// @Description  Resumes submitted by the signed-in user, newest first
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      401  {object}  response.Response
// @Router       /resumes [get]
// @Security     BearerAuth
func (h *ResumeHandler) ListMine(c *gin.Context) {
	resumes, err := h.resumeUC.ListMine(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resumes", resumes)
}

// Upload godoc
// @Summary      Upload a resume
// @Description  Accepts a single PDF up to the configured size limit
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume PDF"
// @Success      201   {object}  response.Response{data=domain.Resume}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /resumes [post]
// @Security     BearerAuth
func (h *ResumeHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			appErr := apperror.Validation("file", "File too large. Maximum size is "+security.FormatBytes(h.maxUploadBytes))
			appErr.Code = http.StatusRequestEntityTooLarge
			c.Error(appErr)
			return
		}
		c.Error(apperror.Validation("file", "a resume file is required"))
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		appErr := apperror.Validation("file", "File too large. Maximum size is "+security.FormatBytes(h.maxUploadBytes))
		appErr.Code = http.StatusRequestEntityTooLarge
		c.Error(appErr)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Validation("file", "could not read the uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		c.Error(apperror.Validation("file", "could not read the uploaded file"))
		return
	}

	resume, err := h.resumeUC.Upload(c.Request.Context(), domain.UploadInput{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Data:     data,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Resume uploaded", resume)
}
