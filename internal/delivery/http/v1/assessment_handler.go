package v1

import (
	"net/http"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	assessmentUC domain.AssessmentUsecase
}

func NewAssessmentHandler(protected *gin.RouterGroup, assessmentUC domain.AssessmentUsecase) {
	handler := &AssessmentHandler{assessmentUC: assessmentUC}

	assessments := protected.Group("/assessments")
	{
		assessments.POST("", handler.Create)
		assessments.GET("", handler.List)
		// Static path before /:id
		assessments.GET("/dashboard/summary", handler.DashboardSummary)
		assessments.GET("/:id", handler.Get)
		assessments.PUT("/:id", handler.Update)
		assessments.DELETE("/:id", handler.Delete)
	}
}

// Create godoc
// @Summary      Record a self-assessment
// @Description  Stores ratings and milestones for the current mentee and computes overall progress.
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        assessment  body      domain.AssessmentInput  true  "Assessment"
// @Success      201         {object}  response.Response{data=domain.Assessment}
// @Failure      400         {object}  response.Response
// @Failure      401         {object}  response.Response
// @Router       /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	var input domain.AssessmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	assessment, err := h.assessmentUC.Create(c.Request.Context(), &input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Assessment created", assessment)
}

// List godoc
// @Summary      List my assessments
// @Description  Newest assessment date first.
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Assessment}
// @Failure      401  {object}  response.Response
// @Router       /assessments [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	assessments, err := h.assessmentUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.List(c, http.StatusOK, "Assessments retrieved", assessments, len(assessments))
}

// DashboardSummary godoc
// @Summary      Progress dashboard
// @Description  Latest assessment, total count and the recent progress trend.
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.DashboardSummary}
// @Failure      401  {object}  response.Response
// @Router       /assessments/dashboard/summary [get]
func (h *AssessmentHandler) DashboardSummary(c *gin.Context) {
	summary, err := h.assessmentUC.DashboardSummary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard summary retrieved", summary)
}

// Get godoc
// @Summary      Get one assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment ID"
// @Success      200  {object}  response.Response{data=domain.Assessment}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /assessments/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	assessment, err := h.assessmentUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Assessment retrieved", assessment)
}

// Update godoc
// @Summary      Update an assessment
// @Description  Applies the fields present and recomputes overall progress.
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string                  true  "Assessment ID"
// @Param        assessment  body      domain.AssessmentPatch  true  "Changed fields"
// @Success      200         {object}  response.Response{data=domain.Assessment}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /assessments/{id} [put]
func (h *AssessmentHandler) Update(c *gin.Context) {
	var patch domain.AssessmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	assessment, err := h.assessmentUC.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Assessment updated", assessment)
}

// Delete godoc
// @Summary      Delete an assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /assessments/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
	if err := h.assessmentUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Assessment removed", nil)
}
