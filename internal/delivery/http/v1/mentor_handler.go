package v1

import (
	"net/http"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MentorHandler struct {
	mentorUC domain.MentorUsecase
}

// NewMentorHandler registers the virtual mentor routes. messageLimit guards
// the only route that spends completion tokens.
func NewMentorHandler(protected *gin.RouterGroup, messageLimit gin.HandlerFunc, mentorUC domain.MentorUsecase) {
	handler := &MentorHandler{mentorUC: mentorUC}

	mentor := protected.Group("/mentor")
	{
		mentor.GET("/profile", handler.GetProfile)
		mentor.PUT("/profile", handler.UpdateProfile)
		mentor.GET("/history", handler.GetHistory)
		mentor.POST("/message", messageLimit, handler.SendMessage)
	}
}

type MentorMessageRequest struct {
	Message string `json:"message"`
}

// GetProfile godoc
// @Summary      Mentor profile
// @Description  What the mentor knows about the current user. Created empty on first access.
// @Tags         mentor
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.MentorProfile}
// @Failure      401  {object}  response.Response
// @Router       /mentor/profile [get]
func (h *MentorHandler) GetProfile(c *gin.Context) {
	profile, err := h.mentorUC.GetProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mentor profile retrieved", profile)
}

// UpdateProfile godoc
// @Summary      Edit the mentor profile
// @Tags         mentor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      domain.MentorProfilePatch  true  "Profile fields"
// @Success      200      {object}  response.Response{data=domain.MentorProfile}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /mentor/profile [put]
func (h *MentorHandler) UpdateProfile(c *gin.Context) {
	var patch domain.MentorProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.mentorUC.UpdateProfile(c.Request.Context(), &patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mentor profile updated", profile)
}

// GetHistory godoc
// @Summary      Mentor conversation
// @Description  The profile and every stored message, oldest first.
// @Tags         mentor
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.MentorHistory}
// @Failure      401  {object}  response.Response
// @Router       /mentor/history [get]
func (h *MentorHandler) GetHistory(c *gin.Context) {
	history, err := h.mentorUC.GetHistory(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mentor history retrieved", history)
}

// SendMessage godoc
// @Summary      Talk to the mentor
// @Description  Sends one message and returns the mentor's reply with the current profile.
// @Tags         mentor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        message  body      MentorMessageRequest  true  "Message"
// @Success      200      {object}  response.Response{data=domain.MentorReply}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /mentor/message [post]
func (h *MentorHandler) SendMessage(c *gin.Context) {
	var req MentorMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	reply, err := h.mentorUC.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mentor replied", reply)
}
