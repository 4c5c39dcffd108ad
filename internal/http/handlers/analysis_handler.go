// Video analysis HTTP handler.
//
// POST /api/analyze-video forwards a base64 video to the AI service and
// returns its free-text feedback.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
)

// AnalyzeVideoRequest is the JSON payload of POST /api/analyze-video.
type AnalyzeVideoRequest struct {
	// VideoBase64 is the raw video, base64 encoded (a data: URL prefix is accepted).
	VideoBase64 string `json:"videoBase64" example:"AAAAGGZ0eXBtcDQy..."`
	// MimeType defaults to video/mp4.
	MimeType string `json:"mimeType,omitempty" example:"video/webm"`
}

// AnalyzeVideoResponse carries the model's feedback.
type AnalyzeVideoResponse struct {
	Analysis string `json:"analysis"`
}

// AnalyzeVideo godoc
// @ID          analyzeVideo
// @Summary     Analyze an exercise video
// @Description Sends the video to the AI model and returns form feedback. Rate-limited upstream calls are retried twice (1s, 2s) before failing with 429.
// @Tags        Analysis
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.AnalyzeVideoRequest  true  "Video"
// @Success     200   {object}  handlers.AnalyzeVideoResponse
// @Failure     400   {object}  handlers.ErrorResponse  "No video provided"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid API key"
// @Failure     429   {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500   {object}  handlers.ErrorResponse  "Analysis failed"
// @Router      /analyze-video [post]
func (h *Handlers) AnalyzeVideo(c *gin.Context) {
	var req AnalyzeVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if h.analysisSvc == nil {
		failErr(c, config.Missing("analysis service"))
		return
	}
	text, err := h.analysisSvc.Analyze(c.Request.Context(), req.VideoBase64, req.MimeType)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, AnalyzeVideoResponse{Analysis: text})
}
