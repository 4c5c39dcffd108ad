// NFT HTTP handlers.
//
// This file exposes the reward endpoints:
//   - POST /api/nft/generate-image     (illustrate only)
//   - POST /api/nft/generate-and-mint  (provision, illustrate, mint, persist)
//   - POST /api/nft/mint-signed        (relay a wallet-signed mint)
//
// All three answer with the NFT envelope. Retried mints should carry an
// Idempotency-Key; the middleware replays the first successful answer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/http/middleware"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

// bindAchievement decodes the shared NFT request body. Missing fields are
// left to service validation so every route reports them the same way.
func bindAchievement(c *gin.Context) (services.AchievementRequest, bool) {
	var req services.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NFTErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Code:      ErrCodeBadRequest,
			RequestID: c.Writer.Header().Get("X-Request-ID"),
		})
		return req, false
	}
	return req, true
}

// GenerateImage godoc
// @ID          generateImage
// @Summary     Generate achievement artwork
// @Description Illustrates an exercise achievement. Falls back to a static placeholder when the image model fails, so a URL is always returned.
// @Tags        NFT
// @Accept      json
// @Produce     json
// @Param       body  body      services.AchievementRequest  true  "Achievement"
// @Success     200   {object}  handlers.NFTResponse{data=services.ImagePreview}
// @Failure     400   {object}  handlers.NFTErrorResponse  "Missing fields"
// @Failure     500   {object}  handlers.NFTErrorResponse  "Generation failed"
// @Router      /nft/generate-image [post]
func (h *Handlers) GenerateImage(c *gin.Context) {
	req, okBind := bindAchievement(c)
	if !okBind {
		return
	}
	if h.mintSvc == nil {
		failNFT(c, config.Missing("NFT service"), "Failed to generate NFT image")
		return
	}
	out, err := h.mintSvc.GenerateImage(c.Request.Context(), req)
	if err != nil {
		failNFT(c, err, "Failed to generate NFT image")
		return
	}
	okNFT(c, out)
}

// GenerateAndMint godoc
// @ID          generateAndMint
// @Summary     Generate artwork and mint a reward NFT
// @Description Resolves (or creates) the patient's exercise completion, generates artwork, mints to walletAddress and records the NFT.
// @Description When signedTransaction is present the request is relayed as a wallet-signed mint.
// @Tags        NFT
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                      false  "Replay key for safe retries"
// @Param       body             body    services.AchievementRequest  true   "Achievement"
// @Success     200  {object}  handlers.NFTResponse{data=services.MintResult}
// @Failure     400  {object}  handlers.NFTErrorResponse  "Missing fields"
// @Failure     404  {object}  handlers.NFTErrorResponse  "Unknown patient or completion"
// @Failure     500  {object}  handlers.NFTErrorResponse  "Provisioning, mint or persistence failure"
// @Router      /nft/generate-and-mint [post]
func (h *Handlers) GenerateAndMint(c *gin.Context) {
	req, okBind := bindAchievement(c)
	if !okBind {
		return
	}
	if h.mintSvc == nil {
		failNFT(c, config.Missing("NFT service"), "Failed to generate and mint NFT")
		return
	}
	out, err := h.mintSvc.GenerateAndMint(c.Request.Context(), middleware.PrincipalFrom(c).Role, req)
	if err != nil {
		failNFT(c, err, "Failed to generate and mint NFT")
		return
	}
	okNFT(c, out)
}

// MintSigned godoc
// @ID          mintSigned
// @Summary     Relay a wallet-signed mint
// @Description Broadcasts a mintTo transaction signed by the patient's wallet and records the NFT. Patients only.
// @Tags        NFT
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      services.AchievementRequest  true  "Achievement with signedTransaction"
// @Success     200   {object}  handlers.NFTResponse{data=services.MintResult}
// @Failure     400   {object}  handlers.NFTErrorResponse
// @Failure     401   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.NFTErrorResponse
// @Failure     500   {object}  handlers.NFTErrorResponse
// @Router      /nft/mint-signed [post]
func (h *Handlers) MintSigned(c *gin.Context) {
	req, okBind := bindAchievement(c)
	if !okBind {
		return
	}
	if h.mintSvc == nil {
		failNFT(c, config.Missing("NFT service"), "Failed to mint NFT")
		return
	}
	p := middleware.PrincipalFrom(c)
	if req.PatientID == "" {
		req.PatientID = p.ProfileID
	}
	out, err := h.mintSvc.MintSigned(c.Request.Context(), p.Role, req)
	if err != nil {
		failNFT(c, err, "Failed to mint NFT")
		return
	}
	okNFT(c, out)
}
