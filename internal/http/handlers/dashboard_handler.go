// Dashboard HTTP handlers.
//
// This file exposes the routes behind the doctor and patient dashboards:
//   - POST /api/routines                     (doctor prescribes a routine)
//   - GET  /api/patients/{id}/routines       (routines with exercises)
//   - POST /api/completions                  (record a performed exercise)
//   - GET  /api/patients/{id}/progress       (summary + paginated completions)
//   - GET  /api/patients/{id}/nfts           (minted rewards)
//   - GET  /api/exercises?q=                 (exercise library, optional search)
//
// Every route except the exercise library requires a bearer token. Patients
// only see their own records.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
	"github.com/tbourn/rehab-rewards-backend/internal/utils"
)

// RoutinesResponse lists a patient's routines.
type RoutinesResponse struct {
	Routines []domain.Routine `json:"routines"`
}

// NFTsResponse lists a patient's minted NFTs.
type NFTsResponse struct {
	NFTs []domain.NFT `json:"nfts"`
}

// ExercisesResponse lists exercises, best match first when searching.
type ExercisesResponse struct {
	Exercises []domain.Exercise `json:"exercises"`
}

func (h *Handlers) dashboardReady(c *gin.Context) bool {
	if h.dashboardSvc == nil {
		failErr(c, config.Missing("dashboard service"))
		return false
	}
	return true
}

// CreateRoutine godoc
// @ID          createRoutine
// @Summary     Prescribe a routine
// @Description Creates a routine for a patient with its exercises in order. Sets default to 3 and rest to 60s; reps or duration default to the exercise's own.
// @Tags        Dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      services.CreateRoutineRequest  true  "Routine"
// @Success     201   {object}  domain.Routine
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Doctors only"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown patient or exercise"
// @Router      /routines [post]
func (h *Handlers) CreateRoutine(c *gin.Context) {
	var req services.CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !h.dashboardReady(c) {
		return
	}
	rt, err := h.dashboardSvc.CreateRoutine(c.Request.Context(), caller(c), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, rt)
}

// ListRoutines godoc
// @ID          listRoutines
// @Summary     List a patient's routines
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Patient ID"
// @Success     200  {object}  handlers.RoutinesResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /patients/{id}/routines [get]
func (h *Handlers) ListRoutines(c *gin.Context) {
	if !h.dashboardReady(c) {
		return
	}
	items, err := h.dashboardSvc.ListRoutines(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.Routine{}
	}
	ok(c, http.StatusOK, RoutinesResponse{Routines: items})
}

// RecordCompletion godoc
// @ID          recordCompletion
// @Summary     Record an exercise completion
// @Description Stores a performed routine exercise with its form score (0-100). Status is completed at 70+, needs_improvement at 40+, failed otherwise.
// @Tags        Dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      services.RecordCompletionRequest  true  "Completion"
// @Success     201   {object}  domain.ExerciseCompletion
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /completions [post]
func (h *Handlers) RecordCompletion(c *gin.Context) {
	var req services.RecordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !h.dashboardReady(c) {
		return
	}
	comp, err := h.dashboardSvc.RecordCompletion(c.Request.Context(), caller(c), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, comp)
}

// Progress godoc
// @ID          patientProgress
// @Summary     Patient progress
// @Description Completion count, average form score, minted count, latest completion and one page of completions (newest first).
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       id         path   string  true   "Patient ID"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  services.ProgressView
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /patients/{id}/progress [get]
func (h *Handlers) Progress(c *gin.Context) {
	if !h.dashboardReady(c) {
		return
	}
	page := utils.AtoiDefault(c.Query("page"), 1)
	size := utils.AtoiDefault(c.Query("page_size"), services.DefaultPageSize)
	view, err := h.dashboardSvc.Progress(c.Request.Context(), caller(c), c.Param("id"), page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// ListNFTs godoc
// @ID          listNFTs
// @Summary     List a patient's NFTs
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Patient ID"
// @Success     200  {object}  handlers.NFTsResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /patients/{id}/nfts [get]
func (h *Handlers) ListNFTs(c *gin.Context) {
	if !h.dashboardReady(c) {
		return
	}
	items, err := h.dashboardSvc.ListNFTs(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.NFT{}
	}
	ok(c, http.StatusOK, NFTsResponse{NFTs: items})
}

// ListExercises godoc
// @ID          listExercises
// @Summary     Exercise library
// @Description Lists all exercises, or those matching q (name, category, description) ranked by relevance.
// @Tags        Dashboard
// @Produce     json
// @Param       q    query     string  false  "Search text"  example(knee strength)
// @Success     200  {object}  handlers.ExercisesResponse
// @Router      /exercises [get]
func (h *Handlers) ListExercises(c *gin.Context) {
	if !h.dashboardReady(c) {
		return
	}
	items, err := h.dashboardSvc.ListExercises(c.Request.Context(), c.Query("q"))
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.Exercise{}
	}
	ok(c, http.StatusOK, ExercisesResponse{Exercises: items})
}
