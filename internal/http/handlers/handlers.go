// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers consume and the
// Handlers type that groups them. Handlers are transport-thin: they bind and
// validate JSON, take the caller from the auth middleware, delegate to a
// service and translate the result (or error) into a response.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/http/middleware"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// MintService generates achievement artwork and mints reward NFTs.
type MintService interface {
	// GenerateImage illustrates an achievement without minting it.
	GenerateImage(ctx context.Context, in services.AchievementRequest) (*services.ImagePreview, error)
	// GenerateAndMint provisions records, illustrates and mints.
	GenerateAndMint(ctx context.Context, role domain.Role, in services.AchievementRequest) (*services.MintResult, error)
	// MintSigned relays a wallet-signed mint.
	MintSigned(ctx context.Context, role domain.Role, in services.AchievementRequest) (*services.MintResult, error)
}

// AnalysisService returns AI feedback for an exercise video.
type AnalysisService interface {
	Analyze(ctx context.Context, videoBase64, mimeType string) (string, error)
}

// AuthService registers and signs in accounts.
type AuthService interface {
	Signup(ctx context.Context, in services.SignupRequest) (*services.AuthResult, error)
	Signin(ctx context.Context, email, password string) (*services.AuthResult, error)
}

// DashboardService backs the doctor and patient dashboards.
type DashboardService interface {
	CreateRoutine(ctx context.Context, caller services.Caller, in services.CreateRoutineRequest) (*domain.Routine, error)
	ListRoutines(ctx context.Context, caller services.Caller, patientID string) ([]domain.Routine, error)
	RecordCompletion(ctx context.Context, caller services.Caller, in services.RecordCompletionRequest) (*domain.ExerciseCompletion, error)
	Progress(ctx context.Context, caller services.Caller, patientID string, page, pageSize int) (*services.ProgressView, error)
	ListNFTs(ctx context.Context, caller services.Caller, patientID string) ([]domain.NFT, error)
	ListExercises(ctx context.Context, query string) ([]domain.Exercise, error)
}

//
// Handler wiring
//

// Deps lists the services behind the API. A nil service leaves its routes
// answering 500 missing_config; tests construct only what they exercise.
type Deps struct {
	Mint      MintService
	Analysis  AnalysisService
	Auth      AuthService
	Dashboard DashboardService
}

// Handlers groups HTTP endpoints for NFTs, video analysis, accounts and the
// dashboard.
type Handlers struct {
	mintSvc      MintService
	analysisSvc  AnalysisService
	authSvc      AuthService
	dashboardSvc DashboardService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(d Deps) *Handlers {
	return &Handlers{
		mintSvc:      d.Mint,
		analysisSvc:  d.Analysis,
		authSvc:      d.Auth,
		dashboardSvc: d.Dashboard,
	}
}

// caller converts the middleware principal into the services' view of it.
func caller(c *gin.Context) services.Caller {
	p := middleware.PrincipalFrom(c)
	return services.Caller{AccountID: p.AccountID, Role: p.Role, ProfileID: p.ProfileID}
}
