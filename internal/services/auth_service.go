// Package services – AuthService
//
// AuthService registers doctor and patient accounts and signs them in. An
// account and its profile row are created in one transaction; sign-in
// returns an HS256 bearer token together with the account and profile.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/rehab-rewards-backend/internal/auth"
	"github.com/tbourn/rehab-rewards-backend/internal/chain"
	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 8

// SignupRequest carries the common and role-specific registration fields.
type SignupRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	Name     string      `json:"name"`

	// doctor
	License        string `json:"license,omitempty"`
	Specialization string `json:"specialization,omitempty"`

	// patient
	WalletAddress     string   `json:"walletAddress,omitempty"`
	MedicalConditions []string `json:"medicalConditions,omitempty"`
}

// AuthResult is returned by Signup and Signin.
type AuthResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
	Profile any             `json:"profile"`
}

// AuthService manages accounts.
type AuthService struct {
	DB     *gorm.DB
	Config config.AuthConfig
}

func (s *AuthService) validateSignup(in *SignupRequest) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))

	required := []lo.Tuple2[string, string]{
		lo.T2("email", in.Email),
		lo.T2("password", in.Password),
		lo.T2("role", string(in.Role)),
		lo.T2("name", in.Name),
	}
	absent := lo.FilterMap(required, func(f lo.Tuple2[string, string], _ int) (string, bool) {
		return f.A, f.B == ""
	})
	if err := missing(absent...); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	switch in.Role {
	case domain.RoleDoctor:
	case domain.RolePatient:
		if in.WalletAddress != "" && !chain.ValidAddress(in.WalletAddress) {
			return fmt.Errorf("%w: walletAddress must be a 0x-prefixed hex address", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: role must be doctor or patient", ErrInvalidInput)
	}
	return nil
}

// Signup creates an account and its profile, then signs the caller in.
func (s *AuthService) Signup(ctx context.Context, in SignupRequest) (*AuthResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Signup", trace.WithAttributes(attribute.String("role", string(in.Role))))
	defer span.End()

	if err := s.validateSignup(&in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Config.JWTSecret) == "" {
		return nil, config.Missing("JWT_SECRET")
	}

	acct := &domain.Account{Email: in.Email, Role: in.Role}
	if err := acct.SetPassword(in.Password); err != nil {
		return nil, err
	}

	var profile any
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch in.Role {
		case domain.RoleDoctor:
			d := &domain.Doctor{Name: in.Name, License: in.License, Specialization: in.Specialization}
			if err := repo.CreateDoctor(ctx, tx, d); err != nil {
				return err
			}
			acct.ProfileID, profile = d.ID, d
		default:
			p := &domain.Patient{Name: in.Name, WalletAddress: in.WalletAddress, MedicalConditions: lo.Compact(in.MedicalConditions)}
			if err := repo.CreatePatient(ctx, tx, p); err != nil {
				return err
			}
			acct.ProfileID, profile = p.ID, p
		}
		return repo.CreateAccount(ctx, tx, acct)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tok, err := auth.Issue(s.Config.JWTSecret, s.ttl(), acct)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, Account: acct, Profile: profile}, nil
}

// Signin checks credentials and returns a token with the account's profile.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Signin")
	defer span.End()

	var fields []string
	if strings.TrimSpace(email) == "" {
		fields = append(fields, "email")
	}
	if password == "" {
		fields = append(fields, "password")
	}
	if err := missing(fields...); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Config.JWTSecret) == "" {
		return nil, config.Missing("JWT_SECRET")
	}

	acct, err := repo.GetAccountByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !acct.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	var profile any
	switch acct.Role {
	case domain.RoleDoctor:
		profile, err = repo.GetDoctor(ctx, s.DB, acct.ProfileID)
	default:
		profile, err = repo.GetPatient(ctx, s.DB, acct.ProfileID)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	tok, err := auth.Issue(s.Config.JWTSecret, s.ttl(), acct)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, Account: acct, Profile: profile}, nil
}

func (s *AuthService) ttl() time.Duration {
	if s.Config.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return s.Config.TokenTTL
}
