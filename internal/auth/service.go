package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/internal/users"
	pkgauth "github.com/apillow22-icdconnect/icd-connect-backend/pkg/auth"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/security"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// Service handles credentials and session tokens.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Register(ctx context.Context, actor types.Actor, input RegisterInput) (*users.Profile, error)
	Me(ctx context.Context, actor types.Actor) (users.Profile, error)
}

// loginLimiter applies a fixed-window limit per scope. The redis client
// satisfies it; a nil limiter disables throttling.
type loginLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginInput carries the credential pair plus the caller's IP for
// throttling.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResult is the issued token with the authenticated profile.
type LoginResult struct {
	Token string        `json:"token"`
	User  users.Profile `json:"user"`
}

// RegisterInput creates a portal account. Only admins register users; the
// new user joins the actor's team unless a team is given.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     enums.Role
	Position string
	TeamID   string
}

type service struct {
	users   users.Service
	jwt     config.JWTConfig
	pass    config.PasswordConfig
	limits  config.AuthRateLimitConfig
	limiter loginLimiter
	now     func() time.Time
}

// NewService wires the auth service. limiter may be nil; login throttling
// is then disabled.
func NewService(userSvc users.Service, jwt config.JWTConfig, pass config.PasswordConfig, limits config.AuthRateLimitConfig, limiter loginLimiter) (Service, error) {
	if userSvc == nil {
		return nil, fmt.Errorf("users service required")
	}
	if jwt.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		users:   userSvc,
		jwt:     jwt,
		pass:    pass,
		limits:  limits,
		limiter: limiter,
		now:     time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allowLogin(ctx, email, input.ClientIP); err != nil {
		return nil, err
	}

	// Credential failures are indistinct: a missing account and a wrong
	// password both read as invalid credentials.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		TeamID: user.TeamID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	loginAt := s.now()
	user.LastLoginAt = &loginAt
	if err := s.users.Touch(ctx, user); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: users.ProfileFromModel(user)}, nil
}

func (s *service) Register(ctx context.Context, actor types.Actor, input RegisterInput) (*users.Profile, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	role := input.Role
	if role == "" {
		role = enums.RoleRep
	}
	teamID := input.TeamID
	if teamID == "" {
		teamID = actor.TeamID
	}

	hash, err := security.HashPassword(input.Password, s.pass)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserInput{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
		TeamID:       teamID,
		Position:     input.Position,
	})
	if err != nil {
		return nil, err
	}

	profile := users.ProfileFromModel(user)
	return &profile, nil
}

func (s *service) Me(ctx context.Context, actor types.Actor) (users.Profile, error) {
	if actor.ID == uuid.Nil {
		return users.Profile{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.users.Profile(ctx, actor.ID)
}

// allowLogin applies the per-email and per-IP fixed windows. Limiter
// outages fail open; a throttled login never reveals whether the account
// exists.
func (s *service) allowLogin(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil {
		return nil
	}

	window := s.limits.LoginWindow
	if window <= 0 {
		window = time.Minute
	}

	if s.limits.LoginEmailLimit > 0 {
		ok, _, err := s.limiter.FixedWindowAllow(ctx, "login:email:"+email, int64(s.limits.LoginEmailLimit), window)
		if err == nil && !ok {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	if clientIP != "" && s.limits.LoginIPLimit > 0 {
		ok, _, err := s.limiter.FixedWindowAllow(ctx, "login:ip:"+clientIP, int64(s.limits.LoginIPLimit), window)
		if err == nil && !ok {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}
