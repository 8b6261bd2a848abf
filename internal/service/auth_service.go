package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"coursehub/internal/config"
	"coursehub/internal/ids"
	"coursehub/internal/models"
	"coursehub/internal/notify"
	"coursehub/internal/repository"
	"coursehub/internal/security"
	"coursehub/internal/workflow"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is suspended or banned")
)

// AuthService issues stateless access tokens. Instructors sign up into the
// pending review queue; learners are usable immediately.
type AuthService struct {
	users      *repository.UserRepository
	dispatcher workflow.Dispatcher
	cfg        *config.AppConfig
	log        zerolog.Logger
}

func NewAuthService(users *repository.UserRepository, dispatcher workflow.Dispatcher, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        models.UserRole
}

type AuthResult struct {
	AccessToken string
	User        models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Role != models.UserRoleLearner && input.Role != models.UserRoleInstructor {
		return AuthResult{}, workflow.NewValidationError("role", "must be learner or instructor")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, workflow.NewValidationError("email", "already registered")
	} else {
		var nf *workflow.NotFoundError
		if !errors.As(err, &nf) {
			return AuthResult{}, err
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	status := models.AccountStatusApproved
	if input.Role == models.UserRoleInstructor {
		status = models.AccountStatusPending
	}

	user := models.User{
		ID:            ids.New(),
		Email:         input.Email,
		PasswordHash:  passwordHash,
		DisplayName:   input.DisplayName,
		Role:          input.Role,
		ProfileStatus: status,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	if input.Role == models.UserRoleInstructor {
		if err := s.dispatcher.Enqueue(ctx, notify.Notification{
			Kind:           notify.KindInstructorReceived,
			RecipientEmail: user.Email,
			RecipientName:  user.DisplayName,
		}); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("signup notification not enqueued")
		}
	}

	token, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, user.ID, string(user.Role), s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{AccessToken: token, User: user}, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		var nf *workflow.NotFoundError
		if errors.As(err, &nf) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	// Pending instructors may log in to watch their review status; suspended
	// and banned accounts may not.
	if user.ProfileStatus == models.AccountStatusSuspended || user.ProfileStatus == models.AccountStatusBanned {
		return AuthResult{}, ErrAccountInactive
	}

	token, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, user.ID, string(user.Role), s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{AccessToken: token, User: user}, nil
}
