package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/auth"
	"medxmentor-backend/pkg/logger"
	"medxmentor-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// LoginGuard throttles repeated failed logins.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip string) (bool, int, error)
	ClearAttempts(ctx context.Context, email, ip string) error
}

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
	guard    LoginGuard
	validate *validator.Validate
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens TokenIssuer, guard LoginGuard, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		guard:    guard,
		validate: validate,
	}
}

func (u *authUsecase) Register(ctx context.Context, input *domain.RegisterInput) (*domain.AuthResult, error) {
	if input == nil || input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, apperror.BadRequest("Please provide all required fields")
	}
	input.Email = normalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	taken, err := u.emailTaken(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.BadRequest("Email already registered")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Country:      input.Country,
		University:   strings.TrimSpace(input.University),
		Program:      strings.TrimSpace(input.Program),
		Role:         domain.RoleMentee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.authResult(user)
}

func (u *authUsecase) Login(ctx context.Context, email, password, clientIP string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Please provide email and password")
	}

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, email, clientIP)
		if err != nil {
			// tracker trouble must not lock everyone out
			logger.FromContext(ctx).Warn("login tracker unavailable", "error", err)
		}
		if blocked {
			return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, u.failedLogin(ctx, email, clientIP)
	}

	if u.guard != nil {
		if err := u.guard.ClearAttempts(ctx, email, clientIP); err != nil {
			logger.FromContext(ctx).Warn("clear failed login attempts", "error", err)
		}
	}
	return u.authResult(user)
}

func (u *authUsecase) failedLogin(ctx context.Context, email, clientIP string) error {
	if u.guard == nil {
		return apperror.Unauthorized("Invalid credentials")
	}
	blocked, _, err := u.guard.RecordFailedAttempt(ctx, email, clientIP)
	if err != nil {
		logger.FromContext(ctx).Warn("record failed login", "error", err)
	}
	if blocked {
		return apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
	}
	return apperror.Unauthorized("Invalid credentials")
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	return user, err
}

func (u *authUsecase) Me(ctx context.Context) (*domain.User, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return u.GetCurrentUser(ctx, userID)
}

func (u *authUsecase) UpdateProfile(ctx context.Context, patch *domain.UserProfilePatch) (*domain.PublicUser, error) {
	user, err := u.Me(ctx)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		patch = &domain.UserProfilePatch{}
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email != user.Email {
			taken, err := u.emailTaken(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperror.BadRequest("Email already in use")
			}
			user.Email = email
		}
	}

	set := func(field *string, value *string) {
		if value != nil {
			*field = strings.TrimSpace(*value)
		}
	}
	set(&user.FirstName, patch.FirstName)
	set(&user.LastName, patch.LastName)
	set(&user.Country, patch.Country)
	set(&user.University, patch.University)
	set(&user.Program, patch.Program)
	set(&user.YearOfStudy, patch.YearOfStudy)
	set(&user.Cohort, patch.Cohort)
	set(&user.Theme, patch.Theme)
	set(&user.ProfileImage, patch.ProfileImage)

	user.ProfileComplete = true
	user.UpdatedAt = time.Now()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (u *authUsecase) emailTaken(ctx context.Context, email string) (bool, error) {
	existing, err := u.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (u *authUsecase) authResult(user *domain.User) (*domain.AuthResult, error) {
	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{Token: token, User: user.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
