package auth

import (
	"context"
	"strings"
	"time"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	authutil "github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/logger"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
	"github.com/sahilchouksey/course-catalog/utils/validation"
)

// AvatarStore uploads and removes avatar images.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userID uint, data []byte) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	repo                 *repository.Repository
	jwtManager           *authutil.JWTManager
	blacklist            *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	avatars              AvatarStore
	validator            *validation.Validator
	log                  *logger.Logger
}

// NewAuthHandler creates a new auth handler. bruteForce and avatars may be
// nil when Redis or object storage is not configured.
func NewAuthHandler(
	repo *repository.Repository,
	jwtManager *authutil.JWTManager,
	blacklist *authutil.BlacklistService,
	bruteForce *middleware.BruteForceProtection,
	avatars AvatarStore,
	log *logger.Logger,
) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{
		repo:                 repo,
		jwtManager:           jwtManager,
		blacklist:            blacklist,
		bruteForceProtection: bruteForce,
		avatars:              avatars,
		validator:            validation.Default(),
		log:                  log,
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID          uint      `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AccessGroup string    `json:"access_group"`
	Blocked     bool      `json:"blocked"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	DateCreated time.Time `json:"date_created"`
}

// NewUserResponse strips credentials from a user.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AccessGroup: u.AccessGroup.String(),
		Blocked:     u.Blocked,
		AvatarURL:   u.AvatarURL,
		DateCreated: u.DateCreated,
	}
}

// SessionResponse is returned by register, login and refresh.
type SessionResponse struct {
	User   UserResponse        `json:"user"`
	Tokens *authutil.TokenPair `json:"tokens"`
}

func (h *AuthHandler) session(u *model.User) (*SessionResponse, error) {
	pair, err := h.jwtManager.GeneratePair(u)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{User: NewUserResponse(u), Tokens: pair}, nil
}

// checkPassword applies the password strength rules to field.
func checkPassword(field, password string) error {
	if ok, problems := validation.ValidatePassword(password); !ok {
		return apperr.NewValidationError(field, strings.Join(problems, "; "))
	}
	return nil
}
