package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userNotFound(email string) *apperr.NotFoundError {
	return &apperr.NotFoundError{Entity: "user", Key: email, Message: "Specified user does not exist"}
}

// AddUser registers an account. Emails are unique, compared case-insensitively.
func (r *Repository) AddUser(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.transaction(ctx, func(tx *gorm.DB) error {
		taken, err := exists(tx, "SELECT 1 FROM course_users WHERE email = ?", user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Email is already registered")
		}
		return tx.Create(user).Error
	})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	var user model.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("email = ?", email).Take(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userNotFound(email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Take(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Entity: "user", Message: "Specified user does not exist"}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers returns every account ordered by id.
func (r *Repository) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("user_id").Find(&users).Error
	})
	return users, err
}

// GetMembers returns the accounts in the Member group only.
func (r *Repository) GetMembers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("access_group = ?", model.GroupMember).Order("user_id").Find(&users).Error
	})
	return users, err
}

// updateUser applies updates to the account with the given email.
func (r *Repository) updateUser(ctx context.Context, email string, updates map[string]interface{}) error {
	email = normalizeEmail(email)
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Model(&model.User{}).Where("email = ?", email).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return userNotFound(email)
		}
		return nil
	})
}

func (r *Repository) EditUserName(ctx context.Context, email, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.NewValidationError("name", "name is required")
	}
	return r.updateUser(ctx, email, map[string]interface{}{"name": name})
}

// UpdateUserPassword stores a new password hash and invalidates every token
// issued before it.
func (r *Repository) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	return r.updateUser(ctx, email, map[string]interface{}{
		"password":      passwordHash,
		"token_version": gorm.Expr("token_version + 1"),
	})
}

// ToggleUserBlock flips the blocked flag and returns the new state.
func (r *Repository) ToggleUserBlock(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	var blocked bool
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("email = ?", email).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return userNotFound(email)
			}
			return err
		}
		blocked = !user.Blocked
		return tx.Model(&model.User{}).Where("email = ?", email).Update("blocked", blocked).Error
	})
	return blocked, err
}

func (r *Repository) EditUserGroup(ctx context.Context, email string, group model.Group) error {
	if !group.Valid() {
		return apperr.NewValidationError("access_group", "access_group must be one of [1 2 3]")
	}
	return r.updateUser(ctx, email, map[string]interface{}{"access_group": group})
}

func (r *Repository) SetUserAvatar(ctx context.Context, email, avatarURL string) error {
	return r.updateUser(ctx, email, map[string]interface{}{"avatar_url": avatarURL})
}

// BumpTokenVersion invalidates every token issued to the user so far.
func (r *Repository) BumpTokenVersion(ctx context.Context, email string) error {
	return r.updateUser(ctx, email, map[string]interface{}{"token_version": gorm.Expr("token_version + 1")})
}

// DeleteUser removes the account and its revoked-token rows.
func (r *Repository) DeleteUser(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	return r.transaction(ctx, func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("email = ?", email).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return userNotFound(email)
			}
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.JWTTokenBlacklist{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&model.User{}).Error
	})
}
