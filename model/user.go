package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Group is a user's access group. Higher values include the rights of lower ones.
type Group int

const (
	GroupMember      Group = 1
	GroupAdmin       Group = 2
	GroupServerAdmin Group = 3
)

func (g Group) String() string {
	switch g {
	case GroupMember:
		return "member"
	case GroupAdmin:
		return "admin"
	case GroupServerAdmin:
		return "server_admin"
	default:
		return "unknown"
	}
}

func (g Group) Valid() bool {
	return g >= GroupMember && g <= GroupServerAdmin
}

// ParseGroup accepts the numeric group, its role name or its display name
// ("Member", "Admin", "Server Admin").
func ParseGroup(s string) (Group, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "member":
		return GroupMember, nil
	case "admin":
		return GroupAdmin, nil
	case "server_admin", "serveradmin":
		return GroupServerAdmin, nil
	}
	if n, err := strconv.Atoi(normalized); err == nil && Group(n).Valid() {
		return Group(n), nil
	}
	return 0, fmt.Errorf("unknown access group %q", s)
}

// User represents a registered account
type User struct {
	ID           uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Name         string    `gorm:"column:name;type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Email        string    `gorm:"column:email;type:varchar(254);uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"` // Never expose password in JSON
	AccessGroup  Group     `gorm:"column:access_group;not null;default:1" json:"access_group" validate:"gte=1,lte=3"`
	Blocked      bool      `gorm:"column:blocked;not null;default:false" json:"blocked"`
	AvatarURL    string    `gorm:"column:avatar_url;type:varchar(512)" json:"avatar_url,omitempty"`
	TokenVersion int       `gorm:"column:token_version;not null;default:0" json:"-"` // Increment to invalidate all user tokens
	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "course_users"
}

func NewUser(name, email, passwordHash string, group Group) (*User, error) {
	u := &User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		AccessGroup:  group,
	}
	if err := check(u); err != nil {
		return nil, err
	}
	return u, nil
}

// HasGroup reports whether the user holds at least the given group.
func (u *User) HasGroup(g Group) bool {
	return u.AccessGroup >= g
}
