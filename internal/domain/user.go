package domain

import (
	"strings"
	"time"
)

type User struct {
	ID        int64
	Name      string
	Role      Role
	Status    UserStatus
	PayRate   *float64
	CreatedAt time.Time
}

// Validate checks the fields required to persist a user.
func (u *User) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(u.Name) == "" {
		v.Add("name", "name is required")
	}
	if !ValidRoles[string(u.Role)] {
		v.Add("role", "role must be admin, developer or user")
	}
	if u.Status != UserActive && u.Status != UserInactive {
		v.Add("status", "status must be active or inactive")
	}
	if u.PayRate != nil && *u.PayRate < 0 {
		v.Add("pay_rate", "pay rate must not be negative")
	}
	return v.OrNil()
}

// Rate returns the pay rate, treating a missing rate as zero.
func (u *User) Rate() float64 {
	return Float64FromPtrWithDefault(0, u.PayRate)
}

type Team struct {
	ID        int64
	Name      string
	ProjectID *int64
	CreatedAt time.Time
}

type TeamMembership struct {
	TeamID int64
	UserID int64
	Role   TeamRole
}
