package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a storefront or back office account.
type User struct {
	BaseModel
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string      `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber  string      `gorm:"type:varchar(20)" json:"phone_number"`
	BirthDate    *time.Time  `gorm:"type:date" json:"birth_date,omitempty"`
	RoleID       *uint       `gorm:"index" json:"role_id"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	Privileges   []Privilege `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"`
	LastSeenAt   *time.Time  `json:"last_seen_at,omitempty"`
	Address      string      `gorm:"type:text" json:"address,omitempty"`
}

// PasswordCost is the bcrypt cost for stored passwords.
const PasswordCost = bcrypt.DefaultCost

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) PasswordMatches(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HasRole is the storefront's hasRole(user, role) check.
func (u *User) HasRole(code string) bool {
	return u.RoleCode() == code
}

// HasAnyRole reports whether the user holds one of codes.
func (u *User) HasAnyRole(codes ...string) bool {
	return slices.Contains(codes, u.RoleCode())
}

// IsStaff reports whether the account may enter the back office.
func (u *User) IsStaff() bool {
	return u.HasAnyRole(StaffRoles...)
}

func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

func (u *User) HasPrivilege(code string) bool {
	return slices.Contains(u.PrivilegeCodes(), code)
}

// PrivilegeCodes returns the granted privilege codes, sorted.
func (u *User) PrivilegeCodes() []string {
	codes := make([]string, 0, len(u.Privileges))
	for _, p := range u.Privileges {
		codes = append(codes, p.Code)
	}
	slices.Sort(codes)
	return codes
}

// UserView is the account as returned by the API.
type UserView struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	BirthDate   *time.Time  `json:"birth_date,omitempty"`
	Address     string      `json:"address,omitempty"`
	RoleID      *uint       `json:"role_id,omitempty"`
	Role        *Role       `json:"role,omitempty"`
	Staff       bool        `json:"staff"`
	IsActive    bool        `json:"is_active"`
	LastSeenAt  *time.Time  `json:"last_seen_at,omitempty"`
	Privileges  []Privilege `json:"privileges"`
}

func (u *User) View() UserView {
	privileges := u.Privileges
	if privileges == nil {
		privileges = []Privilege{}
	}
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		BirthDate:   u.BirthDate,
		Address:     u.Address,
		RoleID:      u.RoleID,
		Role:        u.Role,
		Staff:       u.IsStaff(),
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		Privileges:  privileges,
	}
}
