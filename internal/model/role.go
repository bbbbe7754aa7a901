package model

// Role groups privileges. Codes mirror the storefront's app roles.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full back office access",
	},
	{
		Code:        RoleEditor,
		Name:        "Editor",
		Description: "Catalog and stock operations",
	},
	{
		Code:        RoleUser,
		Name:        "Shopper",
		Description: "Storefront account",
	},
}

// StaffRoles may enter the back office.
var StaffRoles = []string{RoleAdmin, RoleEditor}
