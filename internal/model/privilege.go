package model

import "strings"

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

var DefaultPrivileges = []Privilege{
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},

	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},

	{Code: "stock:view", Name: "View Stock Movements"},
	{Code: "stock:adjust", Name: "Adjust Stock"},

	{Code: "code:resolve", Name: "Scan Codes"},
	{Code: "code:bind", Name: "Bind Codes"},

	{Code: "order:view", Name: "View Orders"},
	{Code: "order:update", Name: "Update Orders"},

	{Code: "dashboard:view", Name: "View Dashboard"},
}

// PrivilegesForRole picks the default grant for a role code.
// Editors get everything except user and order administration.
func PrivilegesForRole(code string, all []Privilege) []Privilege {
	switch code {
	case RoleAdmin:
		return all
	case RoleEditor:
		out := make([]Privilege, 0, len(all))
		for _, p := range all {
			if strings.HasPrefix(p.Code, "user:") || p.Code == "order:update" {
				continue
			}
			out = append(out, p)
		}
		return out
	default:
		return nil
	}
}
