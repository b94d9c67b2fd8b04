package services

import (
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
)

// Actor identifies the caller for role-scoped query construction.
type Actor struct {
	UserID    string
	CompanyID string
	Role      models.Role
}

// CanManagePeople reports whether the actor may act on other users' records.
func (a Actor) CanManagePeople() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleHRManager
}

// IsManager reports whether the actor supervises direct reports.
func (a Actor) IsManager() bool {
	return a.Role == models.RoleManager
}

// scopeByRole narrows a query over an employee-scoped table to the rows the
// actor may see: an individual sees only their own records, a manager their
// direct reports' and their own, admin/HR the whole company. userColumn names
// the employee foreign key on the queried table.
func scopeByRole(db *gorm.DB, query *gorm.DB, actor Actor, userColumn string) *gorm.DB {
	query = query.Where("company_id = ?", actor.CompanyID)

	switch {
	case actor.CanManagePeople():
		return query
	case actor.IsManager():
		reports := db.Model(&models.User{}).
			Select("id").
			Where("manager_id = ?", actor.UserID)
		return query.Where(userColumn+" IN (?) OR "+userColumn+" = ?", reports, actor.UserID)
	default:
		return query.Where(userColumn+" = ?", actor.UserID)
	}
}
