package database

import (
	"errors"

	"github.com/atifjaved999/mini-coaching/internal/domain"

	"gorm.io/gorm"
)

type SeedReport struct {
	CreatedRoles []string
	Noop         bool
}

var seedRoles = []domain.Role{
	{Name: domain.RoleCoach, Description: "may create, edit and delete sessions"},
	{Name: domain.RoleClient, Description: "may book open sessions"},
}

// SeedSync makes sure the two built-in roles exist. Safe to run on every
// startup; the second run is a noop.
func SeedSync(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, role := range seedRoles {
			var existing domain.Role
			err := tx.Where("name = ?", role.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
			report.CreatedRoles = append(report.CreatedRoles, role.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Noop = len(report.CreatedRoles) == 0
	return report, nil
}
