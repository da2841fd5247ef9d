package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Responsible{},
		&models.Role{},
		&models.Permission{},
		&models.Category{},
		&models.Status{},
		&models.Project{},
		&models.Trainer{},
		&models.Education{},
		&models.Stakeholder{},
		&models.Payment{},
		&models.Activity{},
		&models.ActivityLog{},
		&models.PerformanceLog{},
		&models.ApiLog{},
		&models.ErrorLog{},
		&models.FrontendLog{},
	)
}

// guardedModules is the capability grid seeded on first start. Modules match
// the strings used by route guards; actions cover the CRUD surface plus export.
var guardedModules = []string{
	"education",
	"trainer",
	"project",
	"stakeholder",
	"payment",
	"category",
	"status",
	"activity",
	"responsible",
	"users",
	"roles",
	"permissions",
	"logs",
}

var guardedActions = []string{"view", "create", "update", "delete", "export"}

// SeedData populates the default permission grid and the ADMIN role.
func SeedData(db *gorm.DB) error {
	for _, module := range guardedModules {
		for _, action := range guardedActions {
			perm := models.Permission{
				Module:      module,
				Action:      action,
				Description: fmt.Sprintf("Allows %s on %s", action, module),
			}
			err := db.Where(models.Permission{Module: module, Action: action}).
				Attrs(perm).
				FirstOrCreate(&models.Permission{}).Error
			if err != nil {
				return err
			}
		}
	}

	// The ADMIN role bypasses permission checks by name; it carries no
	// explicit permission rows.
	admin := models.Role{
		Name:        "ADMIN",
		Description: "Full system access",
	}
	if err := db.Where(models.Role{Name: admin.Name}).Attrs(admin).FirstOrCreate(&models.Role{}).Error; err != nil {
		return err
	}

	return nil
}

// SeedAdminUser ensures an initial administrator account exists. Called from
// bootstrap with credentials taken from configuration; a blank email skips
// seeding entirely.
func SeedAdminUser(db *gorm.DB, email, password, fullName string) error {
	if email == "" {
		return nil
	}
	if password == "" {
		return errors.New("seed admin: password is required")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	if fullName == "" {
		fullName = "Administrator"
	}

	user := models.User{
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	return db.Create(&user).Error
}
