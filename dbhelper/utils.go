package dbhelper

import (
	"wardrobeapi/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupCleaner returns a func wiping every table, children first.
func SetupCleaner(db *gorm.DB) func() {
	return func() {
		session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&models.OutfitGeneration{},
			&models.Outfit{},
			&models.UserPreferences{},
			&models.Clothing{},
			&models.UserCompanyRole{},
			&models.UserPushToken{},
			&models.Company{},
			&models.UserAccount{},
		} {
			session.Unscoped().Delete(model)
		}
	}
}

func Migrate(db *gorm.DB, model interface{}) {
	if err := db.AutoMigrate(model); err != nil {
		zap.S().Fatalf("Error while migrating %T: %v", model, err)
	}
}
