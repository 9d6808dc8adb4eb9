package models

import "gorm.io/gorm"

// Migrate creates the service-owned tables. The timeslot table belongs to the
// capture pipeline and is never migrated here.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Cat{},
		&SystemConfig{},
		&SystemConfigCat{},
		&AlertLog{},
		&CatConfigMonthly{},
		&NotificationState{},
	)
}
