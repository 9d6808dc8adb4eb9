package models

import "time"

// Cat is the admin-managed identity of a monitored cat. Color doubles as the
// key deriving the cat's dynamic timeslot columns and per-cat config row.
type Cat struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:120;uniqueIndex" json:"name"`
	Color         string `gorm:"size:64" json:"color"`
	ImageURL      string `gorm:"column:image_url;size:255" json:"image_url"`
	RealImageURL  string `gorm:"column:real_image_url;size:255" json:"real_image_url"`
	DisplayStatus bool   `gorm:"column:display_status" json:"display_status"`
}

func (Cat) TableName() string { return "cats" }

// SystemConfig holds the global alert thresholds. Row 1 is the factory
// default, row 2 the active config. Nil/zero fields count as unset.
type SystemConfig struct {
	ID                int  `gorm:"primaryKey"`
	AlertNoCat        *int `gorm:"column:alert_no_cat"`
	AlertNoEat        *int `gorm:"column:alert_no_eat"`
	AlertNoExcreteMin *int `gorm:"column:alert_no_excrete_min"`
	AlertNoExcreteMax *int `gorm:"column:alert_no_excrete_max"`
	MaxSupportedCats  *int `gorm:"column:max_supported_cats"`
}

func (SystemConfig) TableName() string { return "system_config" }

const (
	DefaultConfigID = 1
	ActiveConfigID  = 2
)

// SystemConfigCat is a sparse per-cat override keyed by cat color. When a row
// exists it supersedes the global active config for that cat.
type SystemConfigCat struct {
	CatColor          string    `gorm:"column:cat_color;size:64;primaryKey"`
	AlertNoCat        *int      `gorm:"column:alert_no_cat"`
	AlertNoEat        *int      `gorm:"column:alert_no_eat"`
	AlertNoExcreteMin *int      `gorm:"column:alert_no_excrete_min"`
	AlertNoExcreteMax *int      `gorm:"column:alert_no_excrete_max"`
	MaxSupportedCats  *int      `gorm:"column:max_supported_cats"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (SystemConfigCat) TableName() string { return "system_config_cat" }

// Alert read states. Transitions are one-way unread -> read; archived rows
// are excluded from active queries and from dedup matching.
const (
	AlertUnread   = 0
	AlertRead     = 1
	AlertArchived = 2
)

// AlertLog is one persisted behavioral alert. At most one non-archived row
// may exist per (cat_name, alert_type, alert_date).
type AlertLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CatName   string    `gorm:"column:cat_name;size:120;index:idx_alert_dedup,priority:1" json:"cat"`
	Color     string    `gorm:"size:64" json:"color"`
	AlertType string    `gorm:"column:alert_type;size:32;index:idx_alert_dedup,priority:2" json:"type"`
	Message   string    `gorm:"size:255" json:"message"`
	IsRead    int       `gorm:"column:is_read" json:"is_read"`
	AlertDate time.Time `gorm:"column:alert_date;type:date;index:idx_alert_dedup,priority:3" json:"alert_date"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AlertLog) TableName() string { return "alerts_log" }

// CatConfigMonthly is one monthly rollup row per (month, cat): average
// eat/excrete rates plus the rounded threshold suggestions derived from them.
type CatConfigMonthly struct {
	MonthYm           string    `gorm:"column:month_ym;size:7;primaryKey" json:"month_ym"`
	CatColor          string    `gorm:"column:cat_color;size:64;primaryKey" json:"cat_color"`
	CatName           string    `gorm:"column:cat_name;size:120" json:"cat_name"`
	AlertNoEat        int       `gorm:"column:alert_no_eat" json:"alert_no_eat"`
	AlertNoExcreteMax int       `gorm:"column:alert_no_excrete_max" json:"alert_no_excrete_max"`
	AvgEatPerDay      float64   `gorm:"column:avg_eat_per_day" json:"avg_eat_per_day"`
	AvgExcretePerDay  float64   `gorm:"column:avg_excrete_per_day" json:"avg_excrete_per_day"`
	DaysInMonth       int       `gorm:"column:days_in_month" json:"days_in_month"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CatConfigMonthly) TableName() string { return "cat_config_monthly" }

// NotificationState is a small key/value table persisting worker watermarks
// across restarts.
type NotificationState struct {
	Key       string    `gorm:"column:state_key;size:64;primaryKey"`
	Value     string    `gorm:"column:state_value;size:255"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (NotificationState) TableName() string { return "notification_state" }
