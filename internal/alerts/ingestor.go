package alerts

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
)

// Ingestor persists candidates with dedup. The check-then-insert per
// candidate runs inside one transaction, so re-running the same evaluation
// (worker tick, list trigger, manual backfill) can never double-insert.
type Ingestor struct {
	db *gorm.DB
}

func NewIngestor(db *gorm.DB) *Ingestor {
	return &Ingestor{db: db}
}

// Ingest writes every candidate that has no live duplicate and returns the
// rows actually inserted. A duplicate is a row with the same cat, type and
// alert date that has not been archived; archiving an alert deliberately
// re-arms it.
func (i *Ingestor) Ingest(candidates []Candidate) ([]models.AlertLog, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var inserted []models.AlertLog
	err := i.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range candidates {
			var n int64
			err := tx.Model(&models.AlertLog{}).
				Where("cat_name = ? AND alert_type = ? AND DATE(alert_date) = ? AND is_read <> ?",
					c.CatName, c.Type, c.AlertDate.Format(constants.DateLayout), models.AlertArchived).
				Count(&n).Error
			if err != nil {
				return errors.Wrap(err, "failed to check alert duplicates")
			}
			if n > 0 {
				continue
			}

			row := models.AlertLog{
				CatName:   c.CatName,
				Color:     c.Color,
				AlertType: c.Type,
				Message:   c.Message,
				IsRead:    models.AlertUnread,
				AlertDate: c.AlertDate,
				CreatedAt: c.CreatedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return errors.Wrap(err, "failed to insert alert")
			}
			inserted = append(inserted, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}
