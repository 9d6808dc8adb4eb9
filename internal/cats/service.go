package cats

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rooms"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// View is one cat enriched with its live observation state.
type View struct {
	models.Cat
	CurrentRoom string     `json:"current_room"`
	Present     bool       `json:"present"`
	LastSeen    *time.Time `json:"last_seen"`
	HasChannel  bool       `json:"has_channel"`
}

// DisplayUpdate toggles one cat's dashboard visibility.
type DisplayUpdate struct {
	Name          string `json:"name"`
	DisplayStatus bool   `json:"display_status"`
}

// Service manages the cat registry. Reads join the registry against the live
// timeslot channels; writes cascade the cat's name through the tables that
// denormalize it.
type Service struct {
	db        *gorm.DB
	inspector *timeslot.Inspector
	reader    *timeslot.Reader
	resolver  *sysconfig.Resolver
	rooms     rooms.Map
}

func NewService(db *gorm.DB, inspector *timeslot.Inspector, reader *timeslot.Reader, resolver *sysconfig.Resolver, roomMap rooms.Map) *Service {
	return &Service{
		db:        db,
		inspector: inspector,
		reader:    reader,
		resolver:  resolver,
		rooms:     roomMap,
	}
}

// List returns every cat ordered by name, with current room and presence
// resolved from the newest sample of each cat's channel. Cats without a
// usable channel still list; they just carry no observation state.
func (s *Service) List() ([]View, error) {
	var cats []models.Cat
	if err := s.db.Order("name").Find(&cats).Error; err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	out := make([]View, 0, len(cats))
	for _, cat := range cats {
		view := View{Cat: cat}

		key := cat.Color
		if key == "" {
			key = cat.Name
		}
		ch, ok, err := s.inspector.ChannelFor(key)
		if err != nil {
			return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
		}
		if ok {
			view.HasChannel = true
			latest, err := s.reader.Latest(ch)
			if err != nil {
				return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
			}
			if latest != nil {
				ts := latest.Time
				view.LastSeen = &ts
				view.Present = latest.Present()
				if view.Present {
					view.CurrentRoom = s.rooms.RoomOrDash(latest.CamCode())
				}
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// Get returns a single cat by name.
func (s *Service) Get(name string) (View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, cerrors.ErrMissingCatName
	}
	views, err := s.List()
	if err != nil {
		return View{}, err
	}
	for _, v := range views {
		if v.Name == name {
			return v, nil
		}
	}
	return View{}, cerrors.ErrCatNotFound
}

// Create registers a new cat. The color must map onto a valid column prefix
// and the registry is capped at the configured cat limit; both are checked
// before the insert.
func (s *Service) Create(cat models.Cat) (models.Cat, error) {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return models.Cat{}, cerrors.ErrMissingCatName
	}
	ch, ok := timeslot.NewChannel(cat.Color)
	if !ok {
		return models.Cat{}, cerrors.ErrMissingCatColor.WithMessage(
			"cat color %q is not a valid channel prefix", cat.Color)
	}
	cat.Color = ch.Prefix

	eff, err := s.resolver.Global()
	if err != nil {
		return models.Cat{}, cerrors.ErrConfigWriteFailed.WithCause(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Cat{}).Count(&n).Error; err != nil {
			return err
		}
		if int(n) >= eff.MaxSupportedCats {
			return cerrors.ErrGenericBadRequest.WithMessage(
				"cat limit of %d reached", eff.MaxSupportedCats)
		}
		return tx.Create(&cat).Error
	})
	if err != nil {
		var appErr *cerrors.AppError
		if errors.As(err, &appErr) {
			return models.Cat{}, appErr
		}
		return models.Cat{}, cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	return cat, nil
}

// SetDisplay applies a batch of visibility toggles. Unknown names fail the
// whole batch so a typo cannot half-apply.
func (s *Service) SetDisplay(updates []DisplayUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&models.Cat{}).
				Where("name = ?", u.Name).
				Update("display_status", u.DisplayStatus)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return cerrors.ErrCatNotFound.WithMessage("cat %q not found", u.Name)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *cerrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	return nil
}

// Rename changes a cat's name and cascades through alerts_log and
// cat_config_monthly, which store the name denormalized. All three writes
// commit or none do.
func (s *Service) Rename(oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return cerrors.ErrMissingCatName
	}
	if oldName == newName {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cat{}).
			Where("name = ?", oldName).
			Update("name", newName)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cerrors.ErrCatNotFound.WithMessage("cat %q not found", oldName)
		}

		if err := tx.Model(&models.AlertLog{}).
			Where("cat_name = ?", oldName).
			Update("cat_name", newName).Error; err != nil {
			return err
		}
		return tx.Model(&models.CatConfigMonthly{}).
			Where("cat_name = ?", oldName).
			Update("cat_name", newName).Error
	})
	if err != nil {
		var appErr *cerrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	return nil
}

// Delete removes a cat and its per-color override row. Historical alerts and
// monthly summaries stay, keyed by the name they were recorded under.
func (s *Service) Delete(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return cerrors.ErrMissingCatName
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cat models.Cat
		if err := tx.First(&cat, "name = ?", name).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return cerrors.ErrCatNotFound
			}
			return err
		}
		if err := tx.Delete(&models.Cat{}, "name = ?", name).Error; err != nil {
			return err
		}
		color := timeslot.NormalizePrefix(cat.Color)
		if color == "" {
			return nil
		}
		return tx.Delete(&models.SystemConfigCat{}, "cat_color = ?", color).Error
	})
	if err != nil {
		var appErr *cerrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	return nil
}
