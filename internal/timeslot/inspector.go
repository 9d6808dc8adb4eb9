package timeslot

import (
	"time"

	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/local_cache"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	// TableName is the shared sample table every cat's channel lives in.
	TableName = "timeslot"

	// DateSlotColumn is the global ordering key.
	DateSlotColumn = "date_slot"

	defaultColumnCacheKey = "timeslot:columns"
	defaultColumnCacheTTL = 30 * time.Second
)

// CatChannel pairs a cat with its resolved channel.
type CatChannel struct {
	Cat     models.Cat
	Channel Channel
}

// Inspector discovers which dynamic per-cat columns exist in the timeslot
// table. The column set is cached with a short TTL: the schema can change
// between deployments, so the cache must expire, but re-querying
// information_schema on every per-cat lookup within one request is wasteful.
type Inspector struct {
	db       *gorm.DB
	cacheKey string
	cacheTTL time.Duration
}

type InspectorOption func(*Inspector)

func WithColumnCacheKey(key string) InspectorOption {
	return func(i *Inspector) { i.cacheKey = key }
}

func WithColumnCacheTTL(ttl time.Duration) InspectorOption {
	return func(i *Inspector) { i.cacheTTL = ttl }
}

func NewInspector(db *gorm.DB, opts ...InspectorOption) *Inspector {
	i := &Inspector{
		db:       db,
		cacheKey: defaultColumnCacheKey,
		cacheTTL: defaultColumnCacheTTL,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Columns returns the set of column names currently present in the timeslot
// table.
func (i *Inspector) Columns() (map[string]struct{}, error) {
	if cached, ok := local_cache.Cache().Get(i.cacheKey); ok {
		if cols, ok := cached.(map[string]struct{}); ok {
			return cols, nil
		}
	}

	types, err := i.db.Migrator().ColumnTypes(TableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to inspect timeslot columns")
	}

	cols := make(map[string]struct{}, len(types))
	for _, ct := range types {
		cols[ct.Name()] = struct{}{}
	}

	local_cache.Cache().SetWithTTL(i.cacheKey, cols, 1, i.cacheTTL)
	return cols, nil
}

// ChannelFor resolves the channel for a single cat color. The second return
// is false when the prefix is invalid or any column of the triple is missing;
// that is exclusion, not an error.
func (i *Inspector) ChannelFor(colorOrName string) (Channel, bool, error) {
	ch, ok := NewChannel(colorOrName)
	if !ok {
		return Channel{}, false, nil
	}
	cols, err := i.Columns()
	if err != nil {
		return Channel{}, false, err
	}
	if _, ok := cols[DateSlotColumn]; !ok {
		return Channel{}, false, nil
	}
	if !ch.ExistsIn(cols) {
		return Channel{}, false, nil
	}
	return ch, true, nil
}

// Channels resolves the channel for every displayable cat, silently skipping
// cats whose prefix fails validation or whose column triple is incomplete.
// Results keep the cats' query order.
func (i *Inspector) Channels(displayedOnly bool) ([]CatChannel, error) {
	var cats []models.Cat
	q := i.db.Order("name")
	if displayedOnly {
		q = q.Where("display_status = ?", true)
	}
	if err := q.Find(&cats).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query cats")
	}

	cols, err := i.Columns()
	if err != nil {
		return nil, err
	}
	if _, ok := cols[DateSlotColumn]; !ok {
		return nil, nil
	}

	out := make([]CatChannel, 0, len(cats))
	for _, cat := range cats {
		key := cat.Color
		if key == "" {
			key = cat.Name
		}
		ch, ok := NewChannel(key)
		if !ok || !ch.ExistsIn(cols) {
			continue
		}
		out = append(out, CatChannel{Cat: cat, Channel: ch})
	}
	return out, nil
}
