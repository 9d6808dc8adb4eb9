package alerts

import (
	"fmt"
	"time"
)

// Alert types persisted in alerts_log.alert_type. Together with cat_name and
// alert_date they form the dedup identity of an alert.
const (
	TypeNoCat       = "no_cat"
	TypeNoEating    = "no_eating"
	TypeLowExcrete  = "low_excrete"
	TypeHighExcrete = "high_excrete"
)

// Candidate is a computed alert that has not been through dedup yet.
type Candidate struct {
	CatName   string
	Color     string
	Type      string
	Message   string
	AlertDate time.Time // calendar day, midnight
	CreatedAt time.Time
}

func absenceMessage(name string, hoursAbsent, threshold int) string {
	return fmt.Sprintf("%s has not been detected for %d hours (threshold %d)", name, hoursAbsent, threshold)
}

func noEatingMessage(name string, count, minimum int) string {
	return fmt.Sprintf("%s ate %d times, below the minimum of %d", name, count, minimum)
}

func lowExcreteMessage(name string, count, minimum int) string {
	return fmt.Sprintf("%s excreted %d times, below the minimum of %d", name, count, minimum)
}

func highExcreteMessage(name string, count, maximum int) string {
	return fmt.Sprintf("%s excreted %d times, above the maximum of %d", name, count, maximum)
}
