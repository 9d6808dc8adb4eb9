package stats

import (
	"time"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500

	// activityFetchFactor oversizes the raw fetch: many samples collapse
	// into one episode, so pulling limit rows would starve the feed.
	activityFetchFactor = 60
)

// Activity is one behavioral episode in the feed.
type Activity struct {
	Cat      string    `json:"cat"`
	Activity string    `json:"activity"`
	Room     string    `json:"room"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Minutes  int       `json:"minutes"`
}

// ActivityFeed is a cursor page of episodes, newest first.
type ActivityFeed struct {
	Activities []Activity `json:"activities"`
	NextCursor *time.Time `json:"next_cursor"`
}

// Activities returns a cat's recent eat/excrete episodes, newest first,
// paged by a before-cursor on the raw sample time.
func (s *Service) Activities(catName string, limit int, before *time.Time) (ActivityFeed, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	cat, ch, err := s.channelForCat(catName)
	if err != nil {
		return ActivityFeed{}, err
	}

	slots, err := s.reader.FetchRecent(ch, nil, nil, before, limit*activityFetchFactor)
	if err != nil {
		return ActivityFeed{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	if len(slots) == 0 {
		return ActivityFeed{}, nil
	}

	// Slots arrive newest first; reverse into time order so episode
	// collapsing reads naturally.
	for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
		slots[i], slots[j] = slots[j], slots[i]
	}

	episodes := collapseEpisodes(cat.Name, slots, s.rooms)

	// Newest first for the feed.
	for i, j := 0, len(episodes)-1; i < j; i, j = i+1, j-1 {
		episodes[i], episodes[j] = episodes[j], episodes[i]
	}
	if len(episodes) > limit {
		episodes = episodes[:limit]
	}

	feed := ActivityFeed{Activities: episodes}
	if len(slots) == limit*activityFetchFactor {
		// A full fetch means older samples may remain.
		oldest := slots[0].Time
		feed.NextCursor = &oldest
	}
	return feed, nil
}

// collapseEpisodes folds time-ordered slots into eat/excrete episodes. An
// episode ends when the activity or room changes, or when the cat goes
// absent. Minutes derive from the samples inside the episode, not the wall
// span, so sampling gaps do not inflate a visit.
func collapseEpisodes(catName string, slots []timeslot.Slot, roomMap interface{ RoomOrDash(string) string }) []Activity {
	var (
		out     []Activity
		open    *Activity
		samples int
	)
	flush := func() {
		if open != nil {
			open.Minutes = minutes(samples)
			out = append(out, *open)
			open = nil
			samples = 0
		}
	}

	for _, slot := range slots {
		if !slot.Present() {
			flush()
			continue
		}
		act := slot.ActivityLower()
		if act != timeslot.ActivityEat && act != timeslot.ActivityExcrete {
			flush()
			continue
		}
		room := roomMap.RoomOrDash(slot.CamCode())

		if open != nil && open.Activity == act && open.Room == room {
			open.End = slot.Time
			samples++
			continue
		}
		flush()
		open = &Activity{
			Cat:      catName,
			Activity: act,
			Room:     room,
			Start:    slot.Time,
			End:      slot.Time,
		}
		samples = 1
	}
	flush()
	return out
}
