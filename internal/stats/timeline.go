package stats

import (
	"time"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Timeline segment states.
const (
	SegmentAbsent   = "absent"
	SegmentIdle     = "idle"
	SegmentEating   = "eat"
	SegmentExcrete  = "excrete"
	SegmentNoSample = "no_data"
)

// Segment is one homogeneous stretch of a cat's day.
type Segment struct {
	State   string    `json:"state"`
	Room    string    `json:"room,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// Timeline is one cat's day collapsed into segments.
type Timeline struct {
	Cat      string    `json:"cat"`
	Day      string    `json:"day"`
	Segments []Segment `json:"segments"`
}

func slotState(s timeslot.Slot) (string, string) {
	if s.Status == nil {
		return SegmentNoSample, ""
	}
	if !s.Present() {
		return SegmentAbsent, ""
	}
	switch s.ActivityLower() {
	case timeslot.ActivityEat:
		return SegmentEating, s.CamCode()
	case timeslot.ActivityExcrete:
		return SegmentExcrete, s.CamCode()
	default:
		return SegmentIdle, s.CamCode()
	}
}

// CatTimeline collapses one cat's day into contiguous segments. Consecutive
// samples sharing state and room merge; each segment's minutes come from its
// sample count.
func (s *Service) CatTimeline(catName string, day time.Time) (Timeline, error) {
	cat, ch, err := s.channelForCat(catName)
	if err != nil {
		return Timeline{}, err
	}

	start, end := dayBounds(day)
	slots, err := s.reader.FetchRange(ch, start, end)
	if err != nil {
		return Timeline{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	tl := Timeline{
		Cat: cat.Name,
		Day: start.Format(constants.DateLayout),
	}

	var (
		open    *Segment
		samples int
	)
	flush := func() {
		if open != nil {
			open.Minutes = minutes(samples)
			tl.Segments = append(tl.Segments, *open)
			open = nil
			samples = 0
		}
	}
	for _, slot := range slots {
		state, cam := slotState(slot)
		room := ""
		if cam != "" {
			room = s.rooms.RoomOrDash(cam)
		}
		if open != nil && open.State == state && open.Room == room {
			open.End = slot.Time
			samples++
			continue
		}
		flush()
		open = &Segment{State: state, Room: room, Start: slot.Time, End: slot.Time}
		samples = 1
	}
	flush()
	return tl, nil
}

// RoomEntry is one stay of one cat in one room.
type RoomEntry struct {
	Cat     string    `json:"cat"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// RoomTimeline maps room name to the stays observed there over one day,
// across every displayed cat.
func (s *Service) RoomTimeline(day time.Time) (map[string][]RoomEntry, error) {
	chans, err := s.inspector.Channels(true)
	if err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	start, end := dayBounds(day)
	out := make(map[string][]RoomEntry)
	for _, cc := range chans {
		slots, err := s.reader.FetchRange(cc.Channel, start, end)
		if err != nil {
			return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
		}

		var (
			room    string
			open    *RoomEntry
			samples int
		)
		flush := func() {
			if open != nil {
				open.Minutes = minutes(samples)
				out[room] = append(out[room], *open)
				open = nil
				samples = 0
			}
		}
		for _, slot := range slots {
			if !slot.Present() {
				flush()
				continue
			}
			r := s.rooms.Room(slot.CamCode())
			if r == "" {
				flush()
				continue
			}
			if open != nil && room == r {
				open.End = slot.Time
				samples++
				continue
			}
			flush()
			room = r
			open = &RoomEntry{Cat: cc.Cat.Name, Start: slot.Time, End: slot.Time}
			samples = 1
		}
		flush()
	}
	return out, nil
}
