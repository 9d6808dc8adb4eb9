package timeslot

// Activity labels written by the upstream pipeline. "NO" (and empty) mean
// the cat was present without a tracked behavior.
const (
	ActivityEat     = "eat"
	ActivityExcrete = "excrete"
	ActivityNone    = "no"
)

// CountTransitions counts discrete episodes of the target activity: a slot
// contributes only when the cat is present and the activity switches from
// not-target to target. Absent slots are skipped without resetting the
// previous state, so a presence gap inside one long episode does not double
// count it. Raw samples overcount duration as frequency; entry counting is
// the unit the "ate N times today" thresholds are defined over.
func CountTransitions(slots []Slot, target string) int {
	count := 0
	prev := ""
	for _, s := range slots {
		if !s.Present() {
			continue
		}
		cur := s.ActivityLower()
		if cur == target && prev != target {
			count++
		}
		prev = cur
	}
	return count
}

// ActivityRoomKey identifies one (activity, room) combination inside a
// tallied window.
type ActivityRoomKey struct {
	Activity string
	Room     string
}

// Tally carries both counting views of a window: Transitions is the episode
// count, Samples the raw slot count the duration derives from
// (Samples x SlotSeconds).
type Tally struct {
	Transitions int
	Samples     int
}

// TallyByRoom aggregates present slots of a window into per-(activity, room)
// tallies, tracking only eat/excrete. Keys come back in first-seen order for
// stable rendering. Unlike CountTransitions, a non-tracked activity resets
// the episode state here: moving eat -> idle -> eat in the same room is two
// visits in the grid view.
func TallyByRoom(slots []Slot, roomOf func(cam string) string) ([]ActivityRoomKey, map[ActivityRoomKey]Tally) {
	order := make([]ActivityRoomKey, 0, 4)
	tallies := make(map[ActivityRoomKey]Tally)

	var lastKey *ActivityRoomKey
	for _, s := range slots {
		if !s.Present() {
			continue
		}
		act := s.ActivityLower()
		if act != ActivityEat && act != ActivityExcrete {
			lastKey = nil
			continue
		}

		room := ""
		if cam := s.CamCode(); cam != "" && roomOf != nil {
			room = roomOf(cam)
		}
		if room == "" {
			room = "-"
		}

		key := ActivityRoomKey{Activity: act, Room: room}
		t, seen := tallies[key]
		if !seen {
			order = append(order, key)
		}
		t.Samples++
		if lastKey == nil || *lastKey != key {
			t.Transitions++
			lastKey = &key
		}
		tallies[key] = t
	}
	return order, tallies
}
