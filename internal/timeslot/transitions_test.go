package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func slot(t time.Time, status, cam, activity string) Slot {
	s := Slot{Time: t}
	if status != "" {
		s.Status = &status
	}
	if cam != "" {
		s.Cam = &cam
	}
	if activity != "" {
		s.Activity = &activity
	}
	return s
}

func slotSeries(specs ...[2]string) []Slot {
	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	out := make([]Slot, 0, len(specs))
	for i, sp := range specs {
		out = append(out, slot(base.Add(time.Duration(i*10)*time.Second), sp[0], "C2", sp[1]))
	}
	return out
}

func TestCountTransitions_RunsCollapse(t *testing.T) {
	slots := slotSeries(
		[2]string{"F", "eat"},
		[2]string{"F", "eat"},
		[2]string{"F", "eat"},
		[2]string{"F", "NO"},
		[2]string{"F", "eat"},
	)
	assert.Equal(t, 2, CountTransitions(slots, ActivityEat))
}

func TestCountTransitions_LeadingAbsence(t *testing.T) {
	slots := slotSeries(
		[2]string{"NF", ""},
		[2]string{"F", "eat"},
		[2]string{"F", "eat"},
	)
	assert.Equal(t, 1, CountTransitions(slots, ActivityEat))
}

func TestCountTransitions_AbsenceDoesNotResetState(t *testing.T) {
	// One eating episode interrupted by a presence gap stays one episode.
	slots := slotSeries(
		[2]string{"F", "eat"},
		[2]string{"NF", ""},
		[2]string{"F", "eat"},
	)
	assert.Equal(t, 1, CountTransitions(slots, ActivityEat))
}

func TestCountTransitions_CaseInsensitive(t *testing.T) {
	slots := slotSeries(
		[2]string{"f", "EAT"},
		[2]string{"F", "Eat"},
		[2]string{"F", "no"},
		[2]string{"F", "excrete"},
	)
	assert.Equal(t, 1, CountTransitions(slots, ActivityEat))
	assert.Equal(t, 1, CountTransitions(slots, ActivityExcrete))
}

func TestCountTransitions_Empty(t *testing.T) {
	assert.Equal(t, 0, CountTransitions(nil, ActivityEat))
	assert.Equal(t, 0, CountTransitions([]Slot{}, ActivityExcrete))
}

func TestTallyByRoom(t *testing.T) {
	roomOf := func(cam string) string {
		if cam == "C2" {
			return "kitchen"
		}
		return ""
	}

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	slots := []Slot{
		slot(base, "F", "C2", "eat"),
		slot(base.Add(10*time.Second), "F", "C2", "eat"),
		slot(base.Add(20*time.Second), "F", "C2", "NO"),
		slot(base.Add(30*time.Second), "F", "C2", "eat"),
		slot(base.Add(40*time.Second), "F", "C9", "excrete"),
	}

	order, tallies := TallyByRoom(slots, roomOf)

	assert.Equal(t, []ActivityRoomKey{
		{Activity: "eat", Room: "kitchen"},
		{Activity: "excrete", Room: "-"},
	}, order)

	eat := tallies[ActivityRoomKey{Activity: "eat", Room: "kitchen"}]
	assert.Equal(t, 2, eat.Transitions, "idle slot should split the eat run")
	assert.Equal(t, 3, eat.Samples)

	ex := tallies[ActivityRoomKey{Activity: "excrete", Room: "-"}]
	assert.Equal(t, 1, ex.Transitions)
	assert.Equal(t, 1, ex.Samples)
}

func TestChannelValidation(t *testing.T) {
	ch, ok := NewChannel(" Black ")
	assert.True(t, ok)
	assert.Equal(t, "black", ch.Prefix)
	assert.Equal(t, "black", ch.StatusColumn)
	assert.Equal(t, "black_cam", ch.CamColumn)
	assert.Equal(t, "black_ac", ch.ActivityColumn)

	_, ok = NewChannel("black; DROP TABLE timeslot")
	assert.False(t, ok)

	_, ok = NewChannel("")
	assert.False(t, ok)

	_, ok = NewChannel("grey-tabby")
	assert.False(t, ok)

	_, ok = NewChannel("tabby_2")
	assert.True(t, ok)
}

func TestChannelExistsIn(t *testing.T) {
	cols := map[string]struct{}{
		"date_slot": {},
		"black":     {},
		"black_cam": {},
	}
	ch, ok := NewChannel("black")
	assert.True(t, ok)
	assert.False(t, ch.ExistsIn(cols), "missing activity column excludes the channel")

	cols["black_ac"] = struct{}{}
	assert.True(t, ch.ExistsIn(cols))
}
