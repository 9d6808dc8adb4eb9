package stats

import (
	"fmt"
	"time"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Cell is one (activity, room) tally inside an hour of the grid.
type Cell struct {
	Activity string `json:"activity"`
	Room     string `json:"room"`
	Count    int    `json:"count"`
	Minutes  int    `json:"minutes"`
	Label    string `json:"label"`
}

// TableRow is one cat's 24 hour-buckets.
type TableRow struct {
	Cat   string   `json:"cat"`
	Color string   `json:"color"`
	Hours [][]Cell `json:"hours"`
}

// Table is the hourly behavior grid for one day.
type Table struct {
	Day  string     `json:"day"`
	Rows []TableRow `json:"rows"`
}

// TimelineTable renders one day as an hour-by-hour grid, one row per
// displayed cat, each cell listing the tracked activities of that hour with
// visit count and duration.
func (s *Service) TimelineTable(day time.Time) (Table, error) {
	chans, err := s.inspector.Channels(true)
	if err != nil {
		return Table{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	start, end := dayBounds(day)
	table := Table{Day: start.Format(constants.DateLayout)}

	for _, cc := range chans {
		slots, err := s.reader.FetchRange(cc.Channel, start, end)
		if err != nil {
			return Table{}, cerrors.ErrStatsQueryFailed.WithCause(err)
		}

		row := TableRow{
			Cat:   cc.Cat.Name,
			Color: cc.Channel.Prefix,
			Hours: make([][]Cell, 24),
		}

		byHour := make([][]timeslot.Slot, 24)
		for _, slot := range slots {
			h := slot.Time.Hour()
			byHour[h] = append(byHour[h], slot)
		}

		for h := 0; h < 24; h++ {
			order, tallies := timeslot.TallyByRoom(byHour[h], s.rooms.Room)
			cells := make([]Cell, 0, len(order))
			for _, key := range order {
				tally := tallies[key]
				cell := Cell{
					Activity: key.Activity,
					Room:     key.Room,
					Count:    tally.Transitions,
					Minutes:  minutes(tally.Samples),
				}
				cell.Label = fmt.Sprintf("%s (%s): %dx, %dm",
					cell.Activity, cell.Room, cell.Count, cell.Minutes)
				cells = append(cells, cell)
			}
			row.Hours[h] = cells
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
