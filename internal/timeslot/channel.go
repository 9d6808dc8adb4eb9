package timeslot

import "strings"

// Channel is the validated column triple a cat occupies in the shared
// timeslot table: `<prefix>` (presence status), `<prefix>_cam` (camera code)
// and `<prefix>_ac` (activity code). A Channel is only constructed through
// NewChannel, so holding one implies the prefix passed the identifier
// allow-list and the column names are safe to interpolate into SQL.
type Channel struct {
	Prefix         string
	StatusColumn   string
	CamColumn      string
	ActivityColumn string
}

// NewChannel derives a channel descriptor from a cat color (or name when the
// color is empty). The prefix is lowercased and trimmed; prefixes containing
// anything outside [a-z0-9_] are rejected because these names parameterize
// queries structurally, not as bound values.
func NewChannel(colorOrName string) (Channel, bool) {
	prefix := NormalizePrefix(colorOrName)
	if !safeIdentifier(prefix) {
		return Channel{}, false
	}
	ch := Channel{
		Prefix:         prefix,
		StatusColumn:   prefix,
		CamColumn:      prefix + "_cam",
		ActivityColumn: prefix + "_ac",
	}
	if !safeIdentifier(ch.CamColumn) || !safeIdentifier(ch.ActivityColumn) {
		return Channel{}, false
	}
	return ch, true
}

// NormalizePrefix maps a cat color to its column prefix.
func NormalizePrefix(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ExistsIn reports whether every column of the triple is present in the
// discovered column set.
func (c Channel) ExistsIn(columns map[string]struct{}) bool {
	for _, col := range []string{c.StatusColumn, c.CamColumn, c.ActivityColumn} {
		if _, ok := columns[col]; !ok {
			return false
		}
	}
	return true
}

func safeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, ch := range name {
		ok := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '_'
		if !ok {
			return false
		}
	}
	return true
}
