package rooms

import (
	"strings"

	"github.com/projectpsu986-droid/pet-monitoring/internal/config"
	"github.com/spf13/viper"
)

// Map is an immutable camera-code -> room-name lookup. It is built once at
// startup and passed by value; nothing mutates it afterwards, so no locking
// is needed around reads.
type Map struct {
	byCam map[string]string
}

func defaults() map[string]string {
	return map[string]string{
		"C1": "hall",
		"C2": "kitchen",
		"C3": "garage",
		"C4": "garden",
	}
}

// Load builds the map from the rooms.cameras config section, falling back to
// the built-in camera layout when the section is absent.
func Load() Map {
	byCam := make(map[string]string)
	if cfg := viper.GetStringMapString(config.RoomsCameras); len(cfg) > 0 {
		for cam, room := range cfg {
			byCam[strings.ToUpper(strings.TrimSpace(cam))] = strings.TrimSpace(room)
		}
	} else {
		byCam = defaults()
	}
	return Map{byCam: byCam}
}

// FromCameras builds a map directly from camera pairs. Used by tests.
func FromCameras(byCam map[string]string) Map {
	cp := make(map[string]string, len(byCam))
	for cam, room := range byCam {
		cp[strings.ToUpper(strings.TrimSpace(cam))] = room
	}
	return Map{byCam: cp}
}

// Room resolves a camera code to its room name, or "" when unmapped.
func (m Map) Room(cam string) string {
	if cam == "" {
		return ""
	}
	return m.byCam[strings.ToUpper(strings.TrimSpace(cam))]
}

// RoomOrDash is Room with the display placeholder used by the grid views.
func (m Map) RoomOrDash(cam string) string {
	if r := m.Room(cam); r != "" {
		return r
	}
	return "-"
}

// Cameras returns the camera codes mapped to the given room.
func (m Map) Cameras(room string) []string {
	out := make([]string, 0, 2)
	for cam, r := range m.byCam {
		if r == room {
			out = append(out, cam)
		}
	}
	return out
}
