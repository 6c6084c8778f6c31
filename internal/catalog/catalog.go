// Package catalog maintains the set of bookable rooms.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrUnknownRoom indicates a lookup for a room that is not in the catalog.
var ErrUnknownRoom = errors.New("unknown room")

// Room is a bookable meeting room.
type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Catalog is an immutable collection of rooms keyed by identifier.
type Catalog struct {
	rooms []Room
	byKey map[string]Room
}

// New builds a catalog from the supplied rooms. Rooms are addressable by
// identifier or display name, case-insensitively.
func New(rooms []Room) (*Catalog, error) {
	c := &Catalog{
		rooms: make([]Room, 0, len(rooms)),
		byKey: make(map[string]Room, len(rooms)*2),
	}
	for _, room := range rooms {
		if room.ID == "" {
			return nil, fmt.Errorf("room %q has no identifier", room.Name)
		}
		if room.Capacity <= 0 {
			return nil, fmt.Errorf("room %q has non-positive capacity %d", room.ID, room.Capacity)
		}
		idKey := normalize(room.ID)
		if _, exists := c.byKey[idKey]; exists {
			return nil, fmt.Errorf("duplicate room identifier %q", room.ID)
		}
		c.rooms = append(c.rooms, room)
		c.byKey[idKey] = room
		if nameKey := normalize(room.Name); nameKey != "" && nameKey != idKey {
			c.byKey[nameKey] = room
		}
	}
	sort.Slice(c.rooms, func(i, j int) bool { return c.rooms[i].Name < c.rooms[j].Name })
	return c, nil
}

// Default returns the built-in room set.
func Default() *Catalog {
	c, err := New([]Room{
		{ID: "nest", Name: "The Nest", Capacity: 30},
		{ID: "treehouse", Name: "The Treehouse", Capacity: 15},
		{ID: "lighthouse", Name: "The Lighthouse", Capacity: 15},
		{ID: "raven", Name: "Raven", Capacity: 4},
		{ID: "hummingbird", Name: "Hummingbird", Capacity: 4},
	})
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in rooms: %v", err))
	}
	return c
}

// Load reads a catalog from a JSON file containing an array of rooms.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms file: %w", err)
	}
	var rooms []Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("parse rooms file %s: %w", path, err)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("rooms file %s defines no rooms", path)
	}
	return New(rooms)
}

// Lookup resolves a room by identifier or display name. Matching ignores
// case and surrounding whitespace.
func (c *Catalog) Lookup(name string) (Room, error) {
	room, ok := c.byKey[normalize(name)]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrUnknownRoom, strings.TrimSpace(name))
	}
	return room, nil
}

// Rooms returns all rooms sorted by display name.
func (c *Catalog) Rooms() []Room {
	out := make([]Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
