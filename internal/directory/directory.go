package directory

import (
	"context"
	"fmt"
)

// Source supplies the set of pre-provisioned room names at startup. Rooms
// are read once; there is no dynamic room creation.
type Source interface {
	Rooms(ctx context.Context) ([]string, error)
}

// Static serves a fixed room list from configuration.
type Static struct {
	rooms []string
}

func NewStatic(rooms []string) (*Static, error) {
	seen := make(map[string]bool, len(rooms))
	var deduped []string
	for _, name := range rooms {
		if name == "" {
			return nil, fmt.Errorf("room name must not be empty")
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		deduped = append(deduped, name)
	}

	if len(deduped) == 0 {
		return nil, fmt.Errorf("at least one room is required")
	}

	return &Static{rooms: deduped}, nil
}

func (s *Static) Rooms(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}
