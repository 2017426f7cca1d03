// Package app keeps the signed-in user's favorite set. Toggling is
// optimistic: the local set changes first, the API call follows, and
// a failed call reverts the local change.
package app

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"

	plantdomain "github.com/sprigapp/sprig/internal/plants/domain"
	"github.com/sprigapp/sprig/pkg/rest"
)

var ErrNotSignedIn = errors.New("favorites require a signed-in user")

type Service struct {
	api    API
	userID string

	mu     sync.Mutex
	plants map[string]plantdomain.Plant
}

func NewService(api API, userID string) *Service {
	return &Service{
		api:    api,
		userID: userID,
		plants: make(map[string]plantdomain.Plant),
	}
}

// Refresh replaces the local set with the server's view.
func (s *Service) Refresh(ctx context.Context) error {
	if s.userID == "" {
		return ErrNotSignedIn
	}

	plants, err := s.api.ListByUser(ctx, s.userID)
	if err != nil {
		return err
	}

	next := make(map[string]plantdomain.Plant, len(plants))
	for _, p := range plants {
		next[p.ID] = p
	}

	s.mu.Lock()
	s.plants = next
	s.mu.Unlock()
	return nil
}

func (s *Service) IsFavorite(plantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.plants[plantID]
	return ok
}

// List returns the favorites sorted by name for stable display.
func (s *Service) List() []plantdomain.Plant {
	s.mu.Lock()
	out := make([]plantdomain.Plant, 0, len(s.plants))
	for _, p := range s.plants {
		out = append(out, p)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Toggle flips the favorite state of one plant and reports whether it
// is a favorite afterwards. The local change is applied up front and
// reverted if the API call fails, so the UI can render immediately.
func (s *Service) Toggle(ctx context.Context, plant plantdomain.Plant) (bool, error) {
	if s.userID == "" {
		return false, ErrNotSignedIn
	}

	s.mu.Lock()
	_, wasFavorite := s.plants[plant.ID]
	if wasFavorite {
		delete(s.plants, plant.ID)
	} else {
		s.plants[plant.ID] = plant
	}
	s.mu.Unlock()

	var err error
	if wasFavorite {
		err = s.api.Remove(ctx, s.userID, plant.ID)
	} else {
		err = s.api.Add(ctx, s.userID, plant.ID)
		if err != nil && isDuplicateKey(err) {
			// The server already had it; the optimistic add stands.
			err = nil
		}
	}

	if err != nil {
		s.mu.Lock()
		if wasFavorite {
			s.plants[plant.ID] = plant
		} else {
			delete(s.plants, plant.ID)
		}
		s.mu.Unlock()
		return wasFavorite, err
	}
	return !wasFavorite, nil
}

// duplicateKeyPattern matches the Mongo duplicate-key error text the
// backend leaks on a favorite that already exists. The backend has no
// structured conflict code, so this predicate is the one place the
// string sniffing lives.
var duplicateKeyPattern = regexp.MustCompile(`(?i)e11000|duplicate`)

func isDuplicateKey(err error) bool {
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return duplicateKeyPattern.MatchString(apiErr.Message) ||
		duplicateKeyPattern.MatchString(apiErr.Body)
}
