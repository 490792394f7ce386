// pkg/skill/location.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package skill

import (
	"os"
	"sync"

	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/util"
)

// LocationStore remembers where each user is.
type LocationStore interface {
	// Get returns the user's location; ok is false if they haven't set
	// one.
	Get(userID string) (c geo.Coordinate, ok bool, err error)
	Set(userID string, c geo.Coordinate) error
}

///////////////////////////////////////////////////////////////////////////
// MemoryLocationStore

type MemoryLocationStore struct {
	mu        sync.Mutex
	locations map[string]geo.Coordinate
}

func NewMemoryLocationStore() *MemoryLocationStore {
	return &MemoryLocationStore{locations: make(map[string]geo.Coordinate)}
}

func (m *MemoryLocationStore) Get(userID string) (geo.Coordinate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.locations[userID]
	return c, ok, nil
}

func (m *MemoryLocationStore) Set(userID string, c geo.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locations[userID] = c
	return nil
}

///////////////////////////////////////////////////////////////////////////
// FileLocationStore

// FileLocationStore keeps the locations in memory and writes all of them
// to a file whenever one changes.
type FileLocationStore struct {
	mu   sync.Mutex
	path string
	lg   *log.Logger

	// Stored as {lat, long} since Coordinate's fields aren't exported.
	locations map[string][2]float64
}

// NewFileLocationStore loads the locations stored at path; it's fine if
// the file doesn't exist yet.
func NewFileLocationStore(path string, lg *log.Logger) (*FileLocationStore, error) {
	s := &FileLocationStore{
		path:      path,
		lg:        lg,
		locations: make(map[string][2]float64),
	}

	if when, err := util.RetrieveObject(path, &s.locations); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		lg.Infof("%s: no stored locations", path)
	} else {
		lg.Infof("%s: loaded %d locations stored at %s", path, len(s.locations), when)
	}
	if s.locations == nil {
		s.locations = make(map[string][2]float64)
	}

	return s, nil
}

func (s *FileLocationStore) Get(userID string) (geo.Coordinate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ll, ok := s.locations[userID]
	if !ok {
		return geo.Coordinate{}, false, nil
	}
	c, err := geo.NewCoordinate(ll[0], ll[1])
	return c, err == nil, err
}

func (s *FileLocationStore) Set(userID string, c geo.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations[userID] = c.Array()
	if err := util.StoreObject(s.path, s.locations); err != nil {
		s.lg.Errorf("%s: %v", s.path, err)
		return err
	}
	return nil
}

func (s *FileLocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.locations)
}
