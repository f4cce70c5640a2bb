// Package session holds the per-user dashboard state: slider readings, the
// last prediction and the selected page. Sessions never share state.
package session

import (
	"fmt"
	"sync"
	"time"

	"smart-irrigation/internal/models"
)

// Page is the Navigation Shell selection
type Page int

const (
	PageHome Page = iota
	PageSummary
	PageAbout
)

var pageNames = [...]string{"home", "summary", "about"}

func (p Page) String() string {
	if p < 0 || int(p) >= len(pageNames) {
		return "home"
	}
	return pageNames[p]
}

// Title is the label shown in the navigation sidebar
func (p Page) Title() string {
	switch p {
	case PageSummary:
		return "Summary"
	case PageAbout:
		return "About"
	default:
		return "Home"
	}
}

// Pages lists the selectable pages in sidebar order
func Pages() []Page {
	return []Page{PageHome, PageSummary, PageAbout}
}

// ParsePage resolves a page name; unknown names fall back to Home
func ParsePage(name string) (Page, bool) {
	for i, n := range pageNames {
		if n == name {
			return Page(i), true
		}
	}
	return PageHome, false
}

// State is one session's mutable record. All methods are safe for concurrent use.
type State struct {
	mu         sync.Mutex
	id         string
	readings   models.SensorVector
	prediction *models.PredictionVector
	page       Page
	lastSeen   time.Time
}

// NewState returns a state with default readings and no prediction
func NewState(id string) *State {
	return &State{
		id:       id,
		readings: models.DefaultSensorVector(),
		page:     PageHome,
		lastSeen: time.Now(),
	}
}

// ID returns the session identifier
func (s *State) ID() string {
	return s.id
}

// Reading returns slot i
func (s *State) Reading(i int) (float64, error) {
	if i < 0 || i >= models.NumSensors {
		return 0, fmt.Errorf("sensor index %d out of range [0,%d)", i, models.NumSensors)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings[i], nil
}

// SetReading stores v in slot i, clamped to the slider range, and returns the stored value
func (s *State) SetReading(i int, v float64) (float64, error) {
	if i < 0 || i >= models.NumSensors {
		return 0, fmt.Errorf("sensor index %d out of range [0,%d)", i, models.NumSensors)
	}
	v = models.ClampReading(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[i] = v
	return v, nil
}

// Readings returns a snapshot of all slots in index order
func (s *State) Readings() models.SensorVector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings
}

// Prediction returns the last stored prediction, if any
func (s *State) Prediction() (models.PredictionVector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prediction == nil {
		return models.PredictionVector{}, false
	}
	return *s.prediction, true
}

// SetPrediction replaces the stored prediction wholesale
func (s *State) SetPrediction(p models.PredictionVector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prediction = &p
}

// Page returns the current navigation selection
func (s *State) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage records the navigation selection. Readings and prediction are untouched.
func (s *State) SetPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = p
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
