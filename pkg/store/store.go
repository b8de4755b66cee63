// Package store persists named chart snapshots.
//
// A snapshot is everything needed to reopen a chart: the person records and
// the view state (manual positions, collapsed people, orientation). Three
// backends are provided:
//   - file: one JSON file per chart, for the CLI
//   - sqlite: a single database file, for the chart server
//   - mongo: a shared collection, for multi-instance deployments
//
// Loading a chart that was never saved yields an empty snapshot rather than
// an error, so commands can treat "new" and "existing" charts alike.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/person"
)

// Sentinel errors for store operations.
var (
	// ErrInvalidName is returned for chart names that cannot be used as keys.
	ErrInvalidName = errors.New("invalid chart name")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// DefaultChart is the chart name used when none is given.
const DefaultChart = "default"

// View is the per-chart presentation state.
type View struct {
	Pins        map[string]layout.Point `json:"pins,omitempty" bson:"pins,omitempty"`
	Collapsed   []string                `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Orientation layout.Orientation      `json:"orientation,omitempty" bson:"orientation,omitempty"`
}

// Snapshot is one saved chart.
type Snapshot struct {
	Name      string          `json:"name" bson:"_id"`
	People    []person.Person `json:"people" bson:"people"`
	View      View            `json:"view" bson:"view"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// Empty returns an unsaved snapshot for name.
func Empty(name string) *Snapshot {
	return &Snapshot{Name: name, People: []person.Person{}}
}

// IsEmpty reports whether s holds no people and no view state.
func (s *Snapshot) IsEmpty() bool {
	return len(s.People) == 0 && len(s.View.Pins) == 0 && len(s.View.Collapsed) == 0
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save writes s under s.Name, replacing any earlier snapshot, and stamps
	// UpdatedAt.
	Save(ctx context.Context, s *Snapshot) error

	// Load returns the snapshot named name, or an empty one if none exists.
	Load(ctx context.Context, name string) (*Snapshot, error)

	// List returns the names of all saved charts, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes a chart. Deleting a missing chart is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

var nameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateName rejects names that are empty, too long or would escape a
// directory.
func ValidateName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// normalize fills nil slices so saved documents always carry arrays.
func normalize(s *Snapshot) {
	if s.People == nil {
		s.People = []person.Person{}
	}
}
