package trigger

import (
	"time"

	"github.com/thoreinstein/folio/internal/build"
)

// State is the lifecycle state of a Trigger.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StatePublishing
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StatePublishing:
		return "publishing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event describes why a run was requested.
type Event struct {
	// Source is "webhook", "watch", or "manual".
	Source string    `json:"source"`
	Ref    string    `json:"ref,omitempty"`
	Commit string    `json:"commit,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// Outcome is the result of one run.
type Outcome struct {
	Generation uint64       `json:"generation"`
	Event      Event        `json:"event"`
	Status     build.Status `json:"-"`
	Published  bool         `json:"published"`
	Stage      build.Stage  `json:"stage,omitempty"`
	Kind       string       `json:"kind,omitempty"`
	Slug       string       `json:"slug,omitempty"`
	Path       string       `json:"path,omitempty"`
	Message    string       `json:"message,omitempty"`
	Pages      int          `json:"pages,omitempty"`
	Commit     string       `json:"commit,omitempty"`
	Started    time.Time    `json:"started"`
	Finished   time.Time    `json:"finished"`
	Err        error        `json:"-"`
}

// Duration returns how long the run took.
func (o Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

// Status is a snapshot of a Trigger.
type Status struct {
	State   State    `json:"state"`
	Pending bool     `json:"pending"`
	Runs    int      `json:"runs"`
	Last    *Outcome `json:"last,omitempty"`
}
