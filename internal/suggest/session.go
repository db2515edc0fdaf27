package suggest

import (
	"strings"
	"sync"
)

// Keys understood by Session.Key.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// View is a snapshot of a session for rendering.
type View struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	Open        bool         `json:"open"`
	Selected    int          `json:"selected"`
	Error       bool         `json:"error"`
	// Blur asks the client to drop input focus.
	Blur bool `json:"blur,omitempty"`
	// Navigate is the route to go to, set when a suggestion was committed.
	Navigate string `json:"navigate,omitempty"`
}

// Session is the search-bar state of one browser. All methods are safe for
// concurrent use; overlapping fetches are ordered by sequence number.
type Session struct {
	mu sync.Mutex

	id          string
	query       string
	suggestions []Suggestion
	open        bool
	selected    int
	failed      bool
	blur        bool
	navigate    string
	mounted     bool

	// issued is the sequence of the latest fetch started; shown is the
	// sequence whose result is currently displayed.
	issued uint64
	shown  uint64
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{id: id, selected: -1}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Begin records a new input value and returns the sequence number its fetch
// must carry, along with the trimmed query. An empty query clears and closes
// the panel immediately and supersedes every outstanding fetch.
func (s *Session) Begin(query string) (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.query = query
	s.blur = false
	s.navigate = ""

	q := strings.TrimSpace(query)
	if q == "" {
		s.suggestions = nil
		s.open = false
		s.selected = -1
		s.failed = false
		s.shown = s.issued
	}
	return s.issued, q
}

// Apply installs the result of the fetch tagged seq. It reports false, and
// changes nothing, when a newer result is already displayed.
func (s *Session) Apply(seq uint64, suggestions []Suggestion, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.shown {
		return false
	}
	s.shown = seq
	s.selected = -1
	if err != nil {
		s.suggestions = nil
		s.open = false
		s.failed = true
		return true
	}
	s.suggestions = suggestions
	s.open = true
	s.failed = false
	return true
}

// Key applies a keyboard event. Keys are ignored while the panel is closed.
// Enter commits the selected suggestion, or the first when none is selected.
func (s *Session) Key(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blur = false
	s.navigate = ""
	if !s.open {
		return
	}

	switch key {
	case KeyArrowDown:
		if s.selected < len(s.suggestions)-1 {
			s.selected++
		}
	case KeyArrowUp:
		if s.selected > 0 {
			s.selected--
		} else {
			s.selected = -1
		}
	case KeyEnter:
		switch {
		case s.selected >= 0 && s.selected < len(s.suggestions):
			s.commit(s.suggestions[s.selected])
		case len(s.suggestions) > 0:
			s.commit(s.suggestions[0])
		}
	case KeyEscape:
		s.open = false
		s.selected = -1
		s.blur = true
	}
}

// Select commits the suggestion with the given id. It reports false when the
// id is not among the current suggestions.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blur = false
	s.navigate = ""
	for _, sug := range s.suggestions {
		if sug.ID == id {
			s.commit(sug)
			return true
		}
	}
	return false
}

// PointerDown handles a pointer press. A press outside the input and panel
// closes the panel, but only while the outside-click listener is mounted.
func (s *Session) PointerDown(inside bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blur = false
	s.navigate = ""
	if inside || !s.mounted {
		return
	}
	s.open = false
}

// Mount installs the outside-click listener.
func (s *Session) Mount() {
	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()
}

// Unmount removes the outside-click listener.
func (s *Session) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

// Mounted reports whether the outside-click listener is installed.
func (s *Session) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Query:    s.query,
		Open:     s.open && len(s.suggestions) > 0,
		Selected: s.selected,
		Error:    s.failed,
		Blur:     s.blur,
		Navigate: s.navigate,
	}
	if len(s.suggestions) > 0 {
		v.Suggestions = append([]Suggestion(nil), s.suggestions...)
	}
	return v
}

// commit writes the suggestion's name back into the input, clears the
// suggestion state and records the navigation target. Callers hold mu.
func (s *Session) commit(sug Suggestion) {
	s.query = sug.Name
	s.suggestions = nil
	s.open = false
	s.selected = -1
	s.failed = false
	s.navigate = sug.ProfilePath()
	// Any fetch still in flight belongs to the old query.
	s.shown = s.issued
}
