package project

import "fmt"

// Session is one row of the flattened project index: a recording
// addressed by its positional session id.
type Session struct {
	// ID is the 1-based position of the recording in manifest traversal
	// order (groups in listed order, recordings within each group in
	// listed order). Ids are purely positional: they are recomputed by
	// BuildIndex whenever the manifest changes and must never be
	// persisted as stable identifiers.
	ID        int
	Group     string
	Recording string
	Path      string
}

// Index is a flat, session-id-addressable table over a project's
// recordings.
type Index struct {
	sessions []Session
}

// BuildIndex flattens the project into a session table, assigning ids
// 1..N in traversal order.
func BuildIndex(p *Project) *Index {
	idx := &Index{sessions: make([]Session, 0, p.NumRecordings())}
	id := 1
	for _, g := range p.Groups {
		for _, r := range g.Recordings {
			idx.sessions = append(idx.sessions, Session{
				ID:        id,
				Group:     g.Name,
				Recording: r.Name,
				Path:      r.Path,
			})
			id++
		}
	}
	return idx
}

// Sessions returns all sessions in id order.
func (idx *Index) Sessions() []Session {
	return idx.sessions
}

// Len returns the number of indexed sessions.
func (idx *Index) Len() int {
	return len(idx.sessions)
}

// Lookup returns the session with the given id, or ErrRecordingNotFound.
func (idx *Index) Lookup(id int) (Session, error) {
	if id < 1 || id > len(idx.sessions) {
		return Session{}, fmt.Errorf("%w: session %d", ErrRecordingNotFound, id)
	}
	return idx.sessions[id-1], nil
}
