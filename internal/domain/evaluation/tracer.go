package evaluation

// Tracer records why rules fired, in firing order. A Tracer belongs to a
// single evaluation and is not safe for concurrent use.
type Tracer struct {
	notes []string
}

// Record appends one note.
func (t *Tracer) Record(note string) {
	t.notes = append(t.notes, note)
}

// Len returns the number of recorded notes.
func (t *Tracer) Len() int {
	return len(t.notes)
}

// Entries returns a copy of the recorded notes.
func (t *Tracer) Entries() []string {
	out := make([]string, len(t.notes))
	copy(out, t.notes)
	return out
}
