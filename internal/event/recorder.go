package event

// Recorder is an embeddable event queue for aggregate roots.
type Recorder struct {
	events []any
}

// Record queues an event for later release.
func (r *Recorder) Record(event any) {
	r.events = append(r.events, event)
}

// ReleaseEvents returns all queued events and clears the queue.
func (r *Recorder) ReleaseEvents() []any {
	events := r.events
	r.events = nil
	return events
}
