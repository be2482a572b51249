package types

// EntityView is a read-only copy of one falling word.
type EntityView struct {
	Text string
	X    int
	Y    int
	Kind WordKind
}

// Snapshot is a point-in-time view of a round for the render sink.
type Snapshot struct {
	// Timestamp is the time at which the snapshot was taken, in unix milliseconds
	Timestamp int64
	Phase     RoundPhase
	Entities  []EntityView
	Score     int
	Lives     int
	Level     int
	Over      bool
	Reason    EndReason
	Input     string
	Width     int
	Height    int
}

// Copy returns a deep copy so a reader never shares the entity slice with a writer.
func (s *Snapshot) Copy() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Entities != nil {
		c.Entities = make([]EntityView, len(s.Entities))
		copy(c.Entities, s.Entities)
	}
	return &c
}
