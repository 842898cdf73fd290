package wordledomain

// Outcome is the result of an earliest-wins upsert.
type Outcome int

const (
	// Unchanged means an entry with an equal or earlier timestamp was kept.
	Unchanged Outcome = iota
	// Inserted means no entry existed for the player and day.
	Inserted
	// Replaced means the stored entry had a later timestamp and was overwritten.
	Replaced
)

// Stored reports whether the upsert wrote anything.
func (o Outcome) Stored() bool {
	return o == Inserted || o == Replaced
}

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	default:
		return "unchanged"
	}
}
