package ingest

// State is the ingestion loop's current phase.
type State int32

const (
	Idle State = iota
	Fetching
	Retrying
	Indexing
	Sleeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Retrying:
		return "retrying"
	case Indexing:
		return "indexing"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}
