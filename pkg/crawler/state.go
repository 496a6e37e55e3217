package crawler

// State is a step of the crawl loop
type State int

const (
	StateFetchingPage State = iota
	StateProcessingImages
	StatePaced
	StateRetrying
	StateDone
	StateFailed

	stateIdle State = -1
)

func (s State) String() string {
	switch s {
	case StateFetchingPage:
		return "fetching_page"
	case StateProcessingImages:
		return "processing_images"
	case StatePaced:
		return "paced"
	case StateRetrying:
		return "retrying"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the loop stops in this state
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
