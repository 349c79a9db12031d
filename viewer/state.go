package viewer

// State is the session lifecycle phase.
type State uint8

const (
	Idle State = iota
	AwaitingAsset
	Animating
	// Static is entered when the model failed to load: the scene keeps its
	// lights and camera but no frame is ever submitted.
	Static
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAsset:
		return "awaiting-asset"
	case Animating:
		return "animating"
	case Static:
		return "static"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}
