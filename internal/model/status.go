package model

// Status is the completion state of an item. Complete and Incomplete are
// derived from stock; Excluded is a user override that stops derivation until
// the user clears it.
type Status uint8

const (
	StatusIncomplete Status = iota
	StatusComplete
	StatusExcluded
)

// Text forms used in stored state and backup documents.
const (
	statusTextIncomplete = "not"
	statusTextComplete   = "comp"
	statusTextExcluded   = "none"
)

// Overridden reports whether the status is the sticky user override.
func (s Status) Overridden() bool {
	return s == StatusExcluded
}

// Label returns the short display label.
func (s Status) Label() string {
	switch s {
	case StatusComplete:
		return "COMP"
	case StatusExcluded:
		return "NONE"
	default:
		return "INCOMP"
	}
}

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return statusTextComplete
	case StatusExcluded:
		return statusTextExcluded
	default:
		return statusTextIncomplete
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values decode as
// incomplete so that damaged state still loads.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// ParseStatus converts a text form to a Status, defaulting to incomplete.
func ParseStatus(text string) Status {
	switch text {
	case statusTextComplete:
		return StatusComplete
	case statusTextExcluded:
		return StatusExcluded
	default:
		return StatusIncomplete
	}
}
