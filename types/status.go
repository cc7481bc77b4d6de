package types

import "fmt"

// Status is the position of a ledger entity in the consensus pipeline.
//
// The zero value, StatusUnknown, is not a status: lookups return it
// to signal that the entity is not known to the ledger at all.
type Status uint8

const (
	StatusUnknown Status = iota
	// StatusBacklog: received, not yet scheduled for validation.
	StatusBacklog
	// StatusUndecided: in validation, outcome not yet finalized.
	StatusUndecided
	// StatusValid: finalized and accepted.
	StatusValid
	// StatusInvalid: finalized and rejected.
	StatusInvalid
)

// Known returns true for the four canonical statuses.
func (s Status) Known() bool {
	return s >= StatusBacklog && s <= StatusInvalid
}

// Final returns true once consensus has decided the entity.
func (s Status) Final() bool {
	return s == StatusValid || s == StatusInvalid
}

func (s Status) String() string {
	switch s {
	case StatusBacklog:
		return "backlog"
	case StatusUndecided:
		return "undecided"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ParseStatus parses the canonical text form of a status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "backlog":
		return StatusBacklog, nil
	case "undecided":
		return StatusUndecided, nil
	case "valid":
		return StatusValid, nil
	case "invalid":
		return StatusInvalid, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Known() {
		return nil, fmt.Errorf("cannot marshal status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
