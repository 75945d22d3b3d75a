package screen

// Mode is the active display mode. The set is closed and cycles in a
// fixed order on each button press.
type Mode int

const (
	ModeStatus Mode = iota
	ModeCode
	ModeDiagnostic

	modeCount = 3
)

// Next returns the mode that follows in the cycle
// Status -> Code -> Diagnostic -> Status.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

func (m Mode) String() string {
	switch m {
	case ModeStatus:
		return "status"
	case ModeCode:
		return "code"
	case ModeDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}
