package domain

// CommutePhase is the progress within an active commute session. PhaseNone
// means no commute is in progress.
type CommutePhase string

const (
	PhaseNone      CommutePhase = ""
	PhaseOutbound  CommutePhase = "OUTBOUND"
	PhaseInOffice  CommutePhase = "IN_OFFICE"
	PhaseReturn    CommutePhase = "RETURN"
	PhaseCompleted CommutePhase = "COMPLETED"
)

func (p CommutePhase) String() string {
	if p == PhaseNone {
		return "NONE"
	}
	return string(p)
}
