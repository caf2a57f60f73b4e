package readiness

// PrecheckStatus summarises a set of checks for storage on the interview.
type PrecheckStatus string

const (
	PrecheckPending    PrecheckStatus = "pending"
	PrecheckInProgress PrecheckStatus = "in_progress"
	PrecheckCompleted  PrecheckStatus = "completed"
	PrecheckFailed     PrecheckStatus = "failed"
)

// CanProceed is the readiness gate: true iff the camera, microphone and
// network checks are all present and passed, and every attestation flag is
// confirmed. It has no side effects.
func CanProceed(checks []Check, attestation Attestation) bool {
	return ChecksPassed(checks) && attestation.Satisfied()
}

// ChecksPassed reports whether every required kind is present and passed.
func ChecksPassed(checks []Check) bool {
	passed := make(map[CheckKind]bool, len(checks))
	for _, check := range checks {
		if check.Status != CheckPassed {
			return false
		}
		passed[check.Kind] = true
	}
	for _, kind := range Kinds() {
		if !passed[kind] {
			return false
		}
	}
	return true
}

// Summarize derives the stored precheck status from the checks.
func Summarize(checks []Check) PrecheckStatus {
	if len(checks) == 0 {
		return PrecheckPending
	}
	pending := 0
	for _, check := range checks {
		switch check.Status {
		case CheckFailed:
			return PrecheckFailed
		case CheckChecking:
			return PrecheckInProgress
		case CheckPending:
			pending++
		}
	}
	if pending == len(checks) {
		return PrecheckPending
	}
	if pending > 0 {
		return PrecheckInProgress
	}
	if !ChecksPassed(checks) {
		return PrecheckPending
	}
	return PrecheckCompleted
}

// Report is what a candidate's client submits before admission.
type Report struct {
	Checks      []Check     `json:"checks"`
	Attestation Attestation `json:"attestation"`
}

// CanProceed evaluates the gate for the report.
func (r Report) CanProceed() bool {
	return CanProceed(r.Checks, r.Attestation)
}

// Status summarises the report's checks.
func (r Report) Status() PrecheckStatus {
	return Summarize(r.Checks)
}
