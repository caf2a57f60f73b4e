package readiness

// Flag names one of the environment self-certifications.
type Flag string

const (
	FlagQuietEnvironment Flag = "quiet_environment"
	FlagStableInternet   Flag = "stable_internet"
	FlagProperLighting   Flag = "proper_lighting"
	FlagNoAssistance     Flag = "no_assistance"
	FlagRecordingConsent Flag = "recording_consent"
)

// AttestationTotal is the number of flags a candidate must confirm.
const AttestationTotal = 5

// Flags lists every attestation flag in display order.
func Flags() []Flag {
	return []Flag{FlagQuietEnvironment, FlagStableInternet, FlagProperLighting, FlagNoAssistance, FlagRecordingConsent}
}

// Attestation holds the candidate's explicit confirmations. The zero value
// has every flag false; flags change only through Set or Toggle.
type Attestation struct {
	QuietEnvironment bool `json:"quiet_environment"`
	StableInternet   bool `json:"stable_internet"`
	ProperLighting   bool `json:"proper_lighting"`
	NoAssistance     bool `json:"no_assistance"`
	RecordingConsent bool `json:"recording_consent"`
}

func (a *Attestation) field(flag Flag) *bool {
	switch flag {
	case FlagQuietEnvironment:
		return &a.QuietEnvironment
	case FlagStableInternet:
		return &a.StableInternet
	case FlagProperLighting:
		return &a.ProperLighting
	case FlagNoAssistance:
		return &a.NoAssistance
	case FlagRecordingConsent:
		return &a.RecordingConsent
	}
	return nil
}

// Set returns a copy with flag set to value. Unknown flags are ignored.
func (a Attestation) Set(flag Flag, value bool) Attestation {
	if f := a.field(flag); f != nil {
		*f = value
	}
	return a
}

// Toggle returns a copy with flag inverted.
func (a Attestation) Toggle(flag Flag) Attestation {
	if f := a.field(flag); f != nil {
		*f = !*f
	}
	return a
}

// Value reports the state of a single flag.
func (a Attestation) Value(flag Flag) bool {
	if f := a.field(flag); f != nil {
		return *f
	}
	return false
}

// CompletedCount is the number of confirmed flags, for progress display only.
func (a Attestation) CompletedCount() int {
	count := 0
	for _, flag := range Flags() {
		if a.Value(flag) {
			count++
		}
	}
	return count
}

// Satisfied reports whether all five flags are confirmed.
func (a Attestation) Satisfied() bool {
	return a.CompletedCount() == AttestationTotal
}
