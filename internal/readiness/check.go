// Package readiness implements the pre-interview readiness gate: device and
// network probes, the candidate's environment attestation, and the pure
// predicate combining both.
package readiness

import (
	"errors"
	"time"
)

var (
	// ErrPermissionDenied reports that the candidate refused capture access.
	ErrPermissionDenied = errors.New("readiness: permission denied")
	// ErrDeviceUnavailable reports that no usable camera or microphone exists.
	ErrDeviceUnavailable = errors.New("readiness: device unavailable")
	// ErrNetworkCheckFailed reports a failed or too slow latency probe.
	ErrNetworkCheckFailed = errors.New("readiness: network check failed")
	// ErrSuperseded is returned to a recheck whose result was discarded
	// because a newer recheck started.
	ErrSuperseded = errors.New("readiness: recheck superseded")
)

// CheckKind identifies one of the three device and network checks.
type CheckKind string

const (
	KindCamera     CheckKind = "camera"
	KindMicrophone CheckKind = "microphone"
	KindNetwork    CheckKind = "network"
)

// Kinds lists the checks every readiness run performs.
func Kinds() []CheckKind {
	return []CheckKind{KindCamera, KindMicrophone, KindNetwork}
}

// CheckStatus tracks a check through pending -> checking -> passed|failed.
type CheckStatus string

const (
	CheckPending  CheckStatus = "pending"
	CheckChecking CheckStatus = "checking"
	CheckPassed   CheckStatus = "passed"
	CheckFailed   CheckStatus = "failed"
)

// FailureReason explains why a check failed.
type FailureReason string

const (
	ReasonNone             FailureReason = ""
	ReasonPermissionDenied FailureReason = "permission_denied"
	ReasonDeviceNotFound   FailureReason = "device_not_found"
	ReasonNetworkSlow      FailureReason = "network_slow"
	ReasonNetworkError     FailureReason = "network_error"
)

// Check is the client-local result of one probe. It is never the source of
// truth for admission on its own.
type Check struct {
	ID      string        `json:"id"`
	Kind    CheckKind     `json:"kind"`
	Status  CheckStatus   `json:"status"`
	Reason  FailureReason `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency_ns,omitempty"`
}

// Err maps a failed check onto the readiness error taxonomy.
func (c Check) Err() error {
	if c.Status != CheckFailed {
		return nil
	}
	switch c.Reason {
	case ReasonPermissionDenied:
		return ErrPermissionDenied
	case ReasonNetworkSlow, ReasonNetworkError:
		return ErrNetworkCheckFailed
	default:
		if c.Kind == KindNetwork {
			return ErrNetworkCheckFailed
		}
		return ErrDeviceUnavailable
	}
}

// NewCheck returns a pending check of the given kind.
func NewCheck(kind CheckKind) Check {
	return Check{ID: string(kind), Kind: kind, Status: CheckPending}
}

// NetworkQuality buckets a measured round-trip latency.
type NetworkQuality string

const (
	QualityGood NetworkQuality = "good"
	QualityFair NetworkQuality = "fair"
	QualityPoor NetworkQuality = "poor"
)

const (
	goodLatency = 200 * time.Millisecond
	fairLatency = 500 * time.Millisecond
)

// ClassifyLatency buckets a round trip. Good and fair pass; poor fails.
func ClassifyLatency(rtt time.Duration) NetworkQuality {
	switch {
	case rtt < goodLatency:
		return QualityGood
	case rtt < fairLatency:
		return QualityFair
	default:
		return QualityPoor
	}
}

func networkCheck(rtt time.Duration, err error) Check {
	check := NewCheck(KindNetwork)
	if err != nil {
		check.Status = CheckFailed
		check.Reason = ReasonNetworkError
		check.Message = "network check failed: " + err.Error()
		return check
	}
	check.Latency = rtt
	switch quality := ClassifyLatency(rtt); quality {
	case QualityGood, QualityFair:
		check.Status = CheckPassed
		check.Message = "connection " + string(quality) + " (" + rtt.Round(time.Millisecond).String() + ")"
	default:
		check.Status = CheckFailed
		check.Reason = ReasonNetworkSlow
		check.Message = "connection too slow (" + rtt.Round(time.Millisecond).String() + ")"
	}
	return check
}
