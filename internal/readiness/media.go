package readiness

import (
	"context"
	"errors"
)

// Constraints selects the tracks requested from the capture device.
type Constraints struct {
	Audio bool
	Video bool
}

// MediaDevices is the capture boundary (getUserMedia in a browser, a device
// agent elsewhere).
type MediaDevices interface {
	OpenCapture(ctx context.Context, constraints Constraints) (Stream, error)
}

// Stream is an acquired capture. Stop must release the devices and be safe
// to call more than once.
type Stream interface {
	HasVideo() bool
	HasAudio() bool
	Analyser() (AudioAnalyser, error)
	Stop() error
}

// AudioAnalyser exposes frequency-domain samples of the audio track.
type AudioAnalyser interface {
	BinCount() int
	FrequencyData(dst []uint8)
	Close() error
}

var errNoCaptureStream = errors.New("readiness: capture returned no stream")

// namedError matches DOMException-style errors surfaced by capture APIs.
type namedError interface {
	Name() string
}

// ClassifyCaptureError maps a capture failure onto a failure reason using the
// error's class: permission refusals become permission_denied, anything else
// device_not_found.
func ClassifyCaptureError(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, ErrPermissionDenied) {
		return ReasonPermissionDenied
	}
	var named namedError
	if errors.As(err, &named) {
		switch named.Name() {
		case "NotAllowedError", "PermissionDeniedError", "SecurityError":
			return ReasonPermissionDenied
		}
	}
	return ReasonDeviceNotFound
}

func captureChecks(stream Stream, err error) (camera, microphone Check) {
	camera = NewCheck(KindCamera)
	microphone = NewCheck(KindMicrophone)

	if err != nil {
		reason := ClassifyCaptureError(err)
		message := "camera or microphone not found"
		if reason == ReasonPermissionDenied {
			message = "camera and microphone access was denied"
		}
		for _, check := range []*Check{&camera, &microphone} {
			check.Status = CheckFailed
			check.Reason = reason
			check.Message = message
		}
		return camera, microphone
	}

	camera.Status, camera.Message = CheckPassed, "camera available"
	if !stream.HasVideo() {
		camera.Status, camera.Reason, camera.Message = CheckFailed, ReasonDeviceNotFound, "no video track"
	}
	microphone.Status, microphone.Message = CheckPassed, "microphone available"
	if !stream.HasAudio() {
		microphone.Status, microphone.Reason, microphone.Message = CheckFailed, ReasonDeviceNotFound, "no audio track"
	}
	return camera, microphone
}
