package types

// ErrorCode classifies a terminal failure so it can be mapped to a distinct
// user-facing message.
type ErrorCode string

const (
	ErrCodePermissionDenied      ErrorCode = "permission_denied"
	ErrCodeDeviceNotFound        ErrorCode = "device_not_found"
	ErrCodeDeviceBusy            ErrorCode = "device_busy"
	ErrCodeConstraintUnsatisfied ErrorCode = "constraint_unsatisfiable"
	ErrCodeAborted               ErrorCode = "aborted"
	ErrCodePlaybackFailed        ErrorCode = "playback_failed"
	ErrCodeCaptureUnavailable    ErrorCode = "capture_unavailable"
	ErrCodeAICallFailed          ErrorCode = "ai_call_failed"
	ErrCodeSpeechUnavailable     ErrorCode = "speech_unavailable"
)

// userMessages maps each code to the single human-readable message shown
// for the action that failed.
var userMessages = map[ErrorCode]string{
	ErrCodePermissionDenied:      "Camera access was denied. Enable camera permission and try again.",
	ErrCodeDeviceNotFound:        "No camera was found on this device.",
	ErrCodeDeviceBusy:            "The camera is already in use by another application.",
	ErrCodeConstraintUnsatisfied: "The requested camera mode is not supported on this device.",
	ErrCodeAborted:               "The camera stopped unexpectedly. Try starting it again.",
	ErrCodePlaybackFailed:        "The camera stream could not be displayed.",
	ErrCodeCaptureUnavailable:    "No frame is available yet.",
	ErrCodeAICallFailed:          "The assistant could not analyze that. Please try again.",
	ErrCodeSpeechUnavailable:     "Speech output is unavailable right now.",
}

// UserMessage returns the human-readable message for the code.
func (c ErrorCode) UserMessage() string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return "Something went wrong."
}

// ErrorInfo carries a classified failure plus its user-facing message.
// Detail preserves the underlying error text for logs; it is never shown
// to the user.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// NewErrorInfo builds an ErrorInfo for code, capturing err's text as detail.
func NewErrorInfo(code ErrorCode, err error) *ErrorInfo {
	info := &ErrorInfo{Code: code, Message: code.UserMessage()}
	if err != nil {
		info.Detail = err.Error()
	}
	return info
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	if e.Detail != "" {
		return string(e.Code) + ": " + e.Detail
	}
	return string(e.Code) + ": " + e.Message
}
