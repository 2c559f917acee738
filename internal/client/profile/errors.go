package profile

import "errors"

// User-facing messages.
const (
	MsgImageTooLarge = "Image must be less than 2MB"
	MsgUploadFailed  = "Upload failed"
	MsgUploadError   = "Upload error"
	MsgNoChanges     = "No changes Made"
	MsgUploadPending = "Please wait for image upload"
	MsgUpdated       = "User's profile updated successfully"
)

// ValidationError reports a selected file that cannot be accepted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	// ErrImageTooLarge is returned by SelectImage for files above MaxImageSize.
	ErrImageTooLarge = &ValidationError{Message: MsgImageTooLarge}

	// ErrNoChanges is returned by Submit when the draft is empty.
	ErrNoChanges = errors.New(MsgNoChanges)
	// ErrUploadPending is returned by Submit while an image upload is running.
	ErrUploadPending = errors.New(MsgUploadPending)
)

// ServerRejectedError carries the message of a non-2xx account update response.
type ServerRejectedError struct {
	Message string
}

func (e *ServerRejectedError) Error() string {
	return e.Message
}

// TransportError wraps a failure to complete the account update call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
