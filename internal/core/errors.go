package core

import "errors"

// ErrInvalidSubmission is returned when username or message is empty.
var ErrInvalidSubmission = errors.New("invalid form data")
