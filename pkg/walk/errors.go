package walk

import "errors"

// ErrInvalidRoot is returned when the walk root is neither a directory nor
// a file the configured registry can expand, or is a symbolic link.
var ErrInvalidRoot = errors.New("walk: root must be a directory or a supported archive, and must not be a symbolic link")
