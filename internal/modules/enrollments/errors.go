package enrollments

import "errors"

var ErrEnrollmentNotFound = errors.New("enrollment not found")
