package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrNotListingOwner    = errors.New("listing not owned by current user")
	ErrPhotoUploadFailed  = errors.New("photo upload failed")
	ErrGeocodeFailed      = errors.New("address could not be resolved")
	ErrRouteFailed        = errors.New("no driving route to address")
)

// ValidationErrors maps section name -> field -> message. Returned by the
// pre-submit revalidation; surfaced inline by clients, never fatal.
type ValidationErrors map[string]map[string]string

func (v ValidationErrors) Error() string {
	var parts []string
	for section, fields := range v {
		for field, msg := range fields {
			parts = append(parts, fmt.Sprintf("%s.%s: %s", section, field, msg))
		}
	}
	return "draft validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Add(section, field, msg string) {
	if v[section] == nil {
		v[section] = map[string]string{}
	}
	v[section][field] = msg
}
