// Package validation checks request payloads before any state changes.
// Validators are pure: shape checks first, then referential checks against
// id sets the caller fetched up front. All field errors are accumulated,
// not just the first, and any error rejects the whole payload.
package validation

import (
	"fmt"
	"regexp"
)

// FieldErrors maps a field name to a human-readable problem
type FieldErrors map[string]string

// Add records an error for a field, keeping the first message per field
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// Any reports whether any field failed
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// UserInput is the create-user payload
type UserInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Roles    []int64 `json:"roles"`
}

// ValidateNewUser checks a create-user payload. emailTaken and knownRoles
// come from storage lookups done before validation.
func ValidateNewUser(input UserInput, emailTaken bool, knownRoles map[int64]bool) FieldErrors {
	errs := FieldErrors{}
	if input.Name == "" {
		errs.Add("name", "Field 'name' is required.")
	}
	validateEmail(errs, input.Email, emailTaken)
	validatePassword(errs, "password", input.Password)
	for _, roleID := range input.Roles {
		if !knownRoles[roleID] {
			errs.Add("roles", fmt.Sprintf("Role ID %d does not exist", roleID))
		}
	}
	return errs
}

// ProfileInput is the update-profile payload
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ValidateProfile checks a profile update
func ValidateProfile(input ProfileInput, emailTaken bool) FieldErrors {
	errs := FieldErrors{}
	if input.Name == "" {
		errs.Add("name", "Field 'name' is required.")
	}
	validateEmail(errs, input.Email, emailTaken)
	return errs
}

// PasswordChangeInput is the update-password payload
type PasswordChangeInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ValidatePasswordChange checks the new password's shape
func ValidatePasswordChange(input PasswordChangeInput) FieldErrors {
	errs := FieldErrors{}
	if input.OldPassword == "" {
		errs.Add("old_password", "Field 'old_password' is required.")
	}
	validatePassword(errs, "new_password", input.NewPassword)
	return errs
}

// RolesUpdateInput is the update-roles payload
type RolesUpdateInput struct {
	IsAdmin *bool   `json:"is_admin"`
	Roles   []int64 `json:"roles"`
}

// ValidateRolesUpdate checks a roles update. lastAdmin is true when the
// target user is the only admin left; demoting them is rejected so the
// system always keeps at least one admin.
func ValidateRolesUpdate(input RolesUpdateInput, knownRoles map[int64]bool, lastAdmin bool) FieldErrors {
	errs := FieldErrors{}
	for _, roleID := range input.Roles {
		if !knownRoles[roleID] {
			errs.Add("roles", fmt.Sprintf("Role ID %d does not exist", roleID))
		}
	}
	if input.IsAdmin != nil && !*input.IsAdmin && lastAdmin {
		errs.Add("is_admin", "The system needs at least one admin user")
	}
	return errs
}

// WordInput is the create/update word payload
type WordInput struct {
	Name        string  `json:"name"`
	Translation string  `json:"translation"`
	Annotation  string  `json:"annotation"`
	Tags        []int64 `json:"tags"`
}

// ValidateWord checks a word payload against the pre-fetched tag id set
func ValidateWord(input WordInput, knownTags map[int64]bool) FieldErrors {
	errs := FieldErrors{}
	if input.Name == "" {
		errs.Add("name", "Field 'name' cannot be left blank")
	}
	if input.Translation == "" {
		errs.Add("translation", "Field 'translation' cannot be left blank")
	}
	for _, tagID := range input.Tags {
		if !knownTags[tagID] {
			errs.Add("tags", fmt.Sprintf("Tag ID %d does not exist", tagID))
		}
	}
	return errs
}

// TagInput is the create-tag payload
type TagInput struct {
	Name string `json:"name"`
}

// ValidateTag checks a tag payload
func ValidateTag(input TagInput, nameTaken bool) FieldErrors {
	errs := FieldErrors{}
	if input.Name == "" {
		errs.Add("name", "Field 'name' cannot be left blank")
	} else if nameTaken {
		errs.Add("name", "this tag already exists")
	}
	return errs
}

// SetInput is the create/update set payload
type SetInput struct {
	Name  string  `json:"name"`
	Words []int64 `json:"words"`
}

// ValidateSet checks a set payload against the pre-fetched word id set
func ValidateSet(input SetInput, knownWords map[int64]bool, nameTaken bool) FieldErrors {
	errs := FieldErrors{}
	if input.Name == "" {
		errs.Add("name", "Field 'name' cannot be left blank")
	} else if nameTaken {
		errs.Add("name", "this name already exists")
	}
	if len(input.Words) == 0 {
		errs.Add("words", "Field 'words' cannot be left blank")
	}
	for _, wordID := range input.Words {
		if !knownWords[wordID] {
			errs.Add("words", fmt.Sprintf("Word ID %d does not exist", wordID))
		}
	}
	return errs
}

func validateEmail(errs FieldErrors, email string, taken bool) {
	switch {
	case email == "":
		errs.Add("email", "Field 'email' is required.")
	case !emailPattern.MatchString(email):
		errs.Add("email", "Not a valid email address.")
	case taken:
		errs.Add("email", "this email already exists")
	}
}

func validatePassword(errs FieldErrors, field, password string) {
	switch {
	case password == "":
		errs.Add(field, fmt.Sprintf("Field '%s' is required.", field))
	case len(password) < 3:
		errs.Add(field, "Shorter than minimum length 3.")
	case !passwordPattern.MatchString(password):
		errs.Add(field, fmt.Sprintf("%s must only contain letters, numbers and underscores.", field))
	}
}
