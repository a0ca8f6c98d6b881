package handler

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// fieldError is one entry of a 400 response's details array.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const minPasswordLen = 6

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	a, err := mail.ParseAddress(email)
	return err == nil && a.Address == email
}

// validateRegister checks the registration input shape and returns one entry
// per failing field.  Values are assumed already trimmed.
func validateRegister(name, email, password string) []fieldError {
	var errs []fieldError
	if utf8.RuneCountInString(name) < 1 {
		errs = append(errs, fieldError{Field: "name", Message: "Name is required"})
	}
	if !validEmail(email) {
		errs = append(errs, fieldError{Field: "email", Message: "Invalid email address"})
	}
	if len(password) < minPasswordLen {
		errs = append(errs, fieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	return errs
}

// validateLogin checks the login input shape.
func validateLogin(email, password string) []fieldError {
	var errs []fieldError
	if !validEmail(email) {
		errs = append(errs, fieldError{Field: "email", Message: "Invalid email address"})
	}
	if len(password) < minPasswordLen {
		errs = append(errs, fieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	return errs
}
