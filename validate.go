package veriauth

import (
	"net/mail"
	"strings"
)

// Input validation enumerates every failed field rather than stopping at
// the first, so clients can surface all problems in one round trip.

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateRegister(in RegisterInput) *ValidationError {
	var fields []FieldError
	if len(strings.TrimSpace(in.Name)) < 3 {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be at least 3 characters long"})
	}
	if !validEmail(in.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if len(in.Password) < 8 {
		fields = append(fields, FieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateLogin(in LoginInput) *ValidationError {
	var fields []FieldError
	if !validEmail(in.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if len(in.Password) < 8 {
		fields = append(fields, FieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
