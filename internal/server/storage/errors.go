package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrDepartmentNotFound indicates that department was not found
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrDepartmentExists indicates that department with this name already exists
	ErrDepartmentExists = errors.New("department already exists")

	// ErrCommandNotFound indicates that command was not found in the department
	ErrCommandNotFound = errors.New("command not found")

	// ErrDeviceNotFound indicates that device was not found in the department
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSessionNotFound indicates that session was not found or revoked
	ErrSessionNotFound = errors.New("session not found")
)
