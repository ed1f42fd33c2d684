package core

import "errors"

var (
	ErrConfirmationRequired  = errors.New("you must add '--i-am-sure' to the command in order to complete the uninstall")
	ErrDatabaseNotResponsive = errors.New("the database server has taken too long to start")
	ErrValidationFailed      = errors.New("validation failed")
	ErrUnsafePath            = errors.New("refusing to remove path")
)
