package dbbadger

import "errors"

var (
	// ErrBackupAlreadyExists ...
	ErrBackupAlreadyExists = errors.New("backup with same id already exists")
)
