package repository

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateDevice = errors.New("device with this unique id already exists")
)
