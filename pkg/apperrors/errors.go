package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInvalidCrop       = errors.New("invalid crop")
	ErrInvalidImage      = errors.New("invalid image")
	ErrImageTooLarge     = errors.New("image exceeds size limit")
	ErrDiagnosisRequired = errors.New("diagnosis required before land submission")
	ErrInvalidTransition = errors.New("invalid wizard transition")
)
