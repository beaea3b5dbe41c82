package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidChallenge   = errors.New("challenge is not on the card")
	ErrAmbiguousCompanion = errors.New("tag exactly one person: a workspace user or a name")
	ErrDuplicateCompanion = errors.New("companion already tagged this period")
	ErrPersistence        = errors.New("persistence failure")
	ErrRankingUnavailable = errors.New("ranking unavailable")
)

// поля формы, к которым привязываются ошибки валидации
const (
	FieldUser      = "user"
	FieldChallenge = "challenge"
	FieldCompanion = "companion"
	FieldLocation  = "location"
)

// ValidationError - исправимая ошибка ввода, без изменений в хранилище.
// errors.Is(err, ErrValidation) истинно для любой ValidationError
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field string, err error, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
