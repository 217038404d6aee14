package camdice

// ServiceError is a custom error type for service construction errors
type ServiceError string

// Error implements the error interface
func (e ServiceError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig        ServiceError = "config cannot be nil"
	ErrNilRegistry      ServiceError = "session registry cannot be nil"
	ErrNilHistoryRepo   ServiceError = "history repository cannot be nil"
	ErrNilDiceRoller    ServiceError = "dice roller cannot be nil"
	ErrNilClock         ServiceError = "clock cannot be nil"
	ErrNilUUIDGenerator ServiceError = "UUID generator cannot be nil"
)
