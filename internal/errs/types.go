package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type UnauthenticatedError struct {
	ErrorMessage
}

// Reasons carried by IntegrationNotConfiguredError.
const (
	ReasonNotBankIntegrated     = "not_bank_integrated"
	ReasonCredentialsIncomplete = "credentials_incomplete"
	ReasonCertificatesMissing   = "certificates_missing"
)

// IntegrationNotConfiguredError means the user has to reconnect the bank account.
type IntegrationNotConfiguredError struct {
	ErrorMessage
	Reason  string
	Missing []string
}

type UnsupportedBankError struct {
	ErrorMessage
	BankID string
}

// UpstreamAuthError is a failed token acquisition; Message is the bank's own text.
type UpstreamAuthError struct {
	ErrorMessage
	Status int
	Err    error
}

func (e *UpstreamAuthError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUnauthenticatedError(message string) *UnauthenticatedError {
	return &UnauthenticatedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewIntegrationNotConfiguredError(reason, message string, missing ...string) *IntegrationNotConfiguredError {
	return &IntegrationNotConfiguredError{
		ErrorMessage: ErrorMessage{Message: message},
		Reason:       reason,
		Missing:      missing,
	}
}

func NewUnsupportedBankError(bankID string) *UnsupportedBankError {
	return &UnsupportedBankError{
		ErrorMessage: ErrorMessage{Message: "bank not supported: " + bankID},
		BankID:       bankID,
	}
}

func NewUpstreamAuthError(status int, message string, err error) *UpstreamAuthError {
	return &UpstreamAuthError{
		ErrorMessage: ErrorMessage{Message: message},
		Status:       status,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}
