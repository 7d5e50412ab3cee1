package app

import "fmt"

// DomainError is a service-level failure that maps directly onto an HTTP
// response: Status and Code drive the wire format, Details carries
// machine-readable context such as the conflicting entity ID.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{Status: status, Code: code, Message: message, Details: details}
}
