// Package errs holds the error taxonomy shared by the domain, the use cases and
// the adapters.
//
// Every kind is a sentinel plus a struct carrying the details:
//
//	ErrValueIsRequired         ValueIsRequiredError
//	ErrValueIsInvalid          ValueIsInvalidError
//	ErrValueIsOutOfRange       ValueIsOutOfRangeError
//	ErrVersionIsInvalid        VersionIsInvalidError
//	ErrObjectNotFound          ObjectNotFoundError
//	ErrPermissionDenied        PermissionDeniedError
//	ErrInvalidTransition       InvalidTransitionError
//	ErrInvalidConfirmationCode InvalidConfirmationCodeError
//	ErrTrackingDisabled        TrackingDisabledError
//	ErrCapacityExceeded        CapacityExceededError
//	ErrConcurrentModification  ConcurrentModificationError
//
// The structs unwrap to their sentinel, so callers classify with errors.Is and
// read the details with errors.As. IsValidation groups the first four kinds.
// IsRetryable reports a lost conditional write; no other kind is worth retrying.
package errs
