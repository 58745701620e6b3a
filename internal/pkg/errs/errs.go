package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound          = errors.New("object not found")
	ErrValueIsInvalid          = errors.New("value is invalid")
	ErrValueIsOutOfRange       = errors.New("value is out of range")
	ErrValueIsRequired         = errors.New("value is required")
	ErrVersionIsInvalid        = errors.New("version is invalid")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrTrackingDisabled        = errors.New("tracking is disabled")
	ErrCapacityExceeded        = errors.New("capacity exceeded")
	ErrConcurrentModification  = errors.New("concurrent modification")
)

// sanitize flattens values that end up inside single-line error messages.
func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a parameter that failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of its [Min, Max] bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory parameter.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError reports a version that cannot be accepted.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewVersionIsInvalidError(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Cause: cause}
}

func NewVersionIsInvalidErrorWithCause(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func (e *VersionIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName), e.Cause)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// PermissionDeniedError reports an actor that is not allowed to perform Action.
type PermissionDeniedError struct {
	ActorID any
	Action  string
	Cause   error
}

func NewPermissionDeniedError(actorID any, action string) *PermissionDeniedError {
	return &PermissionDeniedError{ActorID: actorID, Action: action}
}

func NewPermissionDeniedErrorWithCause(actorID any, action string, cause error) *PermissionDeniedError {
	return &PermissionDeniedError{ActorID: actorID, Action: action, Cause: cause}
}

func (e *PermissionDeniedError) Error() string {
	return withCause(fmt.Sprintf("%s: actor %s cannot %s", ErrPermissionDenied, sanitize(e.ActorID), e.Action), e.Cause)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// InvalidTransitionError reports a status change missing from the lifecycle table.
type InvalidTransitionError struct {
	From  string
	To    string
	Cause error
}

func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func NewInvalidTransitionErrorWithCause(from, to string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidConfirmationCodeError reports an unknown, expired or already used code.
type InvalidConfirmationCodeError struct {
	DeliveryID any
	Cause      error
}

func NewInvalidConfirmationCodeError(deliveryID any) *InvalidConfirmationCodeError {
	return &InvalidConfirmationCodeError{DeliveryID: deliveryID}
}

func NewInvalidConfirmationCodeErrorWithCause(deliveryID any, cause error) *InvalidConfirmationCodeError {
	return &InvalidConfirmationCodeError{DeliveryID: deliveryID, Cause: cause}
}

func (e *InvalidConfirmationCodeError) Error() string {
	return withCause(fmt.Sprintf("%s: delivery %s", ErrInvalidConfirmationCode, sanitize(e.DeliveryID)), e.Cause)
}

func (e *InvalidConfirmationCodeError) Unwrap() error {
	return ErrInvalidConfirmationCode
}

// TrackingDisabledError reports a location ping for a delivery that no longer accepts them.
type TrackingDisabledError struct {
	DeliveryID any
}

func NewTrackingDisabledError(deliveryID any) *TrackingDisabledError {
	return &TrackingDisabledError{DeliveryID: deliveryID}
}

func (e *TrackingDisabledError) Error() string {
	return fmt.Sprintf("%s: delivery %s", ErrTrackingDisabled, sanitize(e.DeliveryID))
}

func (e *TrackingDisabledError) Unwrap() error {
	return ErrTrackingDisabled
}

// CapacityExceededError reports a courier already holding Limit concurrent deliveries.
type CapacityExceededError struct {
	DelivererID any
	Current     int
	Limit       int
}

func NewCapacityExceededError(delivererID any, current, limit int) *CapacityExceededError {
	return &CapacityExceededError{DelivererID: delivererID, Current: current, Limit: limit}
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: deliverer %s holds %d active deliveries, limit is %d",
		ErrCapacityExceeded, sanitize(e.DelivererID), e.Current, e.Limit)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}

// ConcurrentModificationError reports a conditional write that lost a race.
// Callers may refetch and retry.
type ConcurrentModificationError struct {
	Entity string
	ID     any
	Cause  error
}

func NewConcurrentModificationError(entity string, id any) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id}
}

func NewConcurrentModificationErrorWithCause(entity string, id any, cause error) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id, Cause: cause}
}

func (e *ConcurrentModificationError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %s", ErrConcurrentModification, e.Entity, sanitize(e.ID)), e.Cause)
}

func (e *ConcurrentModificationError) Unwrap() error {
	return ErrConcurrentModification
}

// IsRetryable reports whether err is a persistence conflict the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsOutOfRange) ||
		errors.Is(err, ErrVersionIsInvalid)
}
