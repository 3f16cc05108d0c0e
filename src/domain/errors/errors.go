package errors

import (
	"errors"
)

const (
	NotFound              = "NotFound"
	notFoundMessage       = "record not found"
	ValidationError       = "ValidationError"
	validationMessage     = "validation error"
	ResourceAlreadyExists = "ResourceAlreadyExists"
	alreadyExistsMessage  = "resource already exists"
	RepositoryError       = "RepositoryError"
	repositoryMessage     = "error in repository operation"
	NotAuthenticated      = "NotAuthenticated"
	notAuthenticatedMsg   = "not Authenticated"
	NotAuthorized         = "NotAuthorized"
	notAuthorizedMessage  = "not authorized"
	UnknownError          = "UnknownError"
	unknownMessage        = "something went wrong"

	// Campaign engine taxonomy.
	EmptyAudience         = "EmptyAudience"
	emptyAudienceMessage  = "audience filter selected no recipients"
	InvalidSchedule       = "InvalidSchedule"
	invalidScheduleMsg    = "scheduled date and time are missing or malformed"
	InvalidTransition     = "InvalidTransition"
	invalidTransitionMsg  = "status transition not allowed"
	StoreWriteError       = "StoreWriteError"
	storeWriteMessage     = "failed to persist state transition"
	ChannelTransient      = "ChannelTransient"
	channelTransientMsg   = "messaging gateway temporarily unavailable"
	ChannelNonRecoverable = "ChannelNonRecoverable"
	channelNonRecoverMsg  = "messaging gateway rejected the message"
	ServiceUnavailable    = "ServiceUnavailable"
	unavailableMessage    = "service not configured"
	UpstreamError         = "UpstreamError"
	upstreamMessage       = "upstream service returned an error"
)

type AppError struct {
	Err  error
	Type string
}

func NewAppError(err error, errType string) *AppError {
	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func NewAppErrorWithType(errType string) *AppError {
	var err error

	switch errType {
	case NotFound:
		err = errors.New(notFoundMessage)
	case ValidationError:
		err = errors.New(validationMessage)
	case ResourceAlreadyExists:
		err = errors.New(alreadyExistsMessage)
	case RepositoryError:
		err = errors.New(repositoryMessage)
	case NotAuthenticated:
		err = errors.New(notAuthenticatedMsg)
	case NotAuthorized:
		err = errors.New(notAuthorizedMessage)
	case EmptyAudience:
		err = errors.New(emptyAudienceMessage)
	case InvalidSchedule:
		err = errors.New(invalidScheduleMsg)
	case InvalidTransition:
		err = errors.New(invalidTransitionMsg)
	case StoreWriteError:
		err = errors.New(storeWriteMessage)
	case ChannelTransient:
		err = errors.New(channelTransientMsg)
	case ChannelNonRecoverable:
		err = errors.New(channelNonRecoverMsg)
	case ServiceUnavailable:
		err = errors.New(unavailableMessage)
	case UpstreamError:
		err = errors.New(upstreamMessage)
	default:
		err = errors.New(unknownMessage)
	}

	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func (appErr *AppError) Error() string {
	return appErr.Err.Error()
}

func (appErr *AppError) Unwrap() error {
	return appErr.Err
}

// IsType reports whether err wraps an *AppError of the given type.
func IsType(err error, errType string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
