/*
Package errs provides custom error types and application-level error code constants.

The codes identify every failure the portal client can surface to a user, whether it
originated in local validation, in the durable session storage, or in the remote service.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Complaint Errors
const (
	// ErrComplaintDescriptionRequired indicates a complaint was submitted without a description.
	ErrComplaintDescriptionRequired = 2101

	// ErrComplaintInvalid indicates an unknown category, priority or status value.
	ErrComplaintInvalid = 2102

	// ErrComplaintNotFound indicates the complaint id is unknown to the remote service.
	ErrComplaintNotFound = 2103

	// ErrComplaintFetchFailed indicates the complaint list could not be loaded.
	ErrComplaintFetchFailed = 2201

	// ErrComplaintSubmitFailed indicates the remote service did not accept a new complaint.
	ErrComplaintSubmitFailed = 2202

	// ErrStatusUpdateFailed indicates a status transition was not applied.
	ErrStatusUpdateFailed = 2203
)

// 3xxx: Session and Access Errors
const (
	// ErrLoginFailed is the generic login failure.
	ErrLoginFailed = 3001

	// ErrRegistrationFailed is the generic registration failure.
	ErrRegistrationFailed = 3002

	// ErrSessionPersistFailed indicates the session fields could not be written to durable storage.
	ErrSessionPersistFailed = 3003

	// ErrSessionLoading indicates the session store has not finished its startup read.
	ErrSessionLoading = 3005

	// ErrInvalidRole indicates a role string outside the known set.
	ErrInvalidRole = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified failure.
	ErrUnknown = 5000
)
