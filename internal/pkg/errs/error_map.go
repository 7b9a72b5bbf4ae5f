/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError template, which carries the
default user message and the HTTP status the local portal answers with.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Complaint Errors
	ErrComplaintDescriptionRequired: {Code: ErrComplaintDescriptionRequired, Message: "Please describe your complaint"},
	ErrComplaintInvalid:             {Code: ErrComplaintInvalid, Message: "Invalid %s."},
	ErrComplaintNotFound:            {Code: ErrComplaintNotFound, Message: "Complaint not found.", Status: http.StatusNotFound},
	ErrComplaintFetchFailed:         {Code: ErrComplaintFetchFailed, Message: "Could not load complaints.", Status: http.StatusBadGateway},
	ErrComplaintSubmitFailed:        {Code: ErrComplaintSubmitFailed, Message: "Failed to submit complaint", Status: http.StatusBadGateway},
	ErrStatusUpdateFailed:           {Code: ErrStatusUpdateFailed, Message: "Failed to update status", Status: http.StatusBadGateway},

	// 3xxx: Session and Access Errors
	ErrLoginFailed:          {Code: ErrLoginFailed, Message: "Login failed", Status: http.StatusUnauthorized},
	ErrRegistrationFailed:   {Code: ErrRegistrationFailed, Message: "Registration failed"},
	ErrSessionPersistFailed: {Code: ErrSessionPersistFailed, Message: "Could not save your session.", Status: http.StatusInternalServerError},
	ErrSessionLoading:       {Code: ErrSessionLoading, Message: "Loading...", Status: http.StatusServiceUnavailable},
	ErrInvalidRole:          {Code: ErrInvalidRole, Message: "Invalid role."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
