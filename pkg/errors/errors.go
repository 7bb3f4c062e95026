package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomExists          = errors.New("room with this name already exists")
	ErrAlreadyMember       = errors.New("already a member of this room")
	ErrNotAMember          = errors.New("not a member of this room")
	ErrSelfAdminChange     = errors.New("cannot grant or revoke your own admin rights")
	ErrInviteNotApplicable = errors.New("invites are for private rooms only")
	ErrInviteExists        = errors.New("a live invite already exists for this address")
	ErrNoInvite            = errors.New("invite is either invalid or expired")
	ErrMessageNotFound     = errors.New("message not found")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrNotAMember),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrSelfAdminChange):
		return http.StatusForbidden
	case errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrRoomExists),
		errors.Is(err, ErrInviteExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrInviteNotApplicable),
		errors.Is(err, ErrNoInvite),
		errors.Is(err, ErrAlreadyMember):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
