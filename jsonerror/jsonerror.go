// Copyright 2025 The statecache Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jsonerror carries the "standard error response" taxonomy of
// the client/server API. The cache itself never produces these; the
// sync transport propagates them when the remote server rejects a
// request, and they are kept as opaque error values with an optional
// human-readable message for display.
package jsonerror

import "fmt"

// MatrixError represents the standard error response in Matrix.
// https://spec.matrix.org/latest/client-server-api/#standard-error-response
type MatrixError struct {
	ErrCode string `json:"errcode"`
	Err     string `json:"error"`
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Err)
}

// Unknown is an unexpected error.
func Unknown(msg string) *MatrixError {
	return &MatrixError{"M_UNKNOWN", msg}
}

// Forbidden is an error when the client tries to access a resource
// they are not allowed to access.
func Forbidden(msg string) *MatrixError {
	return &MatrixError{"M_FORBIDDEN", msg}
}

// UnknownToken is an error when the client supplies a valid but
// out-of-date access token.
func UnknownToken(msg string) *MatrixError {
	return &MatrixError{"M_UNKNOWN_TOKEN", msg}
}

// MissingToken is an error when the client hits an authenticated
// endpoint without credentials.
func MissingToken(msg string) *MatrixError {
	return &MatrixError{"M_MISSING_TOKEN", msg}
}

// BadJSON is an error when the client supplies malformed JSON.
func BadJSON(msg string) *MatrixError {
	return &MatrixError{"M_BAD_JSON", msg}
}

// NotJSON is an error when the client supplies something that is not
// JSON to a JSON endpoint.
func NotJSON(msg string) *MatrixError {
	return &MatrixError{"M_NOT_JSON", msg}
}

// NotFound is an error when the client tries to access an unknown
// resource.
func NotFound(msg string) *MatrixError {
	return &MatrixError{"M_NOT_FOUND", msg}
}

// UserInUse is an error when the requested user id is already taken.
func UserInUse(msg string) *MatrixError {
	return &MatrixError{"M_USER_IN_USE", msg}
}

// RoomInUse is an error when the requested room alias is already taken.
func RoomInUse(msg string) *MatrixError {
	return &MatrixError{"M_ROOM_IN_USE", msg}
}

// InvalidUsername is an error when the requested user id is invalid.
func InvalidUsername(msg string) *MatrixError {
	return &MatrixError{"M_INVALID_USERNAME", msg}
}

// BadPagination is an error when the client supplies an invalid
// pagination token.
func BadPagination(msg string) *MatrixError {
	return &MatrixError{"M_BAD_PAGINATION", msg}
}

// ThreepidInUse is an error when the third-party identifier is already
// associated with an account.
func ThreepidInUse(msg string) *MatrixError {
	return &MatrixError{"M_THREEPID_IN_USE", msg}
}

// ThreepidNotFound is an error when no record exists for the given
// third-party identifier.
func ThreepidNotFound(msg string) *MatrixError {
	return &MatrixError{"M_THREEPID_NOT_FOUND", msg}
}

// ServerNotTrusted is an error when the homeserver does not trust the
// identity server used for a third-party verification.
func ServerNotTrusted(msg string) *MatrixError {
	return &MatrixError{"M_SERVER_NOT_TRUSTED", msg}
}

// LimitExceededError is a rate-limiting error with a retry hint.
type LimitExceededError struct {
	MatrixError
	RetryAfterMS int64 `json:"retry_after_ms,omitempty"`
}

// LimitExceeded is an error when the client sends requests too quickly.
func LimitExceeded(msg string, retryAfterMS int64) *LimitExceededError {
	return &LimitExceededError{
		MatrixError:  MatrixError{"M_LIMIT_EXCEEDED", msg},
		RetryAfterMS: retryAfterMS,
	}
}
