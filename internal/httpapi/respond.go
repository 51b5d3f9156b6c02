package httpapi

import (
	"encoding/json"
	"net/http"
)

// Stable error codes carried in every error response; clients map them
// back to sentinel errors.
const (
	CodeInvalidData   = "INVALID_DATA"
	CodeParsing       = "PARSING_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeDuplicateVote = "DUPLICATE_VOTE"
	CodeEmailTaken    = "EMAIL_TAKEN"
	CodeUsernameTaken = "USERNAME_TAKEN"
	CodeInvalidLogin  = "INVALID_LOGIN"
	CodeInternal      = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errResponse{Error: apiError{Code: code, Message: msg}})
}
