package utils

import (
	"database/sql"
	"net/http"
)

// Convert an empty string to a NULL value
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func PtrToString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HttpError provides shorter handling of http error
func HttpError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
