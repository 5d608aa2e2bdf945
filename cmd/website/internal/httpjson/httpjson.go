package httpjson

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func Write(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func OK(w http.ResponseWriter, value any) {
	Write(w, http.StatusOK, value)
}

func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorResponse{Error: message})
}

/*
Decode reads a JSON request body into dest. The body is capped at 1MB.
*/
func Decode(r *http.Request, dest any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dest)
}
