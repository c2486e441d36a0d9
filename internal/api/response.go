package api

import (
	"encoding/json"
	"net/http"

	"casefile/internal/models"
)

// All domain endpoints answer inside one envelope. ApiStatus:false marks a
// logical failure and may ride on an HTTP 200; clients are expected to check
// it explicitly instead of trusting the status code.
type Envelope struct {
	ApiStatus bool          `json:"ApiStatus"`
	Message   string        `json:"message,omitempty"`
	Response  *ResponseBody `json:"response,omitempty"`
}

type ResponseBody struct {
	Data       interface{}        `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		ApiStatus: true,
		Response:  &ResponseBody{Data: data},
	})
}

func respondList(w http.ResponseWriter, data interface{}, pagination *models.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Envelope{
		ApiStatus: true,
		Response:  &ResponseBody{Data: data, Pagination: pagination},
	})
}

// respondFailure reports a logical failure. The status is 200 on purpose.
func respondFailure(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Envelope{
		ApiStatus: false,
		Message:   message,
	})
}
