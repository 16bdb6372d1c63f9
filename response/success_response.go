package response

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse writes Body as the top-level JSON document.
type SuccessResponse struct {
	Body       interface{}
	StatusCode int
}

// Message is the body of responses that only confirm an action.
type Message struct {
	Message string `json:"message"`
}

func (r SuccessResponse) Send(w http.ResponseWriter) {
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r.Body)
}
