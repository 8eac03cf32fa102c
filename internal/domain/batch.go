package domain

import "encoding/json"

// Batch is the inbound envelope for POST /api/public/ingestion (spec §3).
type Batch struct {
	Batch    []Event         `json:"batch"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// BatchSuccess is one entry of the 207 response's "successes" array.
type BatchSuccess struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}

// BatchError is one entry of the 207 response's "errors" array.
type BatchError struct {
	ID      string `json:"id"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse is the body of the 207 multi-status response (spec §4.4 step 11).
type BatchResponse struct {
	Successes []BatchSuccess `json:"successes"`
	Errors    []BatchError   `json:"errors"`
}

// AddSuccess records a successfully processed event.
func (r *BatchResponse) AddSuccess(id string) {
	r.Successes = append(r.Successes, BatchSuccess{ID: id, Status: 201})
}

// AddError records a failed event using the error-kind-to-status mapping (spec §7).
func (r *BatchResponse) AddError(id string, err error) {
	de := AsDomainError(err)
	r.Errors = append(r.Errors, BatchError{
		ID:      id,
		Status:  de.HTTPStatusCode(),
		Message: de.Message,
		Error:   string(de.Kind),
	})
}
