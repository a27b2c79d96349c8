package service

import "net/http"

// Response is the uniform result envelope returned by every service
// operation. Internal errors never escape as raw Go errors; they are folded
// into the envelope and StatusCode carries the transport mapping verbatim.
type Response[T any] struct {
	Success    bool     `json:"success"`
	Result     *T       `json:"result"`
	Message    string   `json:"message"`
	Errors     []string `json:"errorList"`
	StatusCode int      `json:"statusCode"`
}

func newResponse[T any]() Response[T] {
	return Response[T]{
		Success:    true,
		Message:    "Success",
		Errors:     []string{},
		StatusCode: http.StatusOK,
	}
}

// AddError records an error message and flips the envelope to failure.
func (r *Response[T]) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
	r.Message = "Failure"
}

func (r *Response[T]) fail(status int, msg string) {
	r.AddError(msg)
	r.StatusCode = status
}
