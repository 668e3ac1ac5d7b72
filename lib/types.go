package lib

import "net/http"

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrorResponse is the JSON body of failed API requests.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
