package models

type ErrorBody struct {
	Message string `json:"message,omitempty"`
}
