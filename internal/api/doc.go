// Package api exposes the deck service over HTTP with chi. Handlers decode
// and validate requests, call the service and map its errors to status codes
// in one place (MapErrorToStatusCode).
package api
