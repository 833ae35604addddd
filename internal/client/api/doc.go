// Package api is the client side of the euronode HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract the screens depend on. HTTPClient
// implements it over JSON and multipart requests against the backend's
// routes (/login/, /central-models/, /filter_client, /assign_client/, ...).
//
// # Error Handling
//
// Transport failures map to ErrUnavailable. Non-2xx responses become an
// *APIError that carries the server's message and unwraps to one of
// ErrBadRequest, ErrUnauthorized, ErrNotFound or ErrServer, so callers can
// use errors.Is for the class and errors.As for the message.
//
// # Response shapes
//
// The assignment list is a JSON array. Any other shape is ErrMalformedResponse
// when strict decoding is enabled and an empty list (logged at warn level)
// otherwise.
//
// No request is retried. Every request carries an X-Request-ID header.
package api
