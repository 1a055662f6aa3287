// Package api provides the HTTP handlers for the card-account REST surface.
// Handlers decode and validate requests, build the calling principal from
// the authenticated context, delegate to the service layer, and map service
// errors to HTTP responses in one place.
package api
