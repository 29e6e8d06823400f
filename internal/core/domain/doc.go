// Package domain defines the core domain models for the hub.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Context: attribution record for actions performed by a request
//   - User: identity resolved by the authentication layer
//   - AccessToken: long-lived bearer credential bound to a user
//   - Errors: coded domain errors and their HTTP status mapping
package domain
