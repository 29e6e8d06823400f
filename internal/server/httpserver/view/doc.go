// Package view binds views to a router.
//
// A View declares one or more URL patterns and implements one handler
// interface per HTTP method it supports (GetHandler, PostHandler, ...).
// A Registrar adds a route for every (method, pattern) pair, each served by
// the Adapter, which
//
//  1. answers 503 while the hub is not running,
//  2. answers 401 when the view requires authentication and the request
//     was not authenticated,
//  3. invokes the handler with the path parameters and awaits a Future,
//  4. translates validation, authorization and missing-service errors, and
//  5. writes the Result.
//
// Handlers return one of the Result variants: a complete *Response or
// Stream, a payload (Bytes, Text, Empty or nil) optionally wrapped in
// WithStatus, or a Future resolving to any of those.
package view
