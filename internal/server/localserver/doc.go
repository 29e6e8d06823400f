// Package localserver serves the hub API on a Unix domain socket.
//
// Requests arriving on the socket are marked local in their context, so the
// Identify middleware treats a request without a credential as the system
// user. Access is controlled by the socket file's permissions (0600).
package localserver
