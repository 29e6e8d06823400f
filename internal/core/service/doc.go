// Package service provides the hub's core services.
//
// This package contains:
//
//   - AuthService: bearer access token verification with an LRU credential
//     cache and trusted network recognition
//   - RateLimiterRegistry: per-client token buckets
//   - Registry: services addressed by domain and name, with optional
//     validation schemas
package service
