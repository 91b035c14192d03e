// Package middleware provides the HTTP middleware chain: request id
// assignment, panic recovery, authentication, and permission guards.
package middleware
