// Package audit records security-relevant events: authentication attempts,
// authorization denials, permission grant changes, and data mutations.
//
// Audit writes are advisory. A failed write is logged and the request
// proceeds; enforcement never depends on the audit trail.
package audit
