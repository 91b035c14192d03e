// Package readmodel maintains denormalized read-side projections of boards
// and tasks, refreshed asynchronously from domain events. Read paths prefer
// the cached projection and fall back to direct relational queries, so a
// lost or late event only costs a recomputation.
package readmodel
