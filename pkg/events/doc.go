// Package events provides the in-process publish/subscribe bus that carries
// write notifications from domain services to the read model and cache
// invalidation hooks.
//
// Dispatch is asynchronous, per-handler timeout bounded, and panic safe. The
// bus is a single-process convenience, not a distributed messaging
// primitive: delivery is best effort, and the read paths that consume
// projections always fall back to the relational store.
package events
