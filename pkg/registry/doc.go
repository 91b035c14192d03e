// Package registry defines the closed catalog of permission names used by
// the Taskboard authorization system.
//
// # Overview
//
// Every permission is a string of the form "<Action> <Resource>" drawn from a
// fixed vocabulary, for example "Create Boards" or "Edit Tasks". The catalog
// is static: routes cannot mint new permission names at runtime, and the
// persisted permissions table is reconciled against the catalog (one-way,
// registry wins) at startup, on demand, and on a cron schedule.
//
// # Naming
//
// Names must match ^(List|Create|Edit|Delete|View|Manage|Assign)\s+[A-Z].
// Catalog entries violating the pattern are logged at startup and skipped;
// this surfaces a programming error without taking the process down.
//
// # Aliases
//
// Earlier deployments stored Portuguese permission names on profiles. Those
// are handled by an alias table resolved once when the registry is built:
//
//	r := registry.New(logger)
//	r.Canonical("Editar Tarefas") // "Edit Tasks"
//	r.IsValidPermission("Editar Tarefas") // true
//
// # Lifecycle
//
// The registry is constructed once per process and injected into the auth
// resolver, the enforcement layer, and the syncer. There is no package-level
// singleton.
package registry
