// Package store handles relational persistence for the Taskboard domain:
// users, profiles, permissions and their join tables, teams and memberships,
// boards, columns, tasks, and board shares.
//
// All queries go through database/sql with the lib/pq driver. Join tables
// enforce pair uniqueness at the schema level; duplicate grant inserts are
// ON CONFLICT DO NOTHING no-ops. Schema migrations live in migrations.go and
// are applied by RunMigrations at process startup.
package store
