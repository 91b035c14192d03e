// Package api exposes the HTTP surface: authentication, the permission
// registry, profile/team/user administration, and board endpoints.
//
// Route guards carry the registry-based permission requirement; board
// endpoints additionally consult board-scoped shares through the boards
// service.
package api
