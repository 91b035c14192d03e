// Package boards implements the board domain service: board, column, and
// task lifecycle, plus board-scoped shares.
//
// Shares form a second authorization axis next to the registry-based
// permission set. A direct user share always beats team shares; among team
// shares the user's earliest membership wins. Call sites pick an
// AccessPolicy to say how the two axes combine.
package boards
