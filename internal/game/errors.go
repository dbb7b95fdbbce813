package game

import "errors"

var (
	// ErrInvalidState rejects an operation that is not legal in the game's
	// current status. Fatal to the call, never to the game.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidSelection rejects a submission or judgment with the wrong
	// seat, wrong card count, or unknown card ids.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrConfiguration means the configured pack cannot seed a round. Fatal
	// to the game at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrGameFull rejects a join once the seat limit is reached.
	ErrGameFull = errors.New("game is full")
)
