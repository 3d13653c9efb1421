package game

import "errors"

var (
	ErrRoomFull    = errors.New("room full")
	ErrGameStarted = errors.New("game already started")
)
