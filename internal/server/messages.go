package server

import (
	"encoding/json"

	"github.com/example/conquest/internal/game"
)

// Message is the inbound websocket envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSOut is the outbound websocket envelope.
type WSOut struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Inbound command payloads.

type createRoomPayload struct {
	Username string `json:"username"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type readyPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type tilePayload struct {
	RoomID string `json:"roomId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type movePayload struct {
	RoomID string     `json:"roomId"`
	Source game.Coord `json:"source"`
	Target game.Coord `json:"target"`
}

// Outbound snapshot payloads.

type lobbyPlayer struct {
	Name    string `json:"name"`
	IsReady bool   `json:"isReady"`
	Color   string `json:"color"`
}

type lobbyUpdatePayload struct {
	Players    map[int]lobbyPlayer `json:"players"`
	MaxPlayers int                 `json:"maxPlayers"`
}

type roomCreatedPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID int    `json:"playerId"`
}

type roomJoinedPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID int    `json:"playerId"`
}

type gameStartPayload struct {
	GridSize        int                `json:"gridSize"`
	Grid            [][]*game.Tile     `json:"grid"`
	PlayerID        int                `json:"playerId"`
	RoomID          string             `json:"roomId"`
	Colors          map[int]string     `json:"colors"`
	Names           map[int]string     `json:"names"`
	Stats           game.Stats         `json:"stats"`
	Capitals        map[int]game.Coord `json:"capitals"`
	Vision          []string           `json:"vision"`
	VisionTransform int                `json:"visionTransform"`
}

type tileSelectedPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type armyMovedPayload struct {
	Source   *game.Tile     `json:"source"`
	Target   *game.Tile     `json:"target"`
	PlayerID int            `json:"playerId"`
	Stats    game.Stats     `json:"stats"`
	Grid     [][]*game.Tile `json:"grid"`
	Vision   []string       `json:"vision"`
}

type armySplitPayload struct {
	X       int            `json:"x"`
	Y       int            `json:"y"`
	IsSplit bool           `json:"isSplit"`
	NewArmy int            `json:"newArmy"`
	Stats   game.Stats     `json:"stats"`
	Grid    [][]*game.Tile `json:"grid"`
	Vision  []string       `json:"vision"`
}

// boardUpdatePayload carries armyIncreased and turnEnded snapshots.
type boardUpdatePayload struct {
	Stats  game.Stats     `json:"stats"`
	Grid   [][]*game.Tile `json:"grid"`
	Vision []string       `json:"vision"`
}

// gameOverPayload doubles as playerDefeated; Winner is null while the
// wider game continues.
type gameOverPayload struct {
	Winner *int           `json:"winner"`
	Stats  game.Stats     `json:"stats"`
	Grid   [][]*game.Tile `json:"grid"`
	Vision []string       `json:"vision"`
}

type alreadyInRoomPayload struct {
	RoomID string `json:"roomId"`
}

type invalidUsernamePayload struct {
	Reason string `json:"reason"`
}

type serverShutdownPayload struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
