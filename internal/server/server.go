package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/example/conquest/internal/game"
)

var roomIDPattern = regexp.MustCompile(`^[a-z]{4}$`)

// GameServer owns the room table and the websocket boundary. Rooms are
// fully independent simulations; the server only routes commands to the
// right room's event queue.
type GameServer struct {
	rooms   map[string]*Room
	roomsMu sync.RWMutex

	clients   map[string]*client
	clientsMu sync.Mutex

	upgrader   websocket.Upgrader
	maxPlayers int
	rng        *rand.Rand
	rngMu      sync.Mutex
	log        zerolog.Logger
}

func NewGameServer(maxPlayers int, log zerolog.Logger) *GameServer {
	return &GameServer{
		rooms:   make(map[string]*Room),
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		maxPlayers: maxPlayers,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        log,
	}
}

// HandleWS upgrades the connection and starts the participant's read
// loop.
func (gs *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := gs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newClient(uuid.NewString(), conn, gs.log)
	gs.clientsMu.Lock()
	gs.clients[c.id] = c
	gs.clientsMu.Unlock()
	go gs.readLoop(c)
}

func (gs *GameServer) readLoop(c *client) {
	defer func() {
		gs.clientsMu.Lock()
		delete(gs.clients, c.id)
		gs.clientsMu.Unlock()
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleLeave(c) })
		}
		c.conn.Close()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.log.Debug().Err(err).Msg("read loop closed")
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		gs.dispatch(c, msg)
	}
}

func (gs *GameServer) dispatch(c *client, msg Message) {
	switch msg.Type {
	case "createRoom":
		var data createRoomPayload
		json.Unmarshal(msg.Payload, &data)
		gs.createRoom(c, data.Username)
	case "joinRoom":
		var data joinRoomPayload
		json.Unmarshal(msg.Payload, &data)
		gs.joinRoom(c, data.RoomID, data.Username)
	case "playerReady":
		var data readyPayload
		json.Unmarshal(msg.Payload, &data)
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleReady(c, data.Name) })
		}
	case "selectTile":
		var data tilePayload
		json.Unmarshal(msg.Payload, &data)
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleSelect(c, data.X, data.Y) })
		}
	case "moveArmy":
		var data movePayload
		json.Unmarshal(msg.Payload, &data)
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleMove(c, data.Source, data.Target) })
		}
	case "splitArmy":
		var data tilePayload
		json.Unmarshal(msg.Payload, &data)
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleSplit(c, data.X, data.Y) })
		}
	case "endTurn":
		if room := gs.roomOf(c); room != nil {
			room.enqueue(func() { room.handleTurnAdvance() })
		}
	}
}

func (gs *GameServer) createRoom(c *client, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		c.send(WSOut{Type: "invalidUsername", Payload: invalidUsernamePayload{Reason: "username must not be empty"}})
		return
	}
	if roomID, _ := c.room(); roomID != "" {
		c.send(WSOut{Type: "alreadyInRoom", Payload: alreadyInRoomPayload{RoomID: roomID}})
		return
	}

	id := gs.newRoomID()
	g := game.NewGame(id, gs.maxPlayers, gs.newRoomRand(), gs.log)
	room := newRoom(gs, id, g, gs.log)

	// The creator takes the first slot before the actor starts.
	slot, err := g.AddPlayer(username)
	if err != nil {
		c.send(WSOut{Type: "roomFull"})
		return
	}
	room.players[slot] = c
	c.setRoom(id, slot)

	gs.roomsMu.Lock()
	gs.rooms[id] = room
	gs.roomsMu.Unlock()
	go room.run()

	c.send(WSOut{Type: "roomCreated", Payload: roomCreatedPayload{RoomID: id, PlayerID: slot}})
	room.enqueue(func() { room.broadcastLobby() })
	gs.log.Info().Str("room", id).Str("name", username).Msg("room created")
}

func (gs *GameServer) joinRoom(c *client, roomID, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		c.send(WSOut{Type: "invalidUsername", Payload: invalidUsernamePayload{Reason: "username must not be empty"}})
		return
	}
	if current, _ := c.room(); current != "" {
		c.send(WSOut{Type: "alreadyInRoom", Payload: alreadyInRoomPayload{RoomID: current}})
		return
	}
	if !roomIDPattern.MatchString(roomID) {
		c.send(WSOut{Type: "invalidRoomId"})
		return
	}
	room := gs.getRoom(roomID)
	if room == nil {
		c.send(WSOut{Type: "roomNotFound"})
		return
	}
	if !room.enqueue(func() { room.handleJoin(c, username) }) {
		c.send(WSOut{Type: "roomNotFound"})
	}
}

func (gs *GameServer) getRoom(id string) *Room {
	gs.roomsMu.RLock()
	defer gs.roomsMu.RUnlock()
	return gs.rooms[id]
}

// roomOf resolves the room a client is bound to; commands from clients
// not in a live room are silent no-ops.
func (gs *GameServer) roomOf(c *client) *Room {
	roomID, _ := c.room()
	if roomID == "" {
		return nil
	}
	return gs.getRoom(roomID)
}

func (gs *GameServer) removeRoom(id string) {
	gs.roomsMu.Lock()
	delete(gs.rooms, id)
	gs.roomsMu.Unlock()
}

// newRoomID draws 4-lowercase-letter ids until one misses the live-room
// table.
func (gs *GameServer) newRoomID() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	for {
		b := make([]byte, 4)
		gs.rngMu.Lock()
		for i := range b {
			b[i] = letters[gs.rng.Intn(len(letters))]
		}
		gs.rngMu.Unlock()
		id := string(b)
		if gs.getRoom(id) == nil {
			return id
		}
	}
}

// newRoomRand gives each room its own source so rooms never contend on a
// shared generator.
func (gs *GameServer) newRoomRand() *rand.Rand {
	gs.rngMu.Lock()
	defer gs.rngMu.Unlock()
	return rand.New(rand.NewSource(gs.rng.Int63()))
}

// HandleListRooms is the debug REST view of the room table. Each room is
// asked through its own event queue so the game state is never read
// concurrently with a mutation.
func (gs *GameServer) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	gs.roomsMu.RLock()
	rooms := make([]*Room, 0, len(gs.rooms))
	for _, room := range gs.rooms {
		rooms = append(rooms, room)
	}
	gs.roomsMu.RUnlock()

	resp := make([]roomInfo, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, room.info())
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].ID < resp[j].ID })
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Shutdown tells every connected participant the server is going away
// and closes their connections.
func (gs *GameServer) Shutdown() {
	payload := serverShutdownPayload{Message: "server shutting down", Timestamp: time.Now().UnixMilli()}
	gs.clientsMu.Lock()
	clients := make([]*client, 0, len(gs.clients))
	for _, c := range gs.clients {
		clients = append(clients, c)
	}
	gs.clientsMu.Unlock()
	for _, c := range clients {
		c.send(WSOut{Type: "serverShutdown", Payload: payload})
		c.conn.Close()
	}
}
