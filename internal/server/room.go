package server

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/conquest/internal/game"
)

const (
	turnInterval      = time.Second
	reinforceInterval = 25 * time.Second
	growthInterval    = time.Second
)

// Room runs one simulation instance. All board mutations, commands and
// timer firings alike, pass through a single goroutine draining ops, so
// no two mutations ever interleave on the same board. Rooms never share
// state with each other.
type Room struct {
	id   string
	gs   *GameServer
	game *game.Game
	log  zerolog.Logger

	// Written only from the actor goroutine (and during construction,
	// before the goroutine starts).
	players   map[int]*client
	spectated map[int]bool

	// Nil until the lobby transitions to an active game.
	turnTicker      *time.Ticker
	reinforceTicker *time.Ticker
	growthTicker    *time.Ticker

	ops  chan func()
	done chan struct{}
}

func newRoom(gs *GameServer, id string, g *game.Game, log zerolog.Logger) *Room {
	return &Room{
		id:        id,
		gs:        gs,
		game:      g,
		log:       log.With().Str("room", id).Logger(),
		players:   make(map[int]*client),
		spectated: make(map[int]bool),
		ops:       make(chan func(), 64),
		done:      make(chan struct{}),
	}
}

// enqueue posts a command to the room's event queue. It reports false
// once the room is torn down, making late commands safe no-ops.
func (r *Room) enqueue(op func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case <-r.done:
		return false
	case r.ops <- op:
		return true
	}
}

// run is the room actor. The game timers are armed by startGame on the
// lobby-to-active transition and stopped when the actor exits; until
// then their channels are nil and never fire. Each tick handler still
// checks liveness, so a firing queued behind game over is a no-op.
func (r *Room) run() {
	defer r.stopTimers()

	for {
		select {
		case <-r.done:
			return
		case op := <-r.ops:
			op()
		case <-tickC(r.turnTicker):
			r.handleTurnAdvance()
		case <-tickC(r.reinforceTicker):
			if r.active() {
				r.game.Reinforce()
				r.broadcastBoard("armyIncreased")
			}
		case <-tickC(r.growthTicker):
			if r.active() && r.game.GrowCities() {
				r.broadcastBoard("armyIncreased")
			}
		}
	}
}

// startTimers arms the three game tickers. Runs on the actor goroutine.
func (r *Room) startTimers() {
	r.turnTicker = time.NewTicker(turnInterval)
	r.reinforceTicker = time.NewTicker(reinforceInterval)
	r.growthTicker = time.NewTicker(growthInterval)
}

func (r *Room) stopTimers() {
	for _, t := range []*time.Ticker{r.turnTicker, r.reinforceTicker, r.growthTicker} {
		if t != nil {
			t.Stop()
		}
	}
}

// tickC yields a ticker's channel, or a nil channel that blocks forever
// while the ticker is not armed yet.
func tickC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (r *Room) active() bool {
	return r.game.Started() && !r.game.Over()
}

// teardown stops the timers and removes the room from the server table.
// Later references to the id behave as room-not-found.
func (r *Room) teardown() {
	select {
	case <-r.done:
		return
	default:
	}
	close(r.done)
	for _, c := range r.players {
		c.clearRoom()
	}
	r.gs.removeRoom(r.id)
	r.log.Info().Msg("room destroyed")
}

// --- command handlers; every one of these runs on the actor goroutine ---

func (r *Room) handleJoin(c *client, username string) {
	if r.game.Started() {
		c.send(WSOut{Type: "gameAlreadyStarted"})
		return
	}
	slot, err := r.game.AddPlayer(username)
	if err != nil {
		c.send(WSOut{Type: "roomFull"})
		return
	}
	r.players[slot] = c
	c.setRoom(r.id, slot)
	c.send(WSOut{Type: "roomJoined", Payload: roomJoinedPayload{RoomID: r.id, PlayerID: slot}})
	r.broadcastLobby()
	r.log.Info().Int("slot", slot).Str("name", username).Msg("player joined")
}

func (r *Room) handleReady(c *client, name string) {
	if r.game.Started() {
		return
	}
	_, slot := c.room()
	r.game.SetReady(slot, name)
	r.broadcastLobby()
	if r.game.AllReady() {
		r.startGame()
	}
}

func (r *Room) startGame() {
	r.game.Start()
	r.startTimers()
	colors := make(map[int]string)
	names := make(map[int]string)
	for _, slot := range r.game.Slots() {
		colors[slot] = game.ColorForSlot(slot)
		names[slot] = r.game.Name(slot)
	}
	stats := r.game.Stats()
	for slot, c := range r.players {
		c.send(WSOut{Type: "gameStart", Payload: gameStartPayload{
			GridSize:        r.game.Size(),
			Grid:            r.game.Board().Tiles,
			PlayerID:        slot,
			RoomID:          r.id,
			Colors:          colors,
			Names:           names,
			Stats:           stats,
			Capitals:        r.game.Capitals(),
			Vision:          visionKeys(game.VisionFor(r.game.Board(), slot)),
			VisionTransform: int(r.game.TransformFor(slot)),
		}})
	}
}

func (r *Room) handleSelect(c *client, x, y int) {
	_, slot := c.room()
	if r.game.SelectTile(slot, game.Coord{X: x, Y: y}) {
		c.send(WSOut{Type: "tileSelected", Payload: tileSelectedPayload{X: x, Y: y}})
	}
}

func (r *Room) handleMove(c *client, src, dst game.Coord) {
	_, slot := c.room()
	res := r.game.MoveArmy(slot, src, dst)
	if !res.Applied {
		return
	}
	stats := r.game.Stats()
	source := r.game.Board().At(src)
	target := r.game.Board().At(dst)
	for s, p := range r.players {
		p.send(WSOut{Type: "armyMoved", Payload: armyMovedPayload{
			Source:   source,
			Target:   target,
			PlayerID: slot,
			Stats:    stats,
			Grid:     r.game.Board().Tiles,
			Vision:   r.visionFor(s),
		}})
	}
	if res.DefeatedSlot != 0 {
		r.notifyDefeated(res.DefeatedSlot, slot)
	}
	if res.GameOver {
		r.finishGame(res.Winner)
	}
}

func (r *Room) handleSplit(c *client, x, y int) {
	_, slot := c.room()
	pos := game.Coord{X: x, Y: y}
	if !r.game.SplitArmy(slot, pos) {
		return
	}
	stats := r.game.Stats()
	for s, p := range r.players {
		p.send(WSOut{Type: "armySplit", Payload: armySplitPayload{
			X:       x,
			Y:       y,
			IsSplit: true,
			NewArmy: r.game.Board().At(pos).Army,
			Stats:   stats,
			Grid:    r.game.Board().Tiles,
			Vision:  r.visionFor(s),
		}})
	}
}

// handleTurnAdvance serves both the periodic turn tick and the manual
// end-turn command.
func (r *Room) handleTurnAdvance() {
	if !r.active() {
		return
	}
	win := r.game.AdvanceTurn()
	if win.Over {
		r.finishGame(win.Winner)
		return
	}
	r.notifySpectators(win.Spectators)
	r.broadcastBoard("turnEnded")
}

func (r *Room) handleLeave(c *client) {
	_, slot := c.room()
	c.clearRoom()
	if r.players[slot] != c {
		return
	}
	delete(r.players, slot)

	if !r.game.Started() {
		if r.game.RemovePlayer(slot) == 0 {
			r.teardown()
			return
		}
		r.broadcastLobby()
		return
	}
	if r.game.Over() {
		return
	}

	if r.game.NeutralizeSlot(slot) {
		r.broadcastBoard("armyIncreased")
	}
	win := r.game.EvaluateWin()
	if win.Over {
		r.finishGame(win.Winner)
		return
	}
	r.notifySpectators(win.Spectators)
}

// notifyDefeated sends the capital-loss snapshot: the defeated slot sees
// the whole board from now on.
func (r *Room) notifyDefeated(slot, winner int) {
	r.spectated[slot] = true
	c, ok := r.players[slot]
	if !ok {
		return
	}
	w := winner
	c.send(WSOut{Type: "playerDefeated", Payload: gameOverPayload{
		Winner: &w,
		Stats:  r.game.Stats(),
		Grid:   r.game.Board().Tiles,
		Vision: visionKeys(game.FullVision(r.game.Size())),
	}})
}

// notifySpectators grants full visibility, once, to slots that lost all
// territory while the game continues.
func (r *Room) notifySpectators(slots []int) {
	for _, slot := range slots {
		if r.spectated[slot] {
			continue
		}
		r.spectated[slot] = true
		c, ok := r.players[slot]
		if !ok {
			continue
		}
		c.send(WSOut{Type: "playerDefeated", Payload: gameOverPayload{
			Winner: nil,
			Stats:  r.game.Stats(),
			Grid:   r.game.Board().Tiles,
			Vision: visionKeys(game.FullVision(r.game.Size())),
		}})
	}
}

// finishGame broadcasts the terminal snapshot with full visibility for
// everyone and tears the room down.
func (r *Room) finishGame(winner int) {
	var w *int
	if winner != 0 {
		w = &winner
	}
	payload := gameOverPayload{
		Winner: w,
		Stats:  r.game.Stats(),
		Grid:   r.game.Board().Tiles,
		Vision: visionKeys(game.FullVision(r.game.Size())),
	}
	for _, c := range r.players {
		c.send(WSOut{Type: "gameOver", Payload: payload})
	}
	r.log.Info().Int("winner", winner).Msg("game over")
	r.teardown()
}

func (r *Room) broadcastLobby() {
	players := make(map[int]lobbyPlayer)
	for _, slot := range r.game.Slots() {
		players[slot] = lobbyPlayer{
			Name:    r.game.Name(slot),
			IsReady: r.game.IsReady(slot),
			Color:   game.ColorForSlot(slot),
		}
	}
	payload := lobbyUpdatePayload{Players: players, MaxPlayers: r.game.MaxPlayers()}
	for _, c := range r.players {
		c.send(WSOut{Type: "roomLobbyUpdate", Payload: payload})
	}
}

// broadcastBoard sends the current board with per-player fog of war to
// every connected slot.
func (r *Room) broadcastBoard(msgType string) {
	stats := r.game.Stats()
	for slot, c := range r.players {
		c.send(WSOut{Type: msgType, Payload: boardUpdatePayload{
			Stats:  stats,
			Grid:   r.game.Board().Tiles,
			Vision: r.visionFor(slot),
		}})
	}
}

// visionFor is the wire-ready vision list for a slot; slots already in
// spectator mode keep full visibility.
func (r *Room) visionFor(slot int) []string {
	if r.spectated[slot] {
		return visionKeys(game.FullVision(r.game.Size()))
	}
	return visionKeys(game.VisionFor(r.game.Board(), slot))
}

type roomInfo struct {
	ID          string `json:"id"`
	Started     bool   `json:"started"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// info queries the actor for a consistent view of the room; a torn-down
// or unresponsive room reports just its id.
func (r *Room) info() roomInfo {
	resp := make(chan roomInfo, 1)
	ok := r.enqueue(func() {
		resp <- roomInfo{
			ID:          r.id,
			Started:     r.game.Started(),
			PlayerCount: r.game.PlayerCount(),
			MaxPlayers:  r.game.MaxPlayers(),
		}
	})
	if !ok {
		return roomInfo{ID: r.id}
	}
	select {
	case info := <-resp:
		return info
	case <-time.After(time.Second):
		return roomInfo{ID: r.id}
	}
}

// visionKeys flattens a vision set to the sorted "x,y" list used on the
// wire.
func visionKeys(set map[game.Coord]struct{}) []string {
	keys := make([]string, 0, len(set))
	for c := range set {
		keys = append(keys, c.Key())
	}
	sort.Strings(keys)
	return keys
}
