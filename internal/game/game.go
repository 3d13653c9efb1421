package game

import (
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
)

// Game holds one room's simulation state. It is not safe for concurrent
// use; callers are expected to serialize access (the server runs one
// actor goroutine per room).
type Game struct {
	roomID     string
	maxPlayers int

	occupied map[int]bool
	names    map[int]string
	ready    map[int]bool
	selected map[int]*Coord

	board      *Board
	size       int
	capitals   map[int]Coord
	transforms map[int]Transform

	turn    int
	started bool
	over    bool

	rng *rand.Rand
	log zerolog.Logger
}

func NewGame(roomID string, maxPlayers int, rng *rand.Rand, log zerolog.Logger) *Game {
	return &Game{
		roomID:     roomID,
		maxPlayers: maxPlayers,
		occupied:   make(map[int]bool),
		names:      make(map[int]string),
		ready:      make(map[int]bool),
		selected:   make(map[int]*Coord),
		rng:        rng,
		log:        log.With().Str("room", roomID).Logger(),
	}
}

func (g *Game) RoomID() string  { return g.roomID }
func (g *Game) MaxPlayers() int { return g.maxPlayers }
func (g *Game) Started() bool   { return g.started }
func (g *Game) Over() bool      { return g.over }
func (g *Game) Turn() int       { return g.turn }
func (g *Game) Board() *Board   { return g.board }
func (g *Game) Size() int       { return g.size }

// AddPlayer assigns the lowest free slot to a new participant.
func (g *Game) AddPlayer(name string) (int, error) {
	if g.started {
		return 0, ErrGameStarted
	}
	for slot := 1; slot <= g.maxPlayers; slot++ {
		if !g.occupied[slot] {
			g.occupied[slot] = true
			g.names[slot] = name
			g.ready[slot] = false
			return slot, nil
		}
	}
	return 0, ErrRoomFull
}

// RemovePlayer frees a lobby slot, returning how many occupied slots
// remain. Must not be used once the game has started; use NeutralizeSlot.
func (g *Game) RemovePlayer(slot int) int {
	delete(g.occupied, slot)
	delete(g.names, slot)
	delete(g.ready, slot)
	delete(g.selected, slot)
	return len(g.occupied)
}

func (g *Game) SetReady(slot int, name string) {
	if !g.occupied[slot] {
		return
	}
	g.ready[slot] = true
	if name != "" {
		g.names[slot] = name
	}
}

// AllReady reports whether the lobby can transition to Active: every
// occupied slot ready and at least two participants.
func (g *Game) AllReady() bool {
	if len(g.occupied) < 2 {
		return false
	}
	for slot := range g.occupied {
		if !g.ready[slot] {
			return false
		}
	}
	return true
}

// Slots returns the occupied slot indices in ascending order.
func (g *Game) Slots() []int {
	slots := make([]int, 0, len(g.occupied))
	for slot := range g.occupied {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

func (g *Game) PlayerCount() int { return len(g.occupied) }

func (g *Game) Name(slot int) string  { return g.names[slot] }
func (g *Game) IsReady(slot int) bool { return g.ready[slot] }

// Start generates the board and per-player orientation transforms and
// flips the room to Active. Calling it twice is a no-op.
func (g *Game) Start() {
	if g.started {
		return
	}
	slots := g.Slots()
	g.size = RandomGridSize(g.rng)
	g.board, g.capitals = GenerateBoard(g.size, slots, g.rng)
	g.transforms = assignTransforms(slots, g.rng)
	g.turn = 1
	g.started = true
	g.log.Info().Int("size", g.size).Int("players", len(slots)).Msg("game started")
}

func (g *Game) Capitals() map[int]Coord { return g.capitals }

func (g *Game) TransformFor(slot int) Transform { return g.transforms[slot] }

// SelectTile records a slot's transient tile selection. Only tiles owned
// by the slot may be selected.
func (g *Game) SelectTile(slot int, c Coord) bool {
	if !g.started || g.over || !g.board.InBounds(c) {
		return false
	}
	if g.board.At(c).Owner != slot {
		return false
	}
	g.selected[slot] = &c
	return true
}

func (g *Game) SelectedTile(slot int) *Coord { return g.selected[slot] }

// AdvanceTurn increments the turn counter, clears transient per-slot
// selection state and re-evaluates the win condition.
func (g *Game) AdvanceTurn() WinState {
	g.turn++
	for slot := range g.selected {
		delete(g.selected, slot)
	}
	return g.EvaluateWin()
}

// Reinforce gives +1 army to every owned, non-mountain tile.
func (g *Game) Reinforce() {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			t := g.board.Tiles[x][y]
			if t.Owner != NeutralOwner && t.Type != TileMountain {
				t.Army++
			}
		}
	}
}

// GrowCities gives +1 army to every owned capital or city, reporting
// whether anything changed.
func (g *Game) GrowCities() bool {
	changed := false
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			t := g.board.Tiles[x][y]
			if (t.IsCapital || t.IsCity) && t.Owner != NeutralOwner {
				t.Army++
				changed = true
			}
		}
	}
	return changed
}

// NeutralizeSlot returns a disconnected slot's territory to neutral,
// demoting its capital to a plain city. Reports whether any tile changed.
func (g *Game) NeutralizeSlot(slot int) bool {
	changed := false
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			t := g.board.Tiles[x][y]
			if t.Owner != slot {
				continue
			}
			t.Owner = NeutralOwner
			t.Army = 0
			t.IsSplit = false
			if t.IsCapital {
				t.IsCapital = false
				t.Type = TileCity
			}
			changed = true
		}
	}
	if changed {
		g.log.Info().Int("slot", slot).Msg("territory neutralized")
	}
	return changed
}

// WinState is the outcome of a win-condition evaluation.
type WinState struct {
	Over   bool
	Winner int
	// Spectators lists occupied slots that own no tiles while the game
	// continues; they are owed a full-visibility snapshot.
	Spectators []int
}

// EvaluateWin runs both terminal checks: elimination (at most one slot
// owns tiles) and capital supremacy (exactly one slot owns a capital).
// The checks stay independent even though current capture rules demote
// captured capitals.
func (g *Game) EvaluateWin() WinState {
	if g.over {
		return WinState{Over: true}
	}

	owners := make(map[int]bool)
	capitalOwners := make(map[int]bool)
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			t := g.board.Tiles[x][y]
			if t.Owner == NeutralOwner {
				continue
			}
			owners[t.Owner] = true
			if t.IsCapital {
				capitalOwners[t.Owner] = true
			}
		}
	}

	var spectators []int
	for _, slot := range g.Slots() {
		if !owners[slot] {
			spectators = append(spectators, slot)
		}
	}

	if len(owners) <= 1 {
		g.over = true
		winner := 0
		for slot := range owners {
			winner = slot
		}
		return WinState{Over: true, Winner: winner, Spectators: spectators}
	}
	if len(capitalOwners) == 1 {
		g.over = true
		winner := 0
		for slot := range capitalOwners {
			winner = slot
		}
		return WinState{Over: true, Winner: winner, Spectators: spectators}
	}
	return WinState{Spectators: spectators}
}
