package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardSnapshot(g *Game) []Tile {
	var tiles []Tile
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			tiles = append(tiles, *g.board.Tiles[x][y])
		}
	}
	return tiles
}

func TestMoveOntoNeutralPlain(t *testing.T) {
	g := blankGame(25, 1, 2)
	own(g, 1, Coord{X: 3, Y: 3}, 5)
	own(g, 2, Coord{X: 20, Y: 20}, 5)

	res := g.MoveArmy(1, Coord{X: 3, Y: 3}, Coord{X: 3, Y: 4})
	require.True(t, res.Applied)
	assert.Equal(t, 1, g.board.Tiles[3][3].Army)
	assert.Equal(t, 1, g.board.Tiles[3][4].Owner)
	assert.Equal(t, 4, g.board.Tiles[3][4].Army)
	assert.False(t, res.GameOver)
}

func TestMoveIllegalCommandsLeaveBoardUntouched(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 5)
	own(g, 2, Coord{X: 7, Y: 7}, 5)
	g.board.Tiles[2][3].Type = TileMountain

	cases := []struct {
		name     string
		slot     int
		src, dst Coord
	}{
		{"mountain target", 1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3}},
		{"not adjacent", 1, Coord{X: 2, Y: 2}, Coord{X: 4, Y: 2}},
		{"diagonal", 1, Coord{X: 2, Y: 2}, Coord{X: 3, Y: 3}},
		{"wrong owner", 2, Coord{X: 2, Y: 2}, Coord{X: 3, Y: 2}},
		{"source out of bounds", 1, Coord{X: -1, Y: 0}, Coord{X: 0, Y: 0}},
		{"target out of bounds", 1, Coord{X: 0, Y: 0}, Coord{X: 0, Y: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := boardSnapshot(g)
			res := g.MoveArmy(tc.slot, tc.src, tc.dst)
			assert.False(t, res.Applied)
			assert.Equal(t, before, boardSnapshot(g))
		})
	}
}

func TestMoveFromSingleArmyTileIsNoOp(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 1)
	own(g, 2, Coord{X: 7, Y: 7}, 5)

	before := boardSnapshot(g)
	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	assert.False(t, res.Applied)
	assert.Equal(t, before, boardSnapshot(g))
}

func TestMoveMergesOntoOwnTile(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 6)
	own(g, 1, Coord{X: 2, Y: 3}, 4)
	own(g, 2, Coord{X: 7, Y: 7}, 5)

	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	require.True(t, res.Applied)
	assert.Equal(t, 1, g.board.Tiles[2][2].Army)
	assert.Equal(t, 9, g.board.Tiles[2][3].Army)
}

func TestMoveCapturesNeutralCity(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 51)
	own(g, 2, Coord{X: 7, Y: 7}, 5)
	city := g.board.Tiles[2][3]
	city.Type = TileCity
	city.IsCity = true
	city.CaptureCost = 48

	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	require.True(t, res.Applied)
	assert.Equal(t, 1, city.Owner)
	assert.Equal(t, 2, city.Army)
	assert.Equal(t, 0, city.CaptureCost)
	assert.True(t, city.IsCity)
}

func TestMoveChipsAwayAtCityCaptureCost(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 11)
	own(g, 2, Coord{X: 7, Y: 7}, 5)
	city := g.board.Tiles[2][3]
	city.Type = TileCity
	city.IsCity = true
	city.CaptureCost = 48

	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	require.True(t, res.Applied)
	assert.Equal(t, NeutralOwner, city.Owner)
	assert.Equal(t, 38, city.CaptureCost)

	// The cost floors at 1 rather than reaching zero.
	own(g, 1, Coord{X: 2, Y: 2}, 38)
	g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	assert.Equal(t, 1, city.CaptureCost)
	assert.Equal(t, NeutralOwner, city.Owner)
}

func TestCombatOutcomes(t *testing.T) {
	t.Run("attacker wins", func(t *testing.T) {
		g := blankGame(10, 1, 2)
		own(g, 1, Coord{X: 2, Y: 2}, 8)  // moves 7
		own(g, 2, Coord{X: 2, Y: 3}, 4)
		own(g, 2, Coord{X: 7, Y: 7}, 5)

		res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
		require.True(t, res.Applied)
		assert.Equal(t, 1, g.board.Tiles[2][3].Owner)
		assert.Equal(t, 3, g.board.Tiles[2][3].Army)
	})

	t.Run("defender holds", func(t *testing.T) {
		g := blankGame(10, 1, 2)
		own(g, 1, Coord{X: 2, Y: 2}, 4) // moves 3
		own(g, 2, Coord{X: 2, Y: 3}, 9)
		own(g, 2, Coord{X: 7, Y: 7}, 5)

		res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
		require.True(t, res.Applied)
		assert.Equal(t, 2, g.board.Tiles[2][3].Owner)
		assert.Equal(t, 6, g.board.Tiles[2][3].Army)
	})

	t.Run("exact tie leaves zero army with original owner", func(t *testing.T) {
		g := blankGame(10, 1, 2)
		own(g, 1, Coord{X: 2, Y: 2}, 6) // moves 5
		own(g, 2, Coord{X: 2, Y: 3}, 5)
		own(g, 2, Coord{X: 7, Y: 7}, 5)

		res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
		require.True(t, res.Applied)
		assert.Equal(t, 2, g.board.Tiles[2][3].Owner)
		assert.Equal(t, 0, g.board.Tiles[2][3].Army)
		assert.False(t, res.GameOver)
	})
}

func TestCapitalCaptureCascade(t *testing.T) {
	g := blankGame(12, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 10) // moves 9
	capital := own(g, 2, Coord{X: 2, Y: 3}, 4)
	capital.Type = TileCity
	capital.IsCity = true
	capital.IsCapital = true
	own(g, 2, Coord{X: 8, Y: 8}, 7)
	own(g, 2, Coord{X: 9, Y: 8}, 2)

	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	require.True(t, res.Applied)
	assert.Equal(t, 2, res.DefeatedSlot)

	// Every former slot-2 tile now belongs to slot 1; the capital is a
	// plain city.
	for _, c := range []Coord{{X: 2, Y: 3}, {X: 8, Y: 8}, {X: 9, Y: 8}} {
		assert.Equal(t, 1, g.board.At(c).Owner, "tile %v", c)
	}
	assert.False(t, capital.IsCapital)
	assert.Equal(t, TileCity, capital.Type)

	// Slot 2 owns nothing, so the game ends by elimination.
	assert.True(t, res.GameOver)
	assert.Equal(t, 1, res.Winner)
}

func TestSplitThenMoveHalvesArmy(t *testing.T) {
	g := blankGame(10, 1, 2)
	src := own(g, 1, Coord{X: 2, Y: 2}, 9)
	own(g, 2, Coord{X: 7, Y: 7}, 5)

	require.True(t, g.SplitArmy(1, Coord{X: 2, Y: 2}))
	// Idempotent while pending.
	require.True(t, g.SplitArmy(1, Coord{X: 2, Y: 2}))
	assert.True(t, src.IsSplit)

	res := g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3})
	require.True(t, res.Applied)
	// floor((9-1)/2) = 4 moved, 5 stayed, flag consumed.
	assert.Equal(t, 5, src.Army)
	assert.Equal(t, 4, g.board.Tiles[2][3].Army)
	assert.False(t, src.IsSplit)
}

func TestSplitRejections(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 1)
	own(g, 2, Coord{X: 7, Y: 7}, 5)

	assert.False(t, g.SplitArmy(1, Coord{X: 2, Y: 2}), "army <= 1")
	assert.False(t, g.SplitArmy(1, Coord{X: 7, Y: 7}), "not owner")
	assert.False(t, g.SplitArmy(1, Coord{X: 99, Y: 0}), "out of bounds")
}

func TestMoveIgnoredBeforeStartAndAfterGameOver(t *testing.T) {
	g := blankGame(10, 1, 2)
	own(g, 1, Coord{X: 2, Y: 2}, 5)
	own(g, 2, Coord{X: 7, Y: 7}, 5)

	g.started = false
	assert.False(t, g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3}).Applied)

	g.started = true
	g.over = true
	assert.False(t, g.MoveArmy(1, Coord{X: 2, Y: 2}, Coord{X: 2, Y: 3}).Applied)
}
