package game

import (
	"fmt"
	"math/rand"
)

type TileType string

const (
	TilePlain    TileType = "plain"
	TileMountain TileType = "mountain"
	TileCity     TileType = "city"
)

// NeutralOwner is the owner value for unclaimed tiles.
const NeutralOwner = 0

const (
	MinGridSize = 20
	MaxGridSize = 30

	mountainChance  = 0.2
	neutralCities   = 13
	cityCostMin     = 46
	cityCostMax     = 50
	capitalAttempts = 5000
	cityAttempts    = 2000
)

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key renders the coordinate in the "x,y" form used on the wire for
// vision sets.
func (c Coord) Key() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

type Tile struct {
	Type        TileType `json:"type"`
	Army        int      `json:"army"`
	Owner       int      `json:"owner"`
	IsCity      bool     `json:"isCity"`
	IsCapital   bool     `json:"isCapital"`
	IsSplit     bool     `json:"isSplit"`
	CaptureCost int      `json:"captureCost"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
}

// Board is one room's grid. Tiles are indexed [x][y].
type Board struct {
	Size  int
	Tiles [][]*Tile
}

func (b *Board) At(c Coord) *Tile {
	return b.Tiles[c.X][c.Y]
}

func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.Size && c.Y >= 0 && c.Y < b.Size
}

// RandomGridSize picks a per-room grid dimension in [MinGridSize, MaxGridSize].
func RandomGridSize(rng *rand.Rand) int {
	return MinGridSize + rng.Intn(MaxGridSize-MinGridSize+1)
}

// GenerateBoard builds a fully initialized grid for the given slots: one
// capital per slot, mountains away from capitals, cleared paths between
// consecutive capitals, and a handful of neutral cities. The returned map
// gives each slot's capital position.
func GenerateBoard(size int, slots []int, rng *rand.Rand) (*Board, map[int]Coord) {
	b := &Board{Size: size, Tiles: make([][]*Tile, size)}
	for x := 0; x < size; x++ {
		b.Tiles[x] = make([]*Tile, size)
		for y := 0; y < size; y++ {
			b.Tiles[x][y] = &Tile{Type: TilePlain, Owner: NeutralOwner, X: x, Y: y}
		}
	}

	capitals := placeCapitals(b, slots, rng)
	addMountains(b, capitals, rng)
	clearCapitalPaths(b, slots, capitals)
	placeCities(b, rng)
	return b, capitals
}

// placeCapitals positions one capital per slot via rejection sampling with
// a minimum pairwise Manhattan distance, falling back to fixed corner and
// edge positions, then to free tiles in scan order, when random placement
// runs out of attempts. It always yields exactly one capital per slot.
func placeCapitals(b *Board, slots []int, rng *rand.Rand) map[int]Coord {
	minDistance := b.Size / 2
	var picked []Coord

	for attempts := 0; len(picked) < len(slots) && attempts < capitalAttempts; attempts++ {
		c := Coord{X: rng.Intn(b.Size), Y: rng.Intn(b.Size)}
		ok := true
		for _, p := range picked {
			if abs(p.X-c.X)+abs(p.Y-c.Y) < minDistance {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c)
		}
	}

	if len(picked) < len(slots) {
		fallback := []Coord{
			{1, 1},
			{1, b.Size - 2},
			{b.Size - 2, 1},
			{b.Size - 2, b.Size - 2},
			{b.Size / 2, 1},
			{b.Size / 2, b.Size - 2},
		}
		for _, f := range fallback {
			if len(picked) >= len(slots) {
				break
			}
			dup := false
			for _, p := range picked {
				if p == f {
					dup = true
					break
				}
			}
			if !dup {
				picked = append(picked, f)
			}
		}
	}

	// Crowded boards can exhaust both the sampling and the fallback list;
	// every remaining slot takes the first free tile in scan order.
	for x := 0; x < b.Size && len(picked) < len(slots); x++ {
		for y := 0; y < b.Size && len(picked) < len(slots); y++ {
			c := Coord{X: x, Y: y}
			dup := false
			for _, p := range picked {
				if p == c {
					dup = true
					break
				}
			}
			if !dup {
				picked = append(picked, c)
			}
		}
	}

	capitals := make(map[int]Coord, len(slots))
	for i, slot := range slots {
		pos := picked[i]
		t := b.At(pos)
		t.Type = TileCity
		t.Army = 1
		t.Owner = slot
		t.IsCity = true
		t.IsCapital = true
		t.CaptureCost = 0
		capitals[slot] = pos
	}
	return capitals
}

// clearCapitalPaths flattens any mountain on the axis-aligned L-shaped path
// between each consecutive pair of capitals so no capital starts walled in.
func clearCapitalPaths(b *Board, slots []int, capitals map[int]Coord) {
	for k := 0; k+1 < len(slots); k++ {
		a := capitals[slots[k]]
		c := capitals[slots[k+1]]
		sx, ex := minMax(a.X, c.X)
		sy, ey := minMax(a.Y, c.Y)
		for x := sx; x <= ex; x++ {
			if b.Tiles[x][a.Y].Type == TileMountain {
				b.Tiles[x][a.Y].Type = TilePlain
			}
		}
		for y := sy; y <= ey; y++ {
			if b.Tiles[c.X][y].Type == TileMountain {
				b.Tiles[c.X][y].Type = TilePlain
			}
		}
	}
}

func addMountains(b *Board, capitals map[int]Coord, rng *rand.Rand) {
	for x := 0; x < b.Size; x++ {
		for y := 0; y < b.Size; y++ {
			near := false
			for _, cap := range capitals {
				if abs(x-cap.X) <= 2 && abs(y-cap.Y) <= 2 {
					near = true
					break
				}
			}
			if near || b.Tiles[x][y].IsCapital {
				continue
			}
			if rng.Float64() <= mountainChance {
				b.Tiles[x][y].Type = TileMountain
			}
		}
	}
}

// placeCities scatters neutral capture-cost cities on vacant plain tiles.
// Falling short of the target count once attempts run out is tolerated.
func placeCities(b *Board, rng *rand.Rand) {
	placed := 0
	for tries := 0; placed < neutralCities && tries < cityAttempts; tries++ {
		x, y := rng.Intn(b.Size), rng.Intn(b.Size)
		t := b.Tiles[x][y]
		if t.Type != TilePlain || t.IsCity {
			continue
		}
		t.Type = TileCity
		t.IsCity = true
		t.Owner = NeutralOwner
		t.Army = 0
		t.CaptureCost = cityCostMin + rng.Intn(cityCostMax-cityCostMin+1)
		placed++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
