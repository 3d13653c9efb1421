package game

import "math/rand"

// Transform is a per-player board orientation applied at the presentation
// boundary. It never affects vision, ownership or combat; the engine only
// assigns it and guarantees Apply and Invert are exact inverses.
type Transform int

const (
	TransformIdentity Transform = iota
	TransformRotate90
	TransformRotate180
	TransformRotate270
	TransformFlipX
	TransformFlipY
	TransformAntiDiagonal

	transformCount = 7
)

// Apply maps a real board coordinate to the coordinate the player's client
// displays, for a size×size grid.
func (t Transform) Apply(c Coord, size int) Coord {
	m := size - 1
	switch t {
	case TransformRotate90:
		return Coord{X: c.Y, Y: m - c.X}
	case TransformRotate180:
		return Coord{X: m - c.X, Y: m - c.Y}
	case TransformRotate270:
		return Coord{X: m - c.Y, Y: c.X}
	case TransformFlipX:
		return Coord{X: m - c.X, Y: c.Y}
	case TransformFlipY:
		return Coord{X: c.X, Y: m - c.Y}
	case TransformAntiDiagonal:
		return Coord{X: m - c.Y, Y: m - c.X}
	default:
		return c
	}
}

// Invert maps a display coordinate back to the real board coordinate.
func (t Transform) Invert(c Coord, size int) Coord {
	switch t {
	case TransformRotate90:
		return TransformRotate270.Apply(c, size)
	case TransformRotate270:
		return TransformRotate90.Apply(c, size)
	default:
		// Rotation by 180 and all flips are their own inverse.
		return t.Apply(c, size)
	}
}

// assignTransforms picks a transform per slot, distinct while unused
// transform ids remain (players beyond the seventh may repeat).
func assignTransforms(slots []int, rng *rand.Rand) map[int]Transform {
	assigned := make(map[int]Transform, len(slots))
	used := make(map[Transform]bool, transformCount)
	for _, slot := range slots {
		var t Transform
		for {
			t = Transform(rng.Intn(transformCount))
			if !used[t] || len(used) >= transformCount {
				break
			}
		}
		used[t] = true
		assigned[slot] = t
	}
	return assigned
}
