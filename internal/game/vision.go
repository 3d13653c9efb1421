package game

// VisionFor returns the set of coordinates the given slot can currently
// observe: every tile it owns plus the full 8-neighbourhood of each,
// clipped to the grid. It is recomputed from scratch on every call so
// ownership changes can never leave stale entries behind.
func VisionFor(b *Board, slot int) map[Coord]struct{} {
	vision := make(map[Coord]struct{})
	for x := 0; x < b.Size; x++ {
		for y := 0; y < b.Size; y++ {
			if b.Tiles[x][y].Owner != slot {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					c := Coord{X: x + dx, Y: y + dy}
					if b.InBounds(c) {
						vision[c] = struct{}{}
					}
				}
			}
		}
	}
	return vision
}

// FullVision returns every coordinate of a size×size grid. Sent to
// defeated players and on game over.
func FullVision(size int) map[Coord]struct{} {
	vision := make(map[Coord]struct{}, size*size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			vision[Coord{X: x, Y: y}] = struct{}{}
		}
	}
	return vision
}
