package game

// PlayerStat is one leaderboard row.
type PlayerStat struct {
	Name  string `json:"name"`
	Army  int    `json:"army"`
	Tiles int    `json:"tiles"`
}

// Stats is the per-tick aggregate shipped with every snapshot.
type Stats struct {
	Turn    int                `json:"turn"`
	Players map[int]PlayerStat `json:"players"`
	Colors  map[int]string     `json:"colors"`
}

// Stats recomputes army and tile totals per slot by a full board scan.
func (g *Game) Stats() Stats {
	stats := Stats{
		Turn:    g.turn,
		Players: make(map[int]PlayerStat, len(g.occupied)),
		Colors:  make(map[int]string, len(g.occupied)),
	}
	totals := make(map[int]PlayerStat)
	if g.board != nil {
		for x := 0; x < g.size; x++ {
			for y := 0; y < g.size; y++ {
				t := g.board.Tiles[x][y]
				if t.Owner == NeutralOwner {
					continue
				}
				row := totals[t.Owner]
				row.Tiles++
				row.Army += t.Army
				totals[t.Owner] = row
			}
		}
	}
	for _, slot := range g.Slots() {
		row := totals[slot]
		row.Name = g.names[slot]
		stats.Players[slot] = row
		stats.Colors[slot] = ColorForSlot(slot)
	}
	return stats
}
