package game

// MoveResult reports what a resolved move did to the room.
type MoveResult struct {
	// Applied is false when the command failed a legality check and the
	// board was left untouched.
	Applied bool
	// DefeatedSlot is the slot whose capital was captured by this move,
	// or 0. Its entire territory has been reassigned to the attacker.
	DefeatedSlot int
	// GameOver and Winner reflect the win evaluation run after the move.
	GameOver bool
	Winner   int
}

// MoveArmy validates and resolves a single move command against the
// current board. Illegal commands are silently ignored: the board is not
// touched and no result is reported beyond Applied == false.
func (g *Game) MoveArmy(slot int, src, dst Coord) MoveResult {
	if !g.started || g.over {
		return MoveResult{}
	}
	if !g.board.InBounds(src) || !g.board.InBounds(dst) {
		return MoveResult{}
	}
	if abs(src.X-dst.X)+abs(src.Y-dst.Y) != 1 {
		return MoveResult{}
	}
	source := g.board.At(src)
	target := g.board.At(dst)
	if source.Owner != slot || source.Army <= 1 {
		return MoveResult{}
	}
	if target.Type == TileMountain {
		return MoveResult{}
	}

	var moving int
	if source.IsSplit {
		moving = (source.Army - 1) / 2
		source.IsSplit = false
	} else {
		moving = source.Army - 1
	}
	if moving < 1 {
		return MoveResult{}
	}
	source.Army -= moving

	res := MoveResult{Applied: true}
	switch {
	case target.Owner == NeutralOwner && target.IsCity:
		if moving >= target.CaptureCost {
			target.Owner = slot
			target.Army = moving - target.CaptureCost
			target.CaptureCost = 0
		} else {
			target.CaptureCost -= moving
			if target.CaptureCost < 1 {
				target.CaptureCost = 1
			}
		}
	case target.Owner == NeutralOwner:
		target.Owner = slot
		target.Army = moving
	case target.Owner == slot:
		target.Army += moving
	default:
		defender := target.Army
		defenderOwner := target.Owner
		switch {
		case moving > defender:
			target.Owner = slot
			target.Army = moving - defender
			if target.IsCapital {
				g.defeatSlot(defenderOwner, slot)
				target.IsCapital = false
				target.Type = TileCity
				res.DefeatedSlot = defenderOwner
			}
		case moving < defender:
			target.Army = defender - moving
		default:
			// Exact tie: the tile drops to zero army but is not captured.
			target.Army = 0
		}
	}

	win := g.EvaluateWin()
	res.GameOver = win.Over
	res.Winner = win.Winner
	return res
}

// defeatSlot reassigns every tile of the defeated slot to the attacker,
// demoting any capitals among them to plain cities.
func (g *Game) defeatSlot(defeated, attacker int) {
	for x := 0; x < g.board.Size; x++ {
		for y := 0; y < g.board.Size; y++ {
			t := g.board.Tiles[x][y]
			if t.Owner != defeated {
				continue
			}
			t.Owner = attacker
			if t.IsCapital {
				t.IsCapital = false
				t.Type = TileCity
			}
		}
	}
	g.log.Info().Int("slot", defeated).Int("by", attacker).Msg("player defeated")
}

// SplitArmy marks the tile so the next move from it carries only half its
// army. Setting the flag twice before a move consumes it is idempotent.
// Returns false when the command was ignored.
func (g *Game) SplitArmy(slot int, c Coord) bool {
	if !g.started || g.over || !g.board.InBounds(c) {
		return false
	}
	t := g.board.At(c)
	if t.Owner != slot || t.Army <= 1 {
		return false
	}
	t.IsSplit = true
	return true
}
