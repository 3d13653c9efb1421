package game

// playerColors is cycled by slot index, so a slot keeps its colour from
// the lobby through the whole game.
var playerColors = []string{
	"rgb(255, 0, 0)",
	"rgb(39, 146, 255)",
	"rgb(0, 128, 0)",
	"rgb(0, 128, 128)",
	"rgb(250, 140, 1)",
	"rgb(240, 50, 230)",
	"rgb(128, 0, 128)",
	"rgb(155, 1, 1)",
	"rgb(179, 172, 50)",
	"rgb(154, 94, 36)",
	"rgb(16, 49, 255)",
	"rgb(89, 76, 165)",
	"rgb(133, 169, 28)",
	"rgb(255, 102, 104)",
	"rgb(180, 127, 202)",
	"rgb(180, 153, 113)",
}

// ColorForSlot returns the display colour assigned to a slot.
func ColorForSlot(slot int) string {
	return playerColors[(slot-1)%len(playerColors)]
}
