package main

// ==============================
// Combo table
// ==============================
// A combo is an unordered button set. The table is evaluated in order on every
// button-down event; the first combo whose buttons are all currently held wins
// and consumes the whole pressed set, so overlapping chords cannot both fire
// from one physical press sequence.

// ComboID identifies one registered chord.
type ComboID int

const (
	ComboNone ComboID = iota
	ComboReset
	ComboTTY
	ComboOverlay
	ComboRemap
	ComboMakima // registered historically; dispatch is an explicit no-op
)

func (c ComboID) String() string {
	switch c {
	case ComboReset:
		return "reset"
	case ComboTTY:
		return "tty"
	case ComboOverlay:
		return "overlay"
	case ComboRemap:
		return "remap"
	case ComboMakima:
		return "makima"
	default:
		return "none"
	}
}

// combo couples an ID with its button set.
type combo struct {
	id      ComboID
	buttons []uint16
}

// comboTable is the fixed, priority-ordered chord registry.
var comboTable = []combo{
	{ComboReset, []uint16{BTN_TL, BTN_TR, BTN_MODE}},
	{ComboTTY, []uint16{BTN_MODE, BTN_SOUTH}},
	{ComboOverlay, []uint16{BTN_MODE, BTN_WEST}},
	{ComboRemap, []uint16{BTN_MODE, BTN_START}},
	{ComboMakima, []uint16{BTN_MODE, BTN_SELECT}},
}

// matchCombo returns the first registered combo fully contained in pressed.
func matchCombo(pressed map[uint16]struct{}) (ComboID, bool) {
	for _, c := range comboTable {
		held := true
		for _, b := range c.buttons {
			if _, ok := pressed[b]; !ok {
				held = false
				break
			}
		}
		if held {
			return c.id, true
		}
	}
	return ComboNone, false
}
