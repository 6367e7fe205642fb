package l4intent

import (
	"fmt"

	"github.com/banshee-data/handvox/internal/sculpt/l3space"
)

// ActionKind names an edit or view operation.
type ActionKind string

const (
	ActionNone         ActionKind = "none"
	ActionPlace        ActionKind = "place"
	ActionDelete       ActionKind = "delete"
	ActionCyclePalette ActionKind = "cycle_palette"
	ActionRotateCamera ActionKind = "rotate_camera"
	ActionUndo         ActionKind = "undo"
	ActionRedo         ActionKind = "redo"
	ActionReset        ActionKind = "reset"
	ActionClear        ActionKind = "clear"
)

// ActionKinds lists every kind except ActionNone.
var ActionKinds = []ActionKind{
	ActionPlace, ActionDelete, ActionCyclePalette, ActionRotateCamera,
	ActionUndo, ActionRedo, ActionReset, ActionClear,
}

// Valid reports whether k is a known kind, including ActionNone.
func (k ActionKind) Valid() bool {
	if k == ActionNone {
		return true
	}
	for _, known := range ActionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Action is one discrete request to the scene engine. Pos is set for
// Place and Delete; the deltas (degrees) for RotateCamera.
type Action struct {
	Kind       ActionKind
	Pos        l3space.GridCoord
	DeltaYaw   float64
	DeltaPitch float64
}

// None requests nothing.
func None() Action { return Action{Kind: ActionNone} }

// Place requests a voxel at pos in the current palette color.
func Place(pos l3space.GridCoord) Action { return Action{Kind: ActionPlace, Pos: pos} }

// Delete requests removal of the voxel at pos.
func Delete(pos l3space.GridCoord) Action { return Action{Kind: ActionDelete, Pos: pos} }

// CyclePalette advances the active palette color.
func CyclePalette() Action { return Action{Kind: ActionCyclePalette} }

// RotateCamera turns the view by the given yaw and pitch deltas in degrees.
func RotateCamera(dYaw, dPitch float64) Action {
	return Action{Kind: ActionRotateCamera, DeltaYaw: dYaw, DeltaPitch: dPitch}
}

// Undo reverts the newest recorded edit.
func Undo() Action { return Action{Kind: ActionUndo} }

// Redo reapplies the newest undone edit.
func Redo() Action { return Action{Kind: ActionRedo} }

// Reset restores the initial camera orientation.
func Reset() Action { return Action{Kind: ActionReset} }

// Clear removes every voxel as a single undoable edit.
func Clear() Action { return Action{Kind: ActionClear} }

// IsNone reports whether the action requests nothing.
func (a Action) IsNone() bool { return a.Kind == ActionNone || a.Kind == "" }

func (a Action) String() string {
	switch a.Kind {
	case ActionPlace, ActionDelete:
		return fmt.Sprintf("%s%s", a.Kind, a.Pos)
	case ActionRotateCamera:
		return fmt.Sprintf("%s(%.2f,%.2f)", a.Kind, a.DeltaYaw, a.DeltaPitch)
	case "":
		return string(ActionNone)
	default:
		return string(a.Kind)
	}
}
