package l5scene

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/banshee-data/handvox/internal/config"
	"github.com/banshee-data/handvox/internal/sculpt/l2gestures"
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
	"github.com/banshee-data/handvox/internal/sculpt/l4intent"
)

// DemoPlatformColor is the palette index used for the demo platform.
const DemoPlatformColor = 6

// Config holds the engine parameters.
type Config struct {
	Bounds       l3space.Bounds
	Palette      []color.RGBA
	HistoryCap   int
	Camera       l3space.CameraTransform
	PitchLimit   float64
	DemoPlatform bool
}

// EngineConfigFromTuning builds engine parameters from the tuning config.
func EngineConfigFromTuning(cfg *config.TuningConfig) (Config, error) {
	bounds, err := l3space.NewBounds(cfg.GetGridMin(), cfg.GetGridMax())
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	palette, err := cfg.GetPalette()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Bounds:     bounds,
		Palette:    palette,
		HistoryCap: cfg.GetHistoryCap(),
		Camera: l3space.CameraTransform{
			Yaw:      cfg.GetCameraYaw(),
			Pitch:    cfg.GetCameraPitch(),
			Distance: cfg.GetCameraDistance(),
		},
		PitchLimit:   cfg.GetPitchLimit(),
		DemoPlatform: cfg.GetDemoPlatform(),
	}, nil
}

// Engine is the voxel scene: grid, palette, camera and history. All
// operations are synchronous and all-or-nothing; a RWMutex lets
// renderers take snapshots from other goroutines.
type Engine struct {
	cfg Config

	mu       sync.RWMutex
	grid     map[l3space.GridCoord]int
	palette  Palette
	history  *History
	camera   l3space.CameraTransform
	cursor   l3space.Cursor
	gesture  l2gestures.Label
	revision uint64
}

// NewEngine validates cfg and builds the initial scene, including the
// demo platform when enabled.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.HistoryCap <= 0 {
		return nil, fmt.Errorf("%w: history_cap must be positive, got %d", config.ErrInvalidConfig, cfg.HistoryCap)
	}
	if cfg.PitchLimit <= 0 || cfg.PitchLimit >= 90 {
		return nil, fmt.Errorf("%w: pitch_limit must be in (0,90), got %v", config.ErrInvalidConfig, cfg.PitchLimit)
	}
	if cfg.Bounds.Min.X > cfg.Bounds.Max.X || cfg.Bounds.Min.Y > cfg.Bounds.Max.Y || cfg.Bounds.Min.Z > cfg.Bounds.Max.Z {
		return nil, fmt.Errorf("%w: grid min %v exceeds max %v", config.ErrInvalidConfig, cfg.Bounds.Min, cfg.Bounds.Max)
	}
	palette, err := NewPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}

	cfg.Camera = cfg.Camera.Rotated(0, 0, cfg.PitchLimit)
	e := &Engine{
		cfg:     cfg,
		grid:    make(map[l3space.GridCoord]int),
		palette: palette,
		history: NewHistory(cfg.HistoryCap),
		camera:  cfg.Camera,
		cursor:  l3space.Cursor{Pos: cfg.Bounds.Center(), Cell: l3space.Floor(cfg.Bounds.Center())},
		gesture: l2gestures.LabelNone,
	}
	if cfg.DemoPlatform {
		e.buildDemoPlatform()
	}
	return e, nil
}

// Apply performs a; it returns false when the action was a no-op.
func (e *Engine) Apply(a l4intent.Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	var changed bool
	switch a.Kind {
	case l4intent.ActionPlace:
		changed = e.place(a.Pos)
	case l4intent.ActionDelete:
		changed = e.remove(a.Pos)
	case l4intent.ActionCyclePalette:
		changed = e.cyclePalette()
	case l4intent.ActionRotateCamera:
		next := e.camera.Rotated(a.DeltaYaw, a.DeltaPitch, e.cfg.PitchLimit)
		changed = next != e.camera
		e.camera = next
	case l4intent.ActionUndo:
		changed = e.undo()
	case l4intent.ActionRedo:
		changed = e.redo()
	case l4intent.ActionReset:
		changed = e.camera != e.cfg.Camera
		e.camera = e.cfg.Camera
	case l4intent.ActionClear:
		changed = e.clear()
	default:
		return false
	}

	if changed {
		e.revision++
		tracef("applied %s rev=%d voxels=%d undo=%d redo=%d",
			a, e.revision, len(e.grid), e.history.UndoDepth(), e.history.RedoDepth())
	} else {
		diagf("no-op %s", a)
	}
	return changed
}

func (e *Engine) place(pos l3space.GridCoord) bool {
	if !e.cfg.Bounds.Contains(pos) {
		return false
	}
	if _, ok := e.grid[pos]; ok {
		return false
	}
	v := Voxel{Pos: pos, Color: e.palette.Index()}
	e.grid[pos] = v.Color
	e.history.Record(Entry{Kind: EntryAdded, Voxel: v})
	return true
}

func (e *Engine) remove(pos l3space.GridCoord) bool {
	c, ok := e.grid[pos]
	if !ok || !e.cfg.Bounds.Contains(pos) {
		return false
	}
	delete(e.grid, pos)
	e.history.Record(Entry{Kind: EntryRemoved, Voxel: Voxel{Pos: pos, Color: c}})
	return true
}

func (e *Engine) cyclePalette() bool {
	from, to := e.palette.Index(), e.palette.next()
	if from == to {
		return false
	}
	e.palette.index = to
	e.history.Record(Entry{Kind: EntryPalette, From: from, To: to})
	return true
}

// clear empties the grid and, when enabled, rebuilds the demo platform.
// The entry holds the net diff so undo restores the exact prior grid.
func (e *Engine) clear() bool {
	before := e.grid
	e.grid = make(map[l3space.GridCoord]int)
	if e.cfg.DemoPlatform {
		e.buildDemoPlatform()
	}
	removed := gridDiff(before, e.grid)
	added := gridDiff(e.grid, before)
	if len(removed) == 0 && len(added) == 0 {
		return false
	}
	e.history.Record(Entry{Kind: EntryCleared, Voxels: removed, Added: added})
	return true
}

// gridDiff returns the voxels of a that b lacks or colours differently,
// sorted by position.
func gridDiff(a, b map[l3space.GridCoord]int) []Voxel {
	var out []Voxel
	for pos, c := range a {
		if bc, ok := b[pos]; !ok || bc != c {
			out = append(out, Voxel{Pos: pos, Color: c})
		}
	}
	sortVoxels(out)
	return out
}

func (e *Engine) undo() bool {
	entry, ok := e.history.Undo()
	if !ok {
		diagf("undo: history empty")
		return false
	}
	switch entry.Kind {
	case EntryAdded:
		delete(e.grid, entry.Voxel.Pos)
	case EntryRemoved:
		e.grid[entry.Voxel.Pos] = entry.Voxel.Color
	case EntryPalette:
		e.palette.index = entry.From
	case EntryCleared:
		for _, v := range entry.Added {
			delete(e.grid, v.Pos)
		}
		for _, v := range entry.Voxels {
			e.grid[v.Pos] = v.Color
		}
	}
	diagf("undo %s", entry.Kind)
	return true
}

func (e *Engine) redo() bool {
	entry, ok := e.history.Redo()
	if !ok {
		diagf("redo: nothing undone")
		return false
	}
	switch entry.Kind {
	case EntryAdded:
		e.grid[entry.Voxel.Pos] = entry.Voxel.Color
	case EntryRemoved:
		delete(e.grid, entry.Voxel.Pos)
	case EntryPalette:
		e.palette.index = entry.To
	case EntryCleared:
		for _, v := range entry.Voxels {
			delete(e.grid, v.Pos)
		}
		for _, v := range entry.Added {
			e.grid[v.Pos] = v.Color
		}
	}
	diagf("redo %s", entry.Kind)
	return true
}

// buildDemoPlatform lays a 5x1x5 slab on the bottom layer, centred,
// clipped to the bounds. Callers record any history.
func (e *Engine) buildDemoPlatform() {
	b := e.cfg.Bounds
	colorIndex := DemoPlatformColor
	if colorIndex >= e.palette.Len() {
		colorIndex = e.palette.Len() - 1
	}
	cx := b.Min.X + (b.Max.X-b.Min.X+1)/2
	cz := b.Min.Z + (b.Max.Z-b.Min.Z+1)/2
	for x := cx - 2; x <= cx+2; x++ {
		for z := cz - 2; z <= cz+2; z++ {
			pos := l3space.GridCoord{X: x, Y: b.Min.Y, Z: z}
			if b.Contains(pos) {
				e.grid[pos] = colorIndex
			}
		}
	}
}

// SetCursor records the latest cursor for snapshots.
func (e *Engine) SetCursor(c l3space.Cursor) {
	e.mu.Lock()
	e.cursor = c
	e.mu.Unlock()
}

// SetGesture records the latest recognised gesture for snapshots.
func (e *Engine) SetGesture(l l2gestures.Label) {
	e.mu.Lock()
	e.gesture = l
	e.mu.Unlock()
}

// Camera returns the current camera transform.
func (e *Engine) Camera() l3space.CameraTransform {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.camera
}

// Bounds returns the working volume.
func (e *Engine) Bounds() l3space.Bounds { return e.cfg.Bounds }

// Voxel returns the palette index at pos.
func (e *Engine) Voxel(pos l3space.GridCoord) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.grid[pos]
	return c, ok
}

// Len returns the number of occupied cells.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.grid)
}

// Revision increments on every state-changing Apply.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// HistoryEntries returns the undo stack, oldest first.
func (e *Engine) HistoryEntries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.Entries()
}
