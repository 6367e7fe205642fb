package shell

import "github.com/banshee-data/handvox/internal/sculpt/l4intent"

// Binding ties a key to a synthetic action or to quitting.
type Binding struct {
	Key    string
	Action l4intent.Action
	Quit   bool
}

// Bindings is the keyboard map.
var Bindings = []Binding{
	{Key: "Q", Quit: true},
	{Key: "Escape", Quit: true},
	{Key: "Z", Action: l4intent.Undo()},
	{Key: "Y", Action: l4intent.Redo()},
	{Key: "C", Action: l4intent.CyclePalette()},
	{Key: "R", Action: l4intent.Reset()},
	{Key: "X", Action: l4intent.Clear()},
}

// Lookup finds the binding for a key name.
func Lookup(key string) (Binding, bool) {
	for _, b := range Bindings {
		if b.Key == key {
			return b, true
		}
	}
	return Binding{}, false
}

// PressedKeys returns the bound keys for which pressed reports true, in
// Bindings order, so keys pressed in the same tick apply deterministically.
func PressedKeys(pressed func(key string) bool) []string {
	var out []string
	for _, b := range Bindings {
		if pressed(b.Key) {
			out = append(out, b.Key)
		}
	}
	return out
}
