package input

import "testing"

func TestModifiers(t *testing.T) {
	tc := []struct {
		name    string
		mods    Modifiers
		command bool
		str     string
	}{
		{"none", 0, false, "none"},
		{"ctrl", ModCtrl, true, "ctrl"},
		{"meta", ModMeta, true, "meta"},
		{"shift only", ModShift, false, "shift"},
		{"shift and ctrl", ModShift | ModCtrl, true, "shift+ctrl"},
		{"alt and meta", ModAlt | ModMeta, true, "alt+meta"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mods.Command(); got != tt.command {
				t.Errorf("Command() = %v, want %v", got, tt.command)
			}
			if got := tt.mods.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}

	if !(ModCtrl | ModShift).Has(ModCtrl) {
		t.Error("expected ctrl bit to be set")
	}
	if ModCtrl.Has(ModCtrl | ModShift) {
		t.Error("Has should require every bit")
	}
}

func TestPointSub(t *testing.T) {
	got := Point{10, 4}.Sub(Point{3, 6})
	if got != (Point{7, -2}) {
		t.Errorf("Sub() = %+v", got)
	}
}
