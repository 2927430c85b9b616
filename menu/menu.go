// Package menu models and renders the right-click context menu overlay.
//
// Rendering is a single pure code path shared by both render backends:
// the menu is drawn into its own premultiplied BGRA buffer, and the
// backend composites that buffer over the frame at the menu rect.
package menu

// Action identifies what a menu item does when clicked.
type Action int

const (
	ActionNone Action = iota
	ActionClose
	ActionCopy
	ActionOpacityUp
	ActionOpacityDown
	ActionToggleScaleMode
)

// Item is one selectable menu row.
type Item struct {
	Label  string
	Action Action
}

// Fixed menu geometry in surface pixels.
const (
	RowHeight = 25
	Width     = 180
)

// Items returns the menu rows for the current scale mode. The toggle
// label reflects the active mode.
func Items(keepAspect bool) []Item {
	scaleLabel := "Scale: Free"
	if keepAspect {
		scaleLabel = "Scale: Keep Ratio"
	}
	return []Item{
		{Label: "Close", Action: ActionClose},
		{Label: "Copy to Clipboard", Action: ActionCopy},
		{Label: "Opacity +", Action: ActionOpacityUp},
		{Label: "Opacity -", Action: ActionOpacityDown},
		{Label: scaleLabel, Action: ActionToggleScaleMode},
	}
}

// Model is the menu's presentation state. X, Y is the top-left corner in
// surface coordinates; Hovered is the highlighted row index or -1.
type Model struct {
	X, Y       int
	Hovered    int
	KeepAspect bool

	// FontSize is the label size in pixels. Zero means DefaultFontSize.
	FontSize float64
}

// DefaultFontSize is the label size used when Model.FontSize is zero.
const DefaultFontSize = 14

// NewModel returns a menu model opened at the given surface position.
func NewModel(x, y int, keepAspect bool) *Model {
	return &Model{X: x, Y: y, Hovered: -1, KeepAspect: keepAspect}
}

// Height returns the pixel height of the rendered menu.
func (m *Model) Height() int {
	return len(Items(m.KeepAspect)) * RowHeight
}

// ClampTo moves the menu so it lies fully inside a vw x vh viewport.
func (m *Model) ClampTo(vw, vh int) {
	if m.X+Width > vw {
		m.X = vw - Width
	}
	if m.Y+m.Height() > vh {
		m.Y = vh - m.Height()
	}
	if m.X < 0 {
		m.X = 0
	}
	if m.Y < 0 {
		m.Y = 0
	}
}

// ItemAt returns the row index under the surface coordinate (x, y), or
// -1 when the point is outside the menu.
func (m *Model) ItemAt(x, y int) int {
	lx, ly := x-m.X, y-m.Y
	if lx < 0 || lx >= Width || ly < 0 || ly >= m.Height() {
		return -1
	}
	return ly / RowHeight
}

// Contains reports whether the surface coordinate lies inside the menu.
func (m *Model) Contains(x, y int) bool {
	return m.ItemAt(x, y) >= 0
}
