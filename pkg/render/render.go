package render

import "github.com/matzehuels/kintree/pkg/layout"

// Handler receives the chart operations produced by pointer input.
type Handler interface {
	OnNodeClick(id string)
	OnNodeDragStart(id string)
	// OnNodeDrag reports the pointer offset from where the drag started.
	OnNodeDrag(id string, dx, dy float64)
	// OnNodeDragEnd commits the card's final top-left position.
	OnNodeDragEnd(id string, at layout.Point)
	OnNodeCollapseToggle(id string)
}

// DragCanceler is implemented by handlers that keep a drag preview and need
// to drop it when a session is abandoned.
type DragCanceler interface {
	OnNodeDragCancel(id string)
}

// Renderer encodes a layout in one output format.
type Renderer interface {
	Render(l *layout.Layout) ([]byte, error)
	ContentType() string
	Format() string
}
