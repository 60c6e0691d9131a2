package canvas

import (
	"fmt"
	"slices"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// Default grid sizes in pixels.
const (
	DefaultColumnWidth = 64
	DefaultRowHeight   = 20
)

// Overlay is a rectangle drawn by Memory.
type Overlay struct {
	ID       string
	Bounds   geometry.Rect
	Style    models.Style
	Text     string
	Selected bool
}

// OverlayID implements Handle.
func (o *Overlay) OverlayID() string { return o.ID }

// Memory is an in-process Canvas. Notifications are delivered synchronously
// from inside the call that caused them, which is the strictest ordering a
// real widget can produce. It also exposes the user gestures (drag, delete,
// click) that a widget would raise on its own.
//
// Memory is not safe for concurrent use.
type Memory struct {
	sizes   geometry.SizeProvider
	cols    map[int]float64
	rows    map[int]float64
	ready   bool
	order   []string
	byID    map[string]*Overlay
	cells   *cellref.Range
	subs    map[int]Listener
	nextSub int
	created int
}

// NewMemory returns a ready canvas. A nil sizes uses the default grid.
func NewMemory(sizes geometry.SizeProvider) *Memory {
	if sizes == nil {
		sizes = geometry.Uniform{Column: DefaultColumnWidth, Row: DefaultRowHeight}
	}
	return &Memory{
		sizes: sizes,
		cols:  make(map[int]float64),
		rows:  make(map[int]float64),
		ready: true,
		byID:  make(map[string]*Overlay),
		subs:  make(map[int]Listener),
	}
}

// SetReady toggles whether overlay operations succeed.
func (m *Memory) SetReady(ready bool) { m.ready = ready }

// SetColumnWidth overrides the width of one column.
func (m *Memory) SetColumnWidth(col int, width float64) { m.cols[col] = width }

// SetRowHeight overrides the height of one row.
func (m *Memory) SetRowHeight(row int, height float64) { m.rows[row] = height }

func (m *Memory) ColumnWidth(col int) float64 {
	if w, ok := m.cols[col]; ok {
		return w
	}
	return m.sizes.ColumnWidth(col)
}

func (m *Memory) RowHeight(row int) float64 {
	if h, ok := m.rows[row]; ok {
		return h
	}
	return m.sizes.RowHeight(row)
}

func (m *Memory) CreateOverlay(id string, bounds geometry.Rect, style models.Style) (Handle, error) {
	if !m.ready {
		return nil, ErrUnavailable
	}
	if _, ok := m.byID[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOverlay, id)
	}
	o := &Overlay{ID: id, Bounds: bounds, Style: style}
	m.byID[id] = o
	m.order = append(m.order, id)
	m.created++
	return o, nil
}

func (m *Memory) RemoveOverlay(id string) error {
	if !m.ready {
		return ErrUnavailable
	}
	if err := m.remove(id); err != nil {
		return err
	}
	m.emitRemoved()
	return nil
}

func (m *Memory) SetOverlayText(h Handle, text string) error {
	o, err := m.resolve(h)
	if err != nil {
		return err
	}
	o.Text = text
	return nil
}

func (m *Memory) SetOverlaySelected(h Handle, selected bool) error {
	o, err := m.resolve(h)
	if err != nil {
		return err
	}
	if o.Selected == selected {
		return nil
	}
	o.Selected = selected
	if selected {
		m.emitSelection(o.ID, true)
	} else if m.selectedID() == "" {
		m.emitSelection("", false)
	}
	return nil
}

func (m *Memory) OverlayBounds(id string) (geometry.Rect, error) {
	if !m.ready {
		return geometry.Rect{}, ErrUnavailable
	}
	o, ok := m.byID[id]
	if !ok {
		return geometry.Rect{}, fmt.Errorf("%w: %s", ErrUnknownOverlay, id)
	}
	return o.Bounds, nil
}

func (m *Memory) ListOverlayIDs() ([]string, error) {
	if !m.ready {
		return nil, ErrUnavailable
	}
	return slices.Clone(m.order), nil
}

func (m *Memory) CurrentSelection() (cellref.Range, bool) {
	if m.cells == nil {
		return cellref.Range{}, false
	}
	return *m.cells, true
}

func (m *Memory) Subscribe(l Listener) func() {
	id := m.nextSub
	m.nextSub++
	m.subs[id] = l
	return func() { delete(m.subs, id) }
}

// Overlay returns the overlay with id.
func (m *Memory) Overlay(id string) (*Overlay, bool) {
	o, ok := m.byID[id]
	return o, ok
}

// Overlays returns every live overlay in creation order.
func (m *Memory) Overlays() []*Overlay {
	out := make([]*Overlay, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// CreatedCount returns how many overlays have ever been created.
func (m *Memory) CreatedCount() int { return m.created }

// SelectCells sets the cell selection used by drops.
func (m *Memory) SelectCells(r cellref.Range) { m.cells = &r }

// ClearCells removes the cell selection.
func (m *Memory) ClearCells() { m.cells = nil }

// Drag moves or resizes an overlay as a user gesture would.
func (m *Memory) Drag(id string, bounds geometry.Rect) error {
	o, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOverlay, id)
	}
	o.Bounds = bounds
	for _, l := range m.listeners() {
		if l.GeometryChanged != nil {
			l.GeometryChanged(id)
		}
	}
	return nil
}

// Delete removes an overlay as a user pressing delete would.
func (m *Memory) Delete(id string) error {
	if err := m.remove(id); err != nil {
		return err
	}
	m.emitRemoved()
	return nil
}

// Click selects exactly one overlay, or clears overlay selection when id is
// empty, as a user click would.
func (m *Memory) Click(id string) error {
	if id != "" {
		if _, ok := m.byID[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOverlay, id)
		}
	}
	for _, o := range m.byID {
		o.Selected = o.ID == id && id != ""
	}
	m.emitSelection(id, id != "")
	return nil
}

func (m *Memory) remove(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOverlay, id)
	}
	delete(m.byID, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

func (m *Memory) resolve(h Handle) (*Overlay, error) {
	if !m.ready {
		return nil, ErrUnavailable
	}
	o, ok := h.(*Overlay)
	if !ok || o == nil || m.byID[o.ID] != o {
		return nil, ErrUnknownOverlay
	}
	return o, nil
}

func (m *Memory) selectedID() string {
	for _, id := range m.order {
		if m.byID[id].Selected {
			return id
		}
	}
	return ""
}

// listeners snapshots subscribers so handlers may unsubscribe while being
// notified.
func (m *Memory) listeners() []Listener {
	keys := make([]int, 0, len(m.subs))
	for k := range m.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Listener, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.subs[k])
	}
	return out
}

func (m *Memory) emitRemoved() {
	for _, l := range m.listeners() {
		if l.Removed != nil {
			l.Removed()
		}
	}
}

func (m *Memory) emitSelection(id string, ok bool) {
	for _, l := range m.listeners() {
		if l.SelectionChanged != nil {
			l.SelectionChanged(id, ok)
		}
	}
}
