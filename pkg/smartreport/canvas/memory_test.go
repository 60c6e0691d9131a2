package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

type recorder struct {
	moved     []string
	removed   int
	selection []string
}

func (r *recorder) listener() Listener {
	return Listener{
		GeometryChanged: func(id string) { r.moved = append(r.moved, id) },
		Removed:         func() { r.removed++ },
		SelectionChanged: func(id string, ok bool) {
			if !ok {
				id = "-"
			}
			r.selection = append(r.selection, id)
		},
	}
}

func TestMemoryLifecycle(t *testing.T) {
	m := NewMemory(nil)
	rec := &recorder{}
	m.Subscribe(rec.listener())

	h, err := m.CreateOverlay("a", geometry.Rect{Width: 64, Height: 20}, models.Style{BorderColor: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "a", h.OverlayID())

	_, err = m.CreateOverlay("a", geometry.Rect{}, models.Style{})
	assert.ErrorIs(t, err, ErrDuplicateOverlay)

	require.NoError(t, m.SetOverlayText(h, "hello"))
	o, ok := m.Overlay("a")
	require.True(t, ok)
	assert.Equal(t, "hello", o.Text)

	ids, err := m.ListOverlayIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, m.RemoveOverlay("a"))
	assert.Equal(t, 1, rec.removed)
	assert.ErrorIs(t, m.RemoveOverlay("a"), ErrUnknownOverlay)
	assert.ErrorIs(t, m.SetOverlayText(h, "stale"), ErrUnknownOverlay)
	assert.Equal(t, 1, m.CreatedCount())
}

func TestMemoryNotReady(t *testing.T) {
	m := NewMemory(nil)
	m.SetReady(false)

	_, err := m.CreateOverlay("a", geometry.Rect{}, models.Style{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = m.ListOverlayIDs()
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = m.OverlayBounds("a")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMemorySelectionEvents(t *testing.T) {
	m := NewMemory(nil)
	rec := &recorder{}
	m.Subscribe(rec.listener())

	a, err := m.CreateOverlay("a", geometry.Rect{}, models.Style{})
	require.NoError(t, err)
	_, err = m.CreateOverlay("b", geometry.Rect{}, models.Style{})
	require.NoError(t, err)

	require.NoError(t, m.SetOverlaySelected(a, true))
	require.NoError(t, m.SetOverlaySelected(a, true))
	require.NoError(t, m.SetOverlaySelected(a, false))
	require.NoError(t, m.Click("b"))
	require.NoError(t, m.Click(""))
	assert.ErrorIs(t, m.Click("missing"), ErrUnknownOverlay)

	assert.Equal(t, []string{"a", "-", "b", "-"}, rec.selection)
	for _, o := range m.Overlays() {
		assert.False(t, o.Selected, o.ID)
	}
}

func TestMemoryGestures(t *testing.T) {
	m := NewMemory(nil)
	rec := &recorder{}
	unsubscribe := m.Subscribe(rec.listener())

	_, err := m.CreateOverlay("a", geometry.Rect{}, models.Style{})
	require.NoError(t, err)

	moved := geometry.Rect{X: 64, Y: 20, Width: 128, Height: 40}
	require.NoError(t, m.Drag("a", moved))
	bounds, err := m.OverlayBounds("a")
	require.NoError(t, err)
	assert.Equal(t, moved, bounds)
	assert.Equal(t, []string{"a"}, rec.moved)

	unsubscribe()
	require.NoError(t, m.Delete("a"))
	assert.Zero(t, rec.removed)
	assert.Empty(t, m.Overlays())
}

func TestMemoryGridAndCells(t *testing.T) {
	m := NewMemory(nil)
	m.SetColumnWidth(2, 100)
	m.SetRowHeight(0, 30)

	assert.Equal(t, float64(DefaultColumnWidth), m.ColumnWidth(0))
	assert.Equal(t, 100.0, m.ColumnWidth(2))
	assert.Equal(t, 30.0, m.RowHeight(0))
	assert.Equal(t, float64(DefaultRowHeight), m.RowHeight(1))

	_, ok := m.CurrentSelection()
	assert.False(t, ok)

	r := cellref.Range{Row: 1, Col: 1, RowCount: 2, ColCount: 2}
	m.SelectCells(r)
	got, ok := m.CurrentSelection()
	require.True(t, ok)
	assert.Equal(t, r, got)

	m.ClearCells()
	_, ok = m.CurrentSelection()
	assert.False(t, ok)
}
