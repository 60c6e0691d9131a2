package smartreport

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/canvas"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/conflict"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/payload"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/schedule"
)

// Coordinator owns the component list and keeps one canvas overlay per
// positioned component.
//
// The list is the source of truth for which components exist and what they
// contain; an overlay's pixel bounds are the source of truth for where a
// component sits while the user drags it. All methods, scheduled callbacks
// and canvas notifications must run on one goroutine.
type Coordinator struct {
	canvas canvas.Canvas
	sched  schedule.Scheduler
	opts   Options
	log    zerolog.Logger

	templateID string
	version    string
	components []models.Component

	// Parallel containers keyed by component id, updated together.
	snapshots map[string]models.Component
	handles   map[string]canvas.Handle

	created  idSet    // ids with a live overlay created by us
	updating inflight // ids between overlay removal and recreation
	orphaned idSet    // ids whose overlay removal failed; retried on reconcile

	selectedID   string
	selecting    bool // a selection push is in flight
	selectionSeq uint64

	warning    string
	warningSeq uint64

	unsubscribe func()
}

// New creates a Coordinator and subscribes it to cv's notifications.
func New(cv canvas.Canvas, sched schedule.Scheduler, opts Options) *Coordinator {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	c := &Coordinator{
		canvas:    cv,
		sched:     sched,
		opts:      opts,
		log:       opts.Logger.With().Str("component", "coordinator").Logger(),
		snapshots: make(map[string]models.Component),
		handles:   make(map[string]canvas.Handle),
		created:   make(idSet),
		updating:  make(inflight),
		orphaned:  make(idSet),
	}
	c.unsubscribe = cv.Subscribe(canvas.Listener{
		GeometryChanged:  c.handleGeometryChanged,
		Removed:          c.handleRemoved,
		SelectionChanged: c.handleSelectionChanged,
	})
	return c
}

// Close stops listening to the canvas. Overlays are left in place.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Components returns a copy of the component list.
func (c *Coordinator) Components() []models.Component {
	out := make([]models.Component, len(c.components))
	for i, comp := range c.components {
		out[i] = comp.Clone()
	}
	return out
}

// Component returns the component with id.
func (c *Coordinator) Component(id string) (models.Component, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return models.Component{}, false
	}
	return c.components[i].Clone(), true
}

// Selected returns the selected component.
func (c *Coordinator) Selected() (models.Component, bool) {
	if c.selectedID == "" {
		return models.Component{}, false
	}
	return c.Component(c.selectedID)
}

// Warning returns the current conflict warning, or "" once it has expired.
func (c *Coordinator) Warning() string {
	return c.warning
}

// HasOverlay reports whether the component with id currently has an overlay.
func (c *Coordinator) HasOverlay(id string) bool {
	_, ok := c.handles[id]
	return ok
}

// Drop places a new component of type t where the user released a drag at
// pixel (x, y). A non-empty cell selection on the canvas wins over the drop
// point; otherwise the component gets its type's default size anchored at
// the cell under the point. The new component becomes the selection.
func (c *Coordinator) Drop(t models.ComponentType, x, y float64) (models.Component, error) {
	t, err := checkType(t)
	if err != nil {
		return models.Component{}, err
	}

	target, ok := c.canvas.CurrentSelection()
	if !ok || !target.Valid() {
		row, col := geometry.CellAt(x, y, c.canvas)
		size := models.DefaultSize(t)
		target = cellref.Range{Row: row, Col: col, RowCount: size.Rows, ColCount: size.Cols}
	}

	if err := c.checkPlacement(target, ""); err != nil {
		return models.Component{}, err
	}

	comp := models.Component{
		ID:       c.opts.NewID(),
		Location: cellref.Format(target),
		Type:     t,
		Name:     c.defaultName(t),
	}
	c.components = append(c.components, comp)
	c.commit(c.opts.CreateDelay)
	c.setSelected(comp.ID)
	return comp.Clone(), nil
}

// Add appends a component built by the caller. A missing id is generated
// and a missing name defaults the way Drop names components. The location is
// normalised and, when it parses, must not overlap an existing component.
func (c *Coordinator) Add(comp models.Component) (models.Component, error) {
	comp = comp.Clone()
	typ, err := checkType(comp.Type)
	if err != nil {
		return models.Component{}, err
	}
	comp.Type = typ
	if comp.ID == "" {
		comp.ID = c.opts.NewID()
	}
	if c.indexOf(comp.ID) >= 0 {
		return models.Component{}, fmt.Errorf("%w: %s", ErrDuplicateComponent, comp.ID)
	}
	comp.Location = cellref.Normalize(comp.Location)
	if comp.Name == "" {
		comp.Name = c.defaultName(comp.Type)
	}

	if r, err := cellref.Parse(comp.Location); err == nil {
		if err := c.checkPlacement(r, ""); err != nil {
			return models.Component{}, err
		}
	} else {
		c.log.Debug().Str("id", comp.ID).Str("location", comp.Location).Msg("adding component without a position")
	}

	c.components = append(c.components, comp)
	c.commit(c.opts.CreateDelay)
	return comp.Clone(), nil
}

// Update replaces a component's properties and redraws its overlay. A moved
// location that overlaps another component is rejected and nothing changes.
func (c *Coordinator) Update(updated models.Component) error {
	i := c.indexOf(updated.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, updated.ID)
	}
	typ, err := checkType(updated.Type)
	if err != nil {
		return err
	}
	updated = updated.Clone()
	updated.Type = typ
	updated.Location = cellref.Normalize(updated.Location)

	if updated.Location != c.components[i].Location {
		if r, err := cellref.Parse(updated.Location); err == nil {
			if err := c.checkPlacement(r, updated.ID); err != nil {
				return err
			}
		}
	}

	id := updated.ID
	c.components[i] = updated

	// Phase one: drop the old overlay while marked, so the canvas removal
	// notification is not mistaken for a user deletion.
	c.updating.begin(id)
	c.removeOverlay(id)
	c.commit(c.opts.CreateDelay)

	// Phase two: recreate from whatever the list holds by then.
	c.sched.After(c.opts.RecreateDelay, func() {
		c.ensureOverlay(id)
		c.updating.done(id)
	})
	return nil
}

// Delete removes a component and its overlay.
func (c *Coordinator) Delete(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	c.removeOverlay(id)
	c.components = slices.Delete(c.components, i, i+1)
	c.commit(c.opts.CreateDelay)
	if c.selectedID == id {
		c.setSelected("")
	}
	return nil
}

// Select makes id the selected component and mirrors it on the canvas. An
// empty id clears the selection.
func (c *Coordinator) Select(id string) error {
	if id != "" && c.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	c.setSelected(id)
	return nil
}

// Clear removes every component and overlay.
func (c *Coordinator) Clear() {
	for _, id := range sortedKeys(c.handles) {
		c.removeOverlay(id)
	}
	c.created.reset()
	c.components = nil
	c.commit(c.opts.CreateDelay)
	c.setSelected("")
}

// Import replaces the layout with a JSON configuration payload. An invalid
// payload is returned as a *payload.ImportFormatError and leaves the current
// layout untouched.
func (c *Coordinator) Import(data []byte) error {
	cfg, err := payload.Decode(data)
	if err != nil {
		return err
	}
	c.LoadConfig(cfg)
	return nil
}

// LoadConfig replaces the layout with an already decoded document.
func (c *Coordinator) LoadConfig(cfg models.Config) {
	c.templateID = cfg.TemplateID
	c.version = cfg.Version
	c.Load(cfg.ComponentList)
}

// Load replaces the component list. Ids are generated where missing and
// locations normalised. Overlapping entries are kept, since the document
// was authored as a whole, but raise a warning.
func (c *Coordinator) Load(components []models.Component) {
	next := make([]models.Component, 0, len(components))
	seen := make(idSet, len(components))
	for _, comp := range components {
		comp = comp.Clone()
		if comp.ID == "" || seen.has(comp.ID) {
			comp.ID = c.opts.NewID()
		}
		seen.add(comp.ID)
		comp.Location = cellref.Normalize(comp.Location)
		next = append(next, comp)
	}

	for _, id := range sortedKeys(c.handles) {
		c.removeOverlay(id)
	}
	c.created.reset()
	c.components = next
	c.commit(c.opts.ImportDelay)
	c.setSelected("")

	if pairs := conflict.Pairs(next); len(pairs) > 0 {
		r, _ := cellref.Parse(pairs[0].B.Location)
		c.warn(&ConflictError{Range: r, With: pairs[0].A})
	}
}

// Export returns the layout document.
func (c *Coordinator) Export() models.Config {
	return models.Config{
		TemplateID:    c.templateID,
		Version:       c.version,
		ComponentList: c.Components(),
	}
}

// WithoutOverlays removes every overlay, runs fn, then schedules the
// overlays to be redrawn whether or not fn failed. Use it to serialise the
// sheet without the editing rectangles.
func (c *Coordinator) WithoutOverlays(fn func() error) error {
	ids := sortedKeys(c.handles)
	for _, id := range ids {
		c.updating.begin(id)
		c.removeOverlay(id)
	}

	err := fn()

	c.sched.After(c.opts.RecreateDelay, func() {
		for _, id := range ids {
			c.updating.done(id)
		}
		c.reconcile()
	})
	return err
}

// Resync schedules overlay creation for every component missing one, for
// example once the canvas has finished initialising.
func (c *Coordinator) Resync() {
	c.sched.After(0, c.reconcile)
}

// checkType resolves t to one of models.ComponentTypes.
func checkType(t models.ComponentType) (models.ComponentType, error) {
	typ, ok := models.ParseComponentType(string(t))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return typ, nil
}

func (c *Coordinator) defaultName(t models.ComponentType) string {
	return fmt.Sprintf("%s %d", t.DisplayName(), len(c.components)+1)
}

func (c *Coordinator) indexOf(id string) int {
	return slices.IndexFunc(c.components, func(comp models.Component) bool { return comp.ID == id })
}

// checkPlacement rejects r when it overlaps a component other than excludeID.
func (c *Coordinator) checkPlacement(r cellref.Range, excludeID string) error {
	other, hit := conflict.FindConflict(r, c.components, excludeID)
	if !hit {
		return nil
	}
	err := &ConflictError{Range: r, With: other}
	c.warn(err)
	return err
}

// commit publishes a list change and schedules overlay creation for any
// component still missing one.
func (c *Coordinator) commit(delay time.Duration) {
	if c.opts.OnComponentsChange != nil {
		c.opts.OnComponentsChange(c.Components())
	}
	c.sched.After(delay, c.reconcile)
}

func (c *Coordinator) reconcile() {
	for _, id := range sortedKeys(c.orphaned) {
		if !c.updating.has(id) {
			c.dropOrphan(id)
		}
	}
	for _, comp := range c.components {
		if c.updating.has(comp.ID) {
			continue
		}
		c.ensureOverlay(comp.ID)
	}
}

// ensureOverlay creates the overlay for id unless one exists, the component
// has gone, or its location does not parse.
func (c *Coordinator) ensureOverlay(id string) {
	if c.created.has(id) {
		return
	}
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	comp := c.components[i]
	if !c.dropOrphan(id) {
		return
	}

	r, err := cellref.Parse(comp.Location)
	if err != nil {
		c.log.Debug().Err(err).Str("id", id).Msg("skipping overlay for unpositioned component")
		return
	}

	bounds := geometry.Bounds(r, c.canvas)
	h, err := c.canvas.CreateOverlay(id, bounds, comp.EffectiveStyle())
	if errors.Is(err, canvas.ErrDuplicateOverlay) {
		// An overlay we no longer track still carries the id.
		c.orphaned.add(id)
		if !c.dropOrphan(id) {
			return
		}
		h, err = c.canvas.CreateOverlay(id, bounds, comp.EffectiveStyle())
	}
	if err != nil {
		c.canvasFailed("create", id, err)
		return
	}
	if err := c.canvas.SetOverlayText(h, comp.Name); err != nil {
		c.canvasFailed("text", id, err)
	}

	c.handles[id] = h
	c.snapshots[id] = comp.Clone()
	c.created.add(id)

	if c.selectedID == id {
		c.pushSelection()
	}
}

// removeOverlay forgets the overlay for id, then asks the canvas to drop it.
// Bookkeeping goes first so a synchronous removal notification finds nothing
// unexpected. An overlay the canvas failed to drop is orphaned until a later
// reconcile removes it.
func (c *Coordinator) removeOverlay(id string) {
	_, ok := c.handles[id]
	delete(c.handles, id)
	delete(c.snapshots, id)
	c.created.remove(id)
	if !ok {
		return
	}
	if err := c.canvas.RemoveOverlay(id); err != nil && !errors.Is(err, canvas.ErrUnknownOverlay) {
		c.canvasFailed("remove", id, err)
		c.orphaned.add(id)
	}
}

// dropOrphan retries the removal of an orphaned overlay. It reports whether
// the canvas is clear of it.
func (c *Coordinator) dropOrphan(id string) bool {
	if !c.orphaned.has(id) {
		return true
	}
	if err := c.canvas.RemoveOverlay(id); err != nil && !errors.Is(err, canvas.ErrUnknownOverlay) {
		c.canvasFailed("remove", id, err)
		return false
	}
	c.orphaned.remove(id)
	c.log.Debug().Str("id", id).Msg("removed orphaned overlay")
	return true
}

func (c *Coordinator) setSelected(id string) {
	changed := c.selectedID != id
	c.selectedID = id
	c.pushSelection()
	if changed && c.opts.OnSelect != nil {
		sel, ok := c.Selected()
		c.opts.OnSelect(sel, ok)
	}
}

// pushSelection mirrors selectedID onto the canvas. Notifications the canvas
// raises in response are ignored until the release tick of the latest push.
func (c *Coordinator) pushSelection() {
	c.selectionSeq++
	seq := c.selectionSeq
	c.selecting = true

	for _, id := range sortedKeys(c.handles) {
		if err := c.canvas.SetOverlaySelected(c.handles[id], false); err != nil {
			c.canvasFailed("select", id, err)
		}
	}
	if h, ok := c.handles[c.selectedID]; ok {
		if err := c.canvas.SetOverlaySelected(h, true); err != nil {
			c.canvasFailed("select", c.selectedID, err)
		}
	}

	c.sched.After(c.opts.SelectionRelease, func() {
		if c.selectionSeq == seq {
			c.selecting = false
		}
	})
}

// warn replaces the current warning. Only the latest warning's expiry
// clears it.
func (c *Coordinator) warn(err *ConflictError) {
	msg := err.Error()
	c.warning = msg
	c.warningSeq++
	seq := c.warningSeq
	c.log.Info().Str("range", cellref.Format(err.Range)).Str("with", err.With.ID).Msg("placement conflict")

	if c.opts.OnConflict != nil {
		c.opts.OnConflict(msg)
	}
	c.sched.After(c.opts.WarningTTL, func() {
		if c.warningSeq == seq {
			c.warning = ""
		}
	})
}

func (c *Coordinator) clearWarning() {
	if c.warning == "" {
		return
	}
	c.warning = ""
	c.warningSeq++
}

func (c *Coordinator) canvasFailed(op, id string, err error) {
	c.log.Warn().Err(NewCanvasError(op, id, err)).Str("op", op).Str("id", id).Msg("canvas operation skipped")
}

// recoverEvent keeps a panicking canvas callback from unwinding into the
// widget's event loop.
func (c *Coordinator) recoverEvent(event string) {
	if r := recover(); r != nil {
		c.log.Error().Str("event", event).Interface("panic", r).Msg("canvas event handler failed")
	}
}

// handleGeometryChanged re-derives a component's location from its dragged
// overlay. A conflicting move is still committed, because the canvas
// already shows it, and only raises a warning.
func (c *Coordinator) handleGeometryChanged(id string) {
	defer c.recoverEvent("geometry-changed")

	snap, ok := c.snapshots[id]
	if !ok {
		return
	}
	bounds, err := c.canvas.OverlayBounds(id)
	if err != nil {
		c.canvasFailed("bounds", id, err)
		return
	}

	r := geometry.SnapRect(bounds, c.canvas)
	location := cellref.Format(r)
	if location == snap.Location {
		return
	}

	if other, hit := conflict.FindConflict(r, c.components, id); hit {
		c.warn(&ConflictError{Range: r, With: other})
	} else {
		c.clearWarning()
	}

	snap.Location = location
	c.snapshots[id] = snap
	if i := c.indexOf(id); i >= 0 {
		c.components[i].Location = location
	}
	c.commit(c.opts.CreateDelay)
}

func (c *Coordinator) handleRemoved() {
	defer c.recoverEvent("removed")
	c.sweepRemoved()
}

// sweepRemoved deletes every component whose overlay vanished from the
// canvas outside of an update cycle.
func (c *Coordinator) sweepRemoved() {
	ids, err := c.canvas.ListOverlayIDs()
	if err != nil {
		c.canvasFailed("list", "", err)
		return
	}
	live := make(idSet, len(ids))
	for _, id := range ids {
		live.add(id)
	}

	var gone []string
	for _, id := range sortedKeys(c.handles) {
		if !live.has(id) && !c.updating.has(id) {
			gone = append(gone, id)
		}
	}
	if len(gone) == 0 {
		return
	}

	clearSelection := false
	for _, id := range gone {
		c.log.Debug().Str("id", id).Msg("overlay removed on canvas")
		delete(c.handles, id)
		delete(c.snapshots, id)
		c.created.remove(id)
		if i := c.indexOf(id); i >= 0 {
			c.components = slices.Delete(c.components, i, i+1)
		}
		if c.selectedID == id {
			clearSelection = true
		}
	}
	c.commit(c.opts.CreateDelay)
	if clearSelection {
		c.setSelected("")
	}
}

func (c *Coordinator) handleSelectionChanged(id string, ok bool) {
	defer c.recoverEvent("selection-changed")
	if c.selecting {
		return
	}

	c.sweepRemoved()

	if ok {
		if _, known := c.snapshots[id]; known && c.HasOverlay(id) {
			c.setSelected(id)
		}
		return
	}
	if c.selectedID != "" && c.HasOverlay(c.selectedID) {
		c.setSelected("")
	}
}
