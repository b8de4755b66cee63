package chart

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/api"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/notify"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/render"
)

// Backend is the subset of the person API the coordinator needs.
// *api.Client implements it.
type Backend interface {
	FetchNetwork(ctx context.Context, id string) ([]person.Person, error)
	Search(ctx context.Context, q api.Query) ([]person.Person, error)
	Create(ctx context.Context, p person.Person) (string, error)
	Update(ctx context.Context, p person.Person) (person.Person, error)
	UploadImage(ctx context.Context, up api.Upload) (api.Image, error)
}

var _ Backend = (*api.Client)(nil)

// Options configures a [Coordinator].
type Options struct {
	Layout  layout.Options
	Logger  *log.Logger
	Notices *notify.Center
}

// Coordinator serializes chart mutations and backend calls.
type Coordinator struct {
	// ctx is used for backend calls triggered by pointer gestures, which
	// carry no context of their own.
	ctx     context.Context
	backend Backend
	logger  *log.Logger
	notices *notify.Center

	mu    sync.Mutex
	chart *Chart

	busy atomic.Int32

	lmu       sync.Mutex
	listeners []func()
}

var (
	_ render.Handler      = (*Coordinator)(nil)
	_ render.DragCanceler = (*Coordinator)(nil)
)

// NewCoordinator returns a coordinator over an empty chart. backend may be
// nil for offline use; operations that need it then fail with UNSUPPORTED.
func NewCoordinator(ctx context.Context, backend Backend, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Notices == nil {
		opts.Notices = notify.New(0)
	}
	return &Coordinator{
		ctx:     ctx,
		backend: backend,
		logger:  opts.Logger,
		notices: opts.Notices,
		chart:   New(opts.Layout, opts.Logger),
	}
}

// OnChange registers fn to run after every mutation, outside the lock.
func (c *Coordinator) OnChange(fn func()) {
	c.lmu.Lock()
	c.listeners = append(c.listeners, fn)
	c.lmu.Unlock()
}

func (c *Coordinator) changed() {
	c.lmu.Lock()
	fns := append([]func(){}, c.listeners...)
	c.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// mutate runs fn under the lock and notifies listeners when fn succeeds.
func (c *Coordinator) mutate(fn func(*Chart) error) error {
	c.mu.Lock()
	err := fn(c.chart)
	c.mu.Unlock()
	if err == nil {
		c.changed()
	}
	return err
}

// View runs fn under the lock without notifying listeners.
func (c *Coordinator) View(fn func(*Chart)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.chart)
}

// Layout returns the current layout including any drag preview.
func (c *Coordinator) Layout(ctx context.Context) *layout.Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chart.Layout(ctx)
}

// Busy returns the number of backend calls in flight.
func (c *Coordinator) Busy() int { return int(c.busy.Load()) }

// Notices returns the notices visible now.
func (c *Coordinator) Notices() []notify.Notice { return c.notices.Active(time.Now()) }

// NoticeCenter returns the notice center for subscriptions.
func (c *Coordinator) NoticeCenter() *notify.Center { return c.notices }

func (c *Coordinator) call(fn func(Backend) error) error {
	if c.backend == nil {
		return errors.New(errors.ErrCodeUnsupported, "no backend configured")
	}
	c.busy.Add(1)
	defer c.busy.Add(-1)
	return fn(c.backend)
}

func (c *Coordinator) fail(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Error(msg, "err", err)
	c.notices.Push(notify.Error, msg)
	c.changed()
}

// =============================================================================
// Backend operations
// =============================================================================

// Expand fetches id's network and merges it. On failure the graph and
// layout are unchanged, a notice is pushed and a NETWORK_FETCH_FAILED error
// is returned; there is no automatic retry.
func (c *Coordinator) Expand(ctx context.Context, id string) error {
	if person.IsTemporary(id) {
		return errors.New(errors.ErrCodeInvalidInput, "person %q is not saved yet", id)
	}
	c.logger.Debug("expanding", "id", id)

	var people []person.Person
	err := c.call(func(b Backend) error {
		var err error
		people, err = b.FetchNetwork(ctx, id)
		return err
	})
	if err == nil {
		err = c.mutate(func(ch *Chart) error {
			if err := ch.Merge(people); err != nil {
				return err
			}
			ch.Relayout(ctx)
			return nil
		})
	}
	if err != nil {
		c.fail(err, "Could not load relatives of %s", id)
		if errors.GetCode(err) == errors.ErrCodeUnsupported {
			return err
		}
		return errors.Wrap(errors.ErrCodeNetworkFetch, err, "expand %s", id)
	}
	c.logger.Info("expanded", "id", id, "records", len(people))
	return nil
}

// Search queries the backend. Results are not merged; see [Coordinator.Select].
func (c *Coordinator) Search(ctx context.Context, q api.Query) ([]person.Person, error) {
	var people []person.Person
	err := c.call(func(b Backend) error {
		var err error
		people, err = b.Search(ctx, q)
		return err
	})
	if err != nil {
		c.fail(err, "Search failed")
		return nil, err
	}
	return people, nil
}

// Select adds a search result to the chart.
func (c *Coordinator) Select(p person.Person) error {
	return c.mutate(func(ch *Chart) error { return ch.Upsert(p) })
}

// Merge adds records from a local source such as an import file.
func (c *Coordinator) Merge(people []person.Person) error {
	return c.mutate(func(ch *Chart) error { return ch.Merge(people) })
}

// AddRelative creates draft as the given relation of the person of, and
// returns the id the backend assigned.
//
// The draft is inserted at once under a temporary id and linked to of. When
// the backend confirms, the temporary id is reconciled everywhere. When it
// fails the draft is removed and a RECONCILIATION_FAILURE error is returned.
func (c *Coordinator) AddRelative(ctx context.Context, draft person.Person, rel person.Relation, of string) (string, error) {
	tmp := person.NewTemporaryID()
	draft.ID = tmp

	err := c.mutate(func(ch *Chart) error {
		anchor, err := ch.Graph().Lookup(of)
		if err != nil {
			return err
		}
		if ch.IsPending(of) {
			return errors.New(errors.ErrCodeInvalidInput, "%s is not saved yet", anchor.DisplayName())
		}
		people, err := link(ch, draft, anchor, rel)
		if err != nil {
			return err
		}
		if err := ch.Merge(people); err != nil {
			return err
		}
		draft = people[0]
		ch.MarkPending(tmp)
		ch.Relayout(ctx)
		return nil
	})
	if err != nil {
		return "", err
	}

	var id string
	err = c.call(func(b Backend) error {
		var err error
		id, err = b.Create(ctx, draft)
		return err
	})
	if err != nil {
		_ = c.mutate(func(ch *Chart) error {
			if ch.Graph().Has(tmp) {
				_ = ch.Remove(tmp)
			}
			ch.Relayout(ctx)
			return nil
		})
		c.fail(err, "Could not add %s", draft.DisplayName())
		return "", errors.Wrap(errors.ErrCodeReconciliation, err, "create %s of %s", rel, of)
	}

	err = c.mutate(func(ch *Chart) error {
		n, err := ch.Confirm(tmp, id)
		if err != nil {
			return err
		}
		if n == 0 {
			c.logger.Debug("temporary id no longer referenced", "tmp", tmp, "id", id)
		}
		ch.Relayout(ctx)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeReconciliation, err, "reconcile %s", tmp)
	}
	c.notices.Push(notify.Success, fmt.Sprintf("Added %s", draft.DisplayName()))
	c.logger.Info("added relative", "id", id, "relation", rel, "of", of)
	return id, nil
}

// link returns the draft and the updated anchor with both sides of the
// relation filled in.
func link(ch *Chart, draft, anchor person.Person, rel person.Relation) ([]person.Person, error) {
	switch rel {
	case person.RelationFather, person.RelationMother:
		slot := &anchor.Rels.Father
		gender := person.GenderMale
		if rel == person.RelationMother {
			slot, gender = &anchor.Rels.Mother, person.GenderFemale
		}
		if *slot != "" && ch.Graph().Has(*slot) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s already has a %s", anchor.DisplayName(), rel)
		}
		*slot = draft.ID
		if draft.Data.Gender == person.GenderUnknown {
			draft.Data.Gender = gender
		}
		draft.Rels.Children = append(draft.Rels.Children, anchor.ID)
	case person.RelationSpouse:
		draft.Rels.Spouses = append(draft.Rels.Spouses, anchor.ID)
		anchor.Rels.Spouses = append(anchor.Rels.Spouses, draft.ID)
	case person.RelationChild:
		// With exactly one spouse in the chart, that spouse is the other parent.
		other := ""
		if sp := ch.Graph().Spouses(anchor.ID); len(sp) == 1 {
			other = sp[0]
		}
		if anchor.Data.Gender == person.GenderFemale {
			draft.Rels.Mother, draft.Rels.Father = anchor.ID, other
		} else {
			draft.Rels.Father, draft.Rels.Mother = anchor.ID, other
		}
		anchor.Rels.Children = append(anchor.Rels.Children, draft.ID)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown relation %q", rel)
	}
	return []person.Person{draft, anchor}, nil
}

// UpdatePerson sends p's data to the backend and stores the confirmed
// record. Local children are kept.
func (c *Coordinator) UpdatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	c.mu.Lock()
	local, err := c.chart.Graph().Lookup(p.ID)
	pending := c.chart.IsPending(p.ID)
	c.mu.Unlock()
	if err != nil {
		return person.Person{}, err
	}
	if pending {
		return person.Person{}, errors.New(errors.ErrCodeInvalidInput, "%s is not saved yet", local.DisplayName())
	}
	p.Rels = local.Rels

	var updated person.Person
	err = c.call(func(b Backend) error {
		var err error
		updated, err = b.Update(ctx, p)
		return err
	})
	if err != nil {
		c.fail(err, "Could not save %s", p.DisplayName())
		return person.Person{}, err
	}
	err = c.mutate(func(ch *Chart) error {
		if err := ch.Upsert(updated); err != nil {
			return err
		}
		ch.Relayout(ctx)
		return nil
	})
	return updated, err
}

// UploadAvatar uploads an image for id and saves it as the avatar.
func (c *Coordinator) UploadAvatar(ctx context.Context, id string, up api.Upload) (person.Person, error) {
	c.mu.Lock()
	p, err := c.chart.Graph().Lookup(id)
	c.mu.Unlock()
	if err != nil {
		return person.Person{}, err
	}

	up.PersonID = id
	var img api.Image
	err = c.call(func(b Backend) error {
		var err error
		img, err = b.UploadImage(ctx, up)
		return err
	})
	if err != nil {
		c.fail(err, "Could not upload picture of %s", p.DisplayName())
		return person.Person{}, err
	}
	p.Data.Avatar = img.URL
	return c.UpdatePerson(ctx, p)
}

// =============================================================================
// Local operations
// =============================================================================

// Remove deletes a person from the chart only.
func (c *Coordinator) Remove(id string) error {
	return c.mutate(func(ch *Chart) error { return ch.Remove(id) })
}

// Clear empties the chart.
func (c *Coordinator) Clear() {
	_ = c.mutate(func(ch *Chart) error { ch.Clear(); return nil })
}

// Pin fixes id's card at at.
func (c *Coordinator) Pin(id string, at layout.Point) error {
	return c.mutate(func(ch *Chart) error { return ch.Pin(id, at) })
}

// ResetPositions unpins the given people, or everyone.
func (c *Coordinator) ResetPositions(ids ...string) int {
	var n int
	_ = c.mutate(func(ch *Chart) error { n = ch.ResetPositions(ids...); return nil })
	return n
}

// SetOrientation switches orientation, clearing pins.
func (c *Coordinator) SetOrientation(o layout.Orientation) error {
	return c.mutate(func(ch *Chart) error {
		_, err := ch.SetOrientation(o)
		return err
	})
}

// ToggleCollapsed flips id's collapsed state.
func (c *Coordinator) ToggleCollapsed(id string) (bool, error) {
	var collapsed bool
	err := c.mutate(func(ch *Chart) error {
		var err error
		collapsed, err = ch.ToggleCollapsed(id)
		return err
	})
	return collapsed, err
}

// State returns the persistable chart state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chart.State()
}

// Restore replaces the chart with s.
func (c *Coordinator) Restore(s State) error {
	return c.mutate(func(ch *Chart) error { return ch.Restore(s) })
}

// =============================================================================
// render.Handler
// =============================================================================

// OnNodeClick expands the clicked person.
func (c *Coordinator) OnNodeClick(id string) {
	_ = c.Expand(c.ctx, id)
}

// OnNodeDragStart starts a drag preview.
func (c *Coordinator) OnNodeDragStart(id string) {
	_ = c.mutate(func(ch *Chart) error {
		ch.StartDrag(c.ctx, id)
		return nil
	})
}

// OnNodeDrag moves the drag preview.
func (c *Coordinator) OnNodeDrag(id string, dx, dy float64) {
	_ = c.mutate(func(ch *Chart) error {
		ch.Drag(id, dx, dy)
		return nil
	})
}

// OnNodeDragEnd pins the card where it was dropped.
func (c *Coordinator) OnNodeDragEnd(id string, at layout.Point) {
	err := c.mutate(func(ch *Chart) error { return ch.EndDrag(id, at) })
	if err != nil {
		c.logger.Warn("drop ignored", "id", id, "err", err)
	}
}

// OnNodeDragCancel drops the drag preview.
func (c *Coordinator) OnNodeDragCancel(id string) {
	_ = c.mutate(func(ch *Chart) error {
		ch.CancelDrag(id)
		return nil
	})
}

// OnNodeCollapseToggle collapses or expands id's descendants.
func (c *Coordinator) OnNodeCollapseToggle(id string) {
	if _, err := c.ToggleCollapsed(id); err != nil {
		c.logger.Warn("toggle ignored", "id", id, "err", err)
	}
}
