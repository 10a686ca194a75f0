// Package service implements the planner operations on top of the store:
// template instantiation, task transitions and the template and event
// accessors. Every operation resolves its actor itself and returns apperr
// errors; storage failures are logged and surfaced without detail.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/blueprint"
	"github.com/imkarma/planner/internal/notify"
	"github.com/imkarma/planner/internal/store"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store    *store.Store
	Notifier notify.Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
	NewID    blueprint.IDFunc
}

type base struct {
	store    *store.Store
	notifier notify.Notifier
	log      *logrus.Logger
	now      func() time.Time
	newID    blueprint.IDFunc
}

func newBase(d Deps) base {
	b := base{store: d.Store, notifier: d.Notifier, log: d.Logger, now: d.Now, newID: d.NewID}
	if b.notifier == nil {
		b.notifier = notify.Nop{}
	}
	if b.log == nil {
		b.log = logrus.StandardLogger()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

// Services bundles every service over one set of dependencies.
type Services struct {
	Instantiator *Instantiator
	Tasks        *TaskService
	Templates    *TemplateService
	Events       *EventService
}

// New builds every service from d.
func New(d Deps) *Services {
	b := newBase(d)
	return &Services{
		Instantiator: &Instantiator{base: b},
		Tasks:        &TaskService{base: b},
		Templates:    &TemplateService{base: b},
		Events:       &EventService{base: b},
	}
}

// fail passes apperr errors through, maps store.ErrNotFound to NotFound and
// hides everything else behind Internal after logging it.
func (b *base) fail(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("%s: not found", op)
	}
	b.log.WithError(errors.Wrap(err, op)).Error("operation failed")
	return apperr.Internal()
}

// actor loads the acting user through s, which may be a transaction.
func actor(ctx context.Context, s *store.Store, id string) (*store.User, error) {
	if id == "" {
		return nil, apperr.Validation("actor_id", "actor is required")
	}
	u, err := s.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user %s", id)
	}
	return u, err
}

// eventFor loads an event and hides it from actors of other organizations.
func eventFor(ctx context.Context, s *store.Store, u *store.User, eventID string) (*store.Event, error) {
	e, err := s.GetEvent(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && e.OrgID != u.OrgID) {
		return nil, apperr.NotFound("event %s", eventID)
	}
	return e, err
}

func (b *base) send(ctx context.Context, msg notify.Message) {
	msg.SentAt = b.now().UTC()
	b.notifier.Notify(ctx, msg)
}

func recipients(ids ...string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
