package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/blueprint"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/store"
)

// TemplateService saves and reads templates.
type TemplateService struct {
	base
}

// Save validates and stores a new template. Blueprint rows without an id
// get one. Private templates belong to the actor's organization.
func (s *TemplateService) Save(ctx context.Context, actorID string, t *store.Template) error {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return s.fail("save template", err)
	}
	if !lifecycle.IsPrivileged(u.Role) {
		return apperr.Forbidden("only managers and administrators may save templates")
	}

	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.IsPublic {
		t.OrgID = ""
	} else if t.OrgID == "" {
		t.OrgID = u.OrgID
	}
	if t.OrgID != "" && t.OrgID != u.OrgID {
		return apperr.Forbidden("cannot save a template for another organization")
	}
	for i := range t.Modules {
		m := &t.Modules[i]
		if m.ID == "" {
			m.ID = s.newID()
		}
		for j := range m.Tasks {
			if m.Tasks[j].ID == "" {
				m.Tasks[j].ID = s.newID()
			}
		}
	}
	if err := blueprint.Validate(t); err != nil {
		return err
	}

	if err := s.store.WithTx(ctx, func(tx *store.Store) error {
		return tx.CreateTemplate(ctx, t)
	}); err != nil {
		return s.fail("save template", err)
	}
	s.log.WithFields(logrus.Fields{"template_id": t.ID, "name": t.Name}).Info("template saved")
	return nil
}

// Import parses a YAML template document and saves it.
func (s *TemplateService) Import(ctx context.Context, actorID, path string) (*store.Template, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("import template", err)
	}
	t, err := blueprint.LoadFile(path, u.OrgID)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Validation("path", "%v", err)
	}
	if err := s.Save(ctx, actorID, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a template visible to the actor.
func (s *TemplateService) Get(ctx context.Context, actorID, templateID string) (*store.Template, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("get template", err)
	}
	t, err := s.store.GetTemplate(ctx, templateID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !t.IsPublic && t.OrgID != u.OrgID) {
		return nil, apperr.NotFound("template %s", templateID)
	}
	if err != nil {
		return nil, s.fail("get template", err)
	}
	return t, nil
}

// List returns the public templates and those of the actor's organization.
func (s *TemplateService) List(ctx context.Context, actorID string) ([]store.Template, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("list templates", err)
	}
	ts, err := s.store.ListTemplates(ctx, u.OrgID)
	if err != nil {
		return nil, s.fail("list templates", err)
	}
	return ts, nil
}
