package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/ironboard/internal/client"
	"github.com/existflow/ironboard/internal/config"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
)

// session bundles the saved config with a client for it
type session struct {
	cfg    *config.Config
	client *client.Client
}

// openSession loads the client config. With requireLogin it fails early
// instead of letting the server answer 401.
func openSession(requireLogin bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = strings.TrimRight(serverURL, "/")
	}
	if requireLogin && !cfg.LoggedIn() {
		return nil, fmt.Errorf("not logged in, run 'ironboard auth login' first")
	}
	return &session{cfg: cfg, client: client.FromConfig(cfg)}, nil
}

// adopt stores a fresh login in the config
func (s *session) adopt(res *client.AuthResponse) error {
	s.cfg.Token = res.Token
	s.cfg.UserID = res.User.ID
	s.cfg.Email = res.User.Email
	s.client.SetToken(res.Token)
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save login: %w", err)
	}
	logger.Info("Logged in", logger.F("user_id", res.User.ID))
	return nil
}

// project resolves ref, or the current project when ref is empty
func (s *session) project(ctx context.Context, ref string) (*model.Project, error) {
	if ref == "" {
		ref = s.cfg.CurrentProject
	}
	if ref == "" {
		return nil, fmt.Errorf("no project given and none selected, run 'ironboard use <project>'")
	}

	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	p, err := matchProject(projects, ref)
	if err != nil {
		return nil, err
	}
	return s.client.GetProject(ctx, p.ID)
}

// matchProject finds a project by exact id, case-insensitive name, or
// unique id prefix.
func matchProject(projects []model.Project, ref string) (*model.Project, error) {
	for i := range projects {
		if projects[i].ID == ref {
			return &projects[i], nil
		}
	}

	var byName, byPrefix []*model.Project
	for i := range projects {
		p := &projects[i]
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
		if strings.HasPrefix(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
	}

	switch {
	case len(byName) == 1:
		return byName[0], nil
	case len(byName) > 1:
		return nil, fmt.Errorf("%d projects are named %q, use the id", len(byName), ref)
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return nil, fmt.Errorf("id prefix %q is ambiguous", ref)
	default:
		return nil, fmt.Errorf("project not found: %s", ref)
	}
}

// matchTask finds a task by id or unique id prefix
func matchTask(tasks []model.Task, ref string) (*model.Task, error) {
	var found []*model.Task
	for i := range tasks {
		if tasks[i].ID == ref {
			return &tasks[i], nil
		}
		if strings.HasPrefix(tasks[i].ID, ref) {
			found = append(found, &tasks[i])
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return nil, fmt.Errorf("task not found: %s", ref)
	default:
		return nil, fmt.Errorf("task id prefix %q is ambiguous", ref)
	}
}

// matchMember resolves an email or user id to someone with access to p
func matchMember(p *model.Project, ref string) (*model.UserRef, error) {
	email := model.NormalizeEmail(ref)
	if p.Owner.ID == ref || p.Owner.Email == email {
		return &p.Owner, nil
	}
	for i := range p.Memberships {
		u := &p.Memberships[i].User
		if u.ID == ref || u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%s is not a member of %s", ref, p.Name)
}

// shortID keeps ids readable in tables
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
