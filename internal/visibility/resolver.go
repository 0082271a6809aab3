package visibility

import (
	"github.com/orgdesk/inbox/backend/internal/apperr"
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/models"
)

// checkFunc validates a raw target for an actor and returns the normalized
// target key.
type checkFunc func(actor, target string) (string, error)

// Resolver normalizes and validates (targetType, target) pairs against the
// directory. Failures name the offending field so the caller-facing form can
// highlight it: "id" for users, "group", "company", "pkey" and "node".
type Resolver struct {
	gw      directory.Gateway
	checker map[models.MessageTargetType]checkFunc
}

// NewResolver builds the per-kind checker table once; the table itself is
// immutable after construction.
func NewResolver(gw directory.Gateway) *Resolver {
	r := &Resolver{gw: gw}
	r.checker = map[models.MessageTargetType]checkFunc{
		models.TargetUser:    r.resolveUser,
		models.TargetGroup:   r.resolveGroup,
		models.TargetCompany: r.resolveCompany,
		models.TargetProject: r.resolveProject,
		models.TargetNode:    r.resolveNode,
	}
	return r
}

// Resolve validates the target for the acting user and returns its canonical
// form. A broadcast (empty target type) always resolves to an empty target.
func (r *Resolver) Resolve(actor string, targetType models.MessageTargetType, target string) (string, error) {
	if targetType.IsBroadcast() {
		return "", nil
	}
	check, ok := r.checker[targetType]
	if !ok {
		return "", apperr.InvalidTarget("targetType")
	}
	if target == "" {
		return "", apperr.InvalidTarget("target")
	}
	return check(actor, target)
}

func (r *Resolver) resolveUser(_, target string) (string, error) {
	user, err := r.gw.FindUser(target)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.NotFound("id")
	}
	return user.Login, nil
}

// resolveGroup accepts groups the actor can reference: the actor is a member
// or holds a delegation over the group or an ancestor.
func (r *Resolver) resolveGroup(actor, target string) (string, error) {
	group, err := r.gw.FindGroup(target)
	if err != nil {
		return "", err
	}
	if group != nil {
		engine := NewEngine(r.gw)
		member, err := r.gw.IsGroupMember(actor, group.ID)
		if err != nil {
			return "", err
		}
		if !member {
			member, err = engine.hasGroupDelegation(actor, group.ID)
			if err != nil {
				return "", err
			}
		}
		if member {
			return group.ID, nil
		}
	}
	return "", apperr.NotFound("group")
}

func (r *Resolver) resolveCompany(actor, target string) (string, error) {
	company, err := r.gw.FindCompany(target)
	if err != nil {
		return "", err
	}
	if company != nil {
		engine := NewEngine(r.gw)
		member, err := r.gw.IsCompanyMember(actor, company.ID)
		if err != nil {
			return "", err
		}
		if !member {
			member, err = engine.hasCompanyDelegation(actor, company.ID)
			if err != nil {
				return "", err
			}
		}
		if member {
			return company.ID, nil
		}
	}
	return "", apperr.NotFound("company")
}

// resolveProject normalizes to the project key, not the numeric id: projects
// are deleted and recreated more often than keys change.
func (r *Resolver) resolveProject(actor, target string) (string, error) {
	project, err := r.gw.FindProject(target)
	if err != nil {
		return "", err
	}
	if project != nil {
		visible, err := NewEngine(r.gw).canSeeProject(actor, project.PKey)
		if err != nil {
			return "", err
		}
		if visible {
			return project.PKey, nil
		}
	}
	return "", apperr.NotFound("pkey")
}

func (r *Resolver) resolveNode(_, target string) (string, error) {
	node, err := r.gw.FindNode(target)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", apperr.NotFound("node")
	}
	return node.ID, nil
}
