// Package visibility implements the message-audience rules: who is addressed
// by a message, who may administer it through delegated rights, target
// validation and audience counting.
package visibility

import (
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/models"
)

// Engine evaluates the two visibility predicates against the directory.
// Build one per request, over a per-request cached gateway.
type Engine struct {
	gw directory.Gateway
}

// NewEngine returns an Engine reading from gw.
func NewEngine(gw directory.Gateway) *Engine {
	return &Engine{gw: gw}
}

// IsAddressee reports whether login is a direct recipient of the message:
// everyone for a broadcast, the named user, a transitive member of the target
// group or company, a member of a group linked to the target project, or a
// member of a project subscribed to the target node or one of its
// descendants.
func (e *Engine) IsAddressee(login string, m *models.Message) (bool, error) {
	switch m.TargetType {
	case models.TargetBroadcast:
		return true, nil
	case models.TargetUser:
		return m.Target == login, nil
	case models.TargetGroup:
		return e.gw.IsGroupMember(login, m.Target)
	case models.TargetCompany:
		return e.gw.IsCompanyMember(login, m.Target)
	case models.TargetProject:
		return e.isProjectMember(login, m.Target)
	case models.TargetNode:
		pkeys, err := e.gw.NodeProjects(m.Target)
		if err != nil {
			return false, err
		}
		for _, pkey := range pkeys {
			ok, err := e.isProjectMember(login, pkey)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}

// IsDelegatedVisible reports whether login may see and manage the message
// without being its addressee. Authors always keep visibility into their own
// messages, whatever the target; beyond that the per-kind delegation rules
// apply.
func (e *Engine) IsDelegatedVisible(login string, m *models.Message) (bool, error) {
	if m.TargetType.IsBroadcast() || m.CreatedBy == login {
		return true, nil
	}
	switch m.TargetType {
	case models.TargetUser:
		// Only the author shortcut grants visibility of a direct message.
		return false, nil
	case models.TargetGroup:
		group, err := e.gw.FindGroup(m.Target)
		if err != nil || group == nil {
			return false, err
		}
		return e.hasGroupDelegation(login, m.Target)
	case models.TargetCompany:
		company, err := e.gw.FindCompany(m.Target)
		if err != nil || company == nil {
			return false, err
		}
		return e.hasCompanyDelegation(login, m.Target)
	case models.TargetProject:
		return e.canSeeProject(login, m.Target)
	case models.TargetNode:
		return e.hasNodeDelegation(login, m.Target)
	}
	return false, nil
}

// isProjectMember reports whether login belongs to any group linked to the
// project key.
func (e *Engine) isProjectMember(login, pkey string) (bool, error) {
	groupIDs, err := e.gw.ProjectGroups(pkey)
	if err != nil {
		return false, err
	}
	for _, groupID := range groupIDs {
		ok, err := e.gw.IsGroupMember(login, groupID)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// canSeeProject reports whether login is a member of, or holds a group
// delegation over, any group linked to the project key.
func (e *Engine) canSeeProject(login, pkey string) (bool, error) {
	groupIDs, err := e.gw.ProjectGroups(pkey)
	if err != nil {
		return false, err
	}
	for _, groupID := range groupIDs {
		ok, err := e.gw.IsGroupMember(login, groupID)
		if err != nil || ok {
			return ok, err
		}
		ok, err = e.hasGroupDelegation(login, groupID)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// hasGroupDelegation reports whether login holds a GROUP or GROUP_TREE
// delegation whose scope is the group itself or one of its ancestors.
func (e *Engine) hasGroupDelegation(login, groupID string) (bool, error) {
	scopes, err := e.delegationScopes(login, models.ScopeGroup, models.ScopeGroupTree)
	if err != nil || len(scopes) == 0 {
		return false, err
	}
	chain, err := e.gw.GroupAncestors(groupID)
	if err != nil {
		return false, err
	}
	return containsAny(chain, scopes), nil
}

func (e *Engine) hasCompanyDelegation(login, companyID string) (bool, error) {
	scopes, err := e.delegationScopes(login, models.ScopeCompany, models.ScopeCompanyTree)
	if err != nil || len(scopes) == 0 {
		return false, err
	}
	chain, err := e.gw.CompanyAncestors(companyID)
	if err != nil {
		return false, err
	}
	return containsAny(chain, scopes), nil
}

// hasNodeDelegation reports whether login holds a delegation covering nodeID:
// a NODE delegation on the node itself, or a NODE_TREE delegation on the node
// or any ancestor path.
func (e *Engine) hasNodeDelegation(login, nodeID string) (bool, error) {
	delegations, err := e.gw.DelegationsOf(login)
	if err != nil {
		return false, err
	}
	for _, d := range delegations {
		switch d.ScopeKind {
		case models.ScopeNode:
			if d.ScopeKey == nodeID {
				return true, nil
			}
		case models.ScopeNodeTree:
			if nodeWithinTree(nodeID, d.ScopeKey) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (e *Engine) delegationScopes(login string, kinds ...models.DelegationScopeKind) (map[string]bool, error) {
	delegations, err := e.gw.DelegationsOf(login)
	if err != nil {
		return nil, err
	}
	scopes := map[string]bool{}
	for _, d := range delegations {
		for _, kind := range kinds {
			if d.ScopeKind == kind {
				scopes[d.ScopeKey] = true
			}
		}
	}
	return scopes, nil
}
