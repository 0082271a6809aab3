// Package directory exposes the read-only organizational directory the inbox
// core queries: users, nested groups and companies, projects with their group
// and node subscriptions, and the delegation-rights table.
package directory

import "github.com/orgdesk/inbox/backend/internal/models"

// Gateway is the capability interface over the directory. Lookups that miss
// return (nil, nil); a non-nil error means the directory itself failed and
// the request must be aborted.
//
// All answers may change between requests (memberships and delegations are
// edited live), so results must never be cached across requests. See Cached
// for the per-request memoization wrapper.
type Gateway interface {
	UserExists(login string) (bool, error)
	FindUser(login string) (*models.DirectoryUser, error)
	CountUsers() (int64, error)

	FindGroup(id string) (*models.Group, error)
	// IsGroupMember reports membership of the group or any nested sub-group.
	IsGroupMember(login, groupID string) (bool, error)
	// GroupMembers returns the distinct logins of the group and every
	// nested sub-group.
	GroupMembers(groupID string) ([]string, error)
	// GroupAncestors returns the chain [groupID, parent, ...] up to the
	// root, or nil when the group is unknown.
	GroupAncestors(groupID string) ([]string, error)

	FindCompany(id string) (*models.Company, error)
	IsCompanyMember(login, companyID string) (bool, error)
	CompanyMembers(companyID string) ([]string, error)
	CompanyAncestors(companyID string) ([]string, error)

	FindProject(pkey string) (*models.Project, error)
	// ProjectGroups returns the group ids linked to the project key.
	ProjectGroups(pkey string) ([]string, error)

	FindNode(id string) (*models.Node, error)
	// NodeProjects returns the distinct project keys holding a subscription
	// to the node itself or to any descendant node path.
	NodeProjects(nodeID string) ([]string, error)

	DelegationsOf(login string) ([]models.Delegation, error)
}
