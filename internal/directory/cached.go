package directory

import "github.com/orgdesk/inbox/backend/internal/models"

// Cached memoizes Gateway answers for the lifetime of a single request, so
// the resolver and the predicates can issue redundant lookups without hitting
// the store twice. It is not safe for concurrent use and must be built fresh
// per request: membership and delegations can change between requests.
type Cached struct {
	next Gateway

	userExists    map[string]bool
	users         map[string]*models.DirectoryUser
	userCount     *int64
	groups        map[string]*models.Group
	groupMember   map[string]bool
	groupSet      map[string][]string
	groupChain    map[string][]string
	companies     map[string]*models.Company
	companyMember map[string]bool
	companySet    map[string][]string
	companyChain  map[string][]string
	projects      map[string]*models.Project
	projectGroups map[string][]string
	nodes         map[string]*models.Node
	nodeProjects  map[string][]string
	delegations   map[string][]models.Delegation
}

// NewCached wraps next with a per-request memo.
func NewCached(next Gateway) *Cached {
	return &Cached{
		next:          next,
		userExists:    map[string]bool{},
		users:         map[string]*models.DirectoryUser{},
		groups:        map[string]*models.Group{},
		groupMember:   map[string]bool{},
		groupSet:      map[string][]string{},
		groupChain:    map[string][]string{},
		companies:     map[string]*models.Company{},
		companyMember: map[string]bool{},
		companySet:    map[string][]string{},
		companyChain:  map[string][]string{},
		projects:      map[string]*models.Project{},
		projectGroups: map[string][]string{},
		nodes:         map[string]*models.Node{},
		nodeProjects:  map[string][]string{},
		delegations:   map[string][]models.Delegation{},
	}
}

func (c *Cached) UserExists(login string) (bool, error) {
	if v, ok := c.userExists[login]; ok {
		return v, nil
	}
	v, err := c.next.UserExists(login)
	if err != nil {
		return false, err
	}
	c.userExists[login] = v
	return v, nil
}

func (c *Cached) FindUser(login string) (*models.DirectoryUser, error) {
	if v, ok := c.users[login]; ok {
		return v, nil
	}
	v, err := c.next.FindUser(login)
	if err != nil {
		return nil, err
	}
	c.users[login] = v
	return v, nil
}

func (c *Cached) CountUsers() (int64, error) {
	if c.userCount != nil {
		return *c.userCount, nil
	}
	v, err := c.next.CountUsers()
	if err != nil {
		return 0, err
	}
	c.userCount = &v
	return v, nil
}

func (c *Cached) FindGroup(id string) (*models.Group, error) {
	if v, ok := c.groups[id]; ok {
		return v, nil
	}
	v, err := c.next.FindGroup(id)
	if err != nil {
		return nil, err
	}
	c.groups[id] = v
	return v, nil
}

func (c *Cached) IsGroupMember(login, groupID string) (bool, error) {
	key := login + "\x00" + groupID
	if v, ok := c.groupMember[key]; ok {
		return v, nil
	}
	v, err := c.next.IsGroupMember(login, groupID)
	if err != nil {
		return false, err
	}
	c.groupMember[key] = v
	return v, nil
}

func (c *Cached) GroupMembers(groupID string) ([]string, error) {
	if v, ok := c.groupSet[groupID]; ok {
		return v, nil
	}
	v, err := c.next.GroupMembers(groupID)
	if err != nil {
		return nil, err
	}
	c.groupSet[groupID] = v
	return v, nil
}

func (c *Cached) GroupAncestors(groupID string) ([]string, error) {
	if v, ok := c.groupChain[groupID]; ok {
		return v, nil
	}
	v, err := c.next.GroupAncestors(groupID)
	if err != nil {
		return nil, err
	}
	c.groupChain[groupID] = v
	return v, nil
}

func (c *Cached) FindCompany(id string) (*models.Company, error) {
	if v, ok := c.companies[id]; ok {
		return v, nil
	}
	v, err := c.next.FindCompany(id)
	if err != nil {
		return nil, err
	}
	c.companies[id] = v
	return v, nil
}

func (c *Cached) IsCompanyMember(login, companyID string) (bool, error) {
	key := login + "\x00" + companyID
	if v, ok := c.companyMember[key]; ok {
		return v, nil
	}
	v, err := c.next.IsCompanyMember(login, companyID)
	if err != nil {
		return false, err
	}
	c.companyMember[key] = v
	return v, nil
}

func (c *Cached) CompanyMembers(companyID string) ([]string, error) {
	if v, ok := c.companySet[companyID]; ok {
		return v, nil
	}
	v, err := c.next.CompanyMembers(companyID)
	if err != nil {
		return nil, err
	}
	c.companySet[companyID] = v
	return v, nil
}

func (c *Cached) CompanyAncestors(companyID string) ([]string, error) {
	if v, ok := c.companyChain[companyID]; ok {
		return v, nil
	}
	v, err := c.next.CompanyAncestors(companyID)
	if err != nil {
		return nil, err
	}
	c.companyChain[companyID] = v
	return v, nil
}

func (c *Cached) FindProject(pkey string) (*models.Project, error) {
	if v, ok := c.projects[pkey]; ok {
		return v, nil
	}
	v, err := c.next.FindProject(pkey)
	if err != nil {
		return nil, err
	}
	c.projects[pkey] = v
	return v, nil
}

func (c *Cached) ProjectGroups(pkey string) ([]string, error) {
	if v, ok := c.projectGroups[pkey]; ok {
		return v, nil
	}
	v, err := c.next.ProjectGroups(pkey)
	if err != nil {
		return nil, err
	}
	c.projectGroups[pkey] = v
	return v, nil
}

func (c *Cached) FindNode(id string) (*models.Node, error) {
	if v, ok := c.nodes[id]; ok {
		return v, nil
	}
	v, err := c.next.FindNode(id)
	if err != nil {
		return nil, err
	}
	c.nodes[id] = v
	return v, nil
}

func (c *Cached) NodeProjects(nodeID string) ([]string, error) {
	if v, ok := c.nodeProjects[nodeID]; ok {
		return v, nil
	}
	v, err := c.next.NodeProjects(nodeID)
	if err != nil {
		return nil, err
	}
	c.nodeProjects[nodeID] = v
	return v, nil
}

func (c *Cached) DelegationsOf(login string) ([]models.Delegation, error) {
	if v, ok := c.delegations[login]; ok {
		return v, nil
	}
	v, err := c.next.DelegationsOf(login)
	if err != nil {
		return nil, err
	}
	c.delegations[login] = v
	return v, nil
}
