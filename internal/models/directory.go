package models

// Organizational directory entities (PostgreSQL). The inbox core only reads
// these tables; they are maintained by the identity-management side.

// DirectoryUser is a known login and its company attachment.
type DirectoryUser struct {
	Login     string `json:"login" gorm:"primaryKey;size:255"`
	Name      string `json:"name" gorm:"size:255"`
	CompanyID string `json:"company_id" gorm:"size:255;index"`
}

// Group is an organizational group. Groups nest through ParentID.
type Group struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	Name     string `json:"name" gorm:"size:255"`
	ParentID string `json:"parent_id" gorm:"size:255;index"`
}

// GroupMember attaches a login to a group. Membership of a nested sub-group
// implies membership of every group above it.
type GroupMember struct {
	GroupID string `json:"group_id" gorm:"primaryKey;size:255"`
	Login   string `json:"login" gorm:"primaryKey;size:255;index"`
}

// Company is an organizational company. Companies nest through ParentID.
type Company struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	Name     string `json:"name" gorm:"size:255"`
	ParentID string `json:"parent_id" gorm:"size:255;index"`
}

// Project is addressed by its stable PKey rather than the numeric id, since
// projects are deleted and recreated more often than keys change.
type Project struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	PKey string `json:"pkey" gorm:"size:255;uniqueIndex"`
	Name string `json:"name" gorm:"size:255"`
}

// Node is an infrastructure node. The id is a colon-delimited path:
// "a:b:c" is a descendant of "a:b" and of "a".
type Node struct {
	ID   string `json:"id" gorm:"primaryKey;size:255"`
	Name string `json:"name" gorm:"size:255"`
}

// Subscription links a project to a node.
type Subscription struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProjectID uint   `json:"project_id" gorm:"index"`
	NodeID    string `json:"node_id" gorm:"size:255;index"`
}

// ProjectGroup links a project to one of its groups.
type ProjectGroup struct {
	ProjectID uint   `json:"project_id" gorm:"primaryKey"`
	GroupID   string `json:"group_id" gorm:"primaryKey;size:255"`
}

// DelegationScopeKind enumerates the scopes a delegation can cover.
// The *_TREE kinds cover the named scope and everything nested beneath it.
type DelegationScopeKind string

const (
	ScopeGroup       DelegationScopeKind = "GROUP"
	ScopeGroupTree   DelegationScopeKind = "GROUP_TREE"
	ScopeCompany     DelegationScopeKind = "COMPANY"
	ScopeCompanyTree DelegationScopeKind = "COMPANY_TREE"
	ScopeNode        DelegationScopeKind = "NODE"
	ScopeNodeTree    DelegationScopeKind = "NODE_TREE"
)

// Delegation grants a login administrative rights over a scope.
type Delegation struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	Grantee   string              `json:"grantee" gorm:"size:255;index"`
	ScopeKind DelegationScopeKind `json:"scope_kind" gorm:"size:16"`
	ScopeKey  string              `json:"scope_key" gorm:"size:255"`
}

// Compact summaries attached to list items so the UI can render the target
// without a second round trip.

type UserSummary struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
}

type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type CompanySummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ProjectSummary struct {
	PKey string `json:"pkey"`
	Name string `json:"name,omitempty"`
}

type NodeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (u DirectoryUser) ToSummary() UserSummary {
	return UserSummary{Login: u.Login, Name: u.Name}
}

func (g Group) ToSummary() GroupSummary {
	return GroupSummary{ID: g.ID, Name: g.Name}
}

func (c Company) ToSummary() CompanySummary {
	return CompanySummary{ID: c.ID, Name: c.Name}
}

func (p Project) ToSummary() ProjectSummary {
	return ProjectSummary{PKey: p.PKey, Name: p.Name}
}

func (n Node) ToSummary() NodeSummary {
	return NodeSummary{ID: n.ID, Name: n.Name}
}
