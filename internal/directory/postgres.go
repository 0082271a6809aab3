package directory

import (
	"errors"

	"github.com/orgdesk/inbox/backend/internal/models"
	"gorm.io/gorm"
)

type postgresDirectory struct {
	db *gorm.DB
}

// NewPostgresDirectory returns a Gateway reading the directory tables through
// GORM.
func NewPostgresDirectory(db *gorm.DB) Gateway {
	return &postgresDirectory{db: db}
}

func (d *postgresDirectory) UserExists(login string) (bool, error) {
	var count int64
	err := d.db.Model(&models.DirectoryUser{}).Where("login = ?", login).Count(&count).Error
	return count > 0, err
}

func (d *postgresDirectory) FindUser(login string) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	err := d.db.Where("login = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *postgresDirectory) CountUsers() (int64, error) {
	var count int64
	err := d.db.Model(&models.DirectoryUser{}).Count(&count).Error
	return count, err
}

func (d *postgresDirectory) FindGroup(id string) (*models.Group, error) {
	var group models.Group
	err := d.db.Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// groupSubtree returns the group id and every nested sub-group id, or nil
// when the group does not exist.
func (d *postgresDirectory) groupSubtree(groupID string) ([]string, error) {
	group, err := d.FindGroup(groupID)
	if err != nil || group == nil {
		return nil, err
	}
	ids := []string{groupID}
	for frontier := []string{groupID}; len(frontier) > 0; {
		var children []string
		if err := d.db.Model(&models.Group{}).Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

func (d *postgresDirectory) IsGroupMember(login, groupID string) (bool, error) {
	ids, err := d.groupSubtree(groupID)
	if err != nil || ids == nil {
		return false, err
	}
	var count int64
	err = d.db.Model(&models.GroupMember{}).
		Where("login = ? AND group_id IN ?", login, ids).Count(&count).Error
	return count > 0, err
}

func (d *postgresDirectory) GroupMembers(groupID string) ([]string, error) {
	ids, err := d.groupSubtree(groupID)
	if err != nil || ids == nil {
		return nil, err
	}
	var logins []string
	err = d.db.Model(&models.GroupMember{}).Distinct("login").
		Where("group_id IN ?", ids).Pluck("login", &logins).Error
	return logins, err
}

func (d *postgresDirectory) GroupAncestors(groupID string) ([]string, error) {
	var chain []string
	seen := map[string]bool{}
	for id := groupID; id != "" && !seen[id]; {
		seen[id] = true
		group, err := d.FindGroup(id)
		if err != nil {
			return nil, err
		}
		if group == nil {
			break
		}
		chain = append(chain, id)
		id = group.ParentID
	}
	return chain, nil
}

func (d *postgresDirectory) FindCompany(id string) (*models.Company, error) {
	var company models.Company
	err := d.db.Where("id = ?", id).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (d *postgresDirectory) companySubtree(companyID string) ([]string, error) {
	company, err := d.FindCompany(companyID)
	if err != nil || company == nil {
		return nil, err
	}
	ids := []string{companyID}
	for frontier := []string{companyID}; len(frontier) > 0; {
		var children []string
		if err := d.db.Model(&models.Company{}).Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

func (d *postgresDirectory) IsCompanyMember(login, companyID string) (bool, error) {
	ids, err := d.companySubtree(companyID)
	if err != nil || ids == nil {
		return false, err
	}
	var count int64
	err = d.db.Model(&models.DirectoryUser{}).
		Where("login = ? AND company_id IN ?", login, ids).Count(&count).Error
	return count > 0, err
}

func (d *postgresDirectory) CompanyMembers(companyID string) ([]string, error) {
	ids, err := d.companySubtree(companyID)
	if err != nil || ids == nil {
		return nil, err
	}
	var logins []string
	err = d.db.Model(&models.DirectoryUser{}).Distinct("login").
		Where("company_id IN ?", ids).Pluck("login", &logins).Error
	return logins, err
}

func (d *postgresDirectory) CompanyAncestors(companyID string) ([]string, error) {
	var chain []string
	seen := map[string]bool{}
	for id := companyID; id != "" && !seen[id]; {
		seen[id] = true
		company, err := d.FindCompany(id)
		if err != nil {
			return nil, err
		}
		if company == nil {
			break
		}
		chain = append(chain, id)
		id = company.ParentID
	}
	return chain, nil
}

func (d *postgresDirectory) FindProject(pkey string) (*models.Project, error) {
	var project models.Project
	err := d.db.Where("p_key = ?", pkey).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (d *postgresDirectory) ProjectGroups(pkey string) ([]string, error) {
	var groupIDs []string
	err := d.db.Model(&models.ProjectGroup{}).
		Joins("JOIN projects ON projects.id = project_groups.project_id").
		Where("projects.p_key = ?", pkey).
		Pluck("project_groups.group_id", &groupIDs).Error
	return groupIDs, err
}

func (d *postgresDirectory) FindNode(id string) (*models.Node, error) {
	var node models.Node
	err := d.db.Where("id = ?", id).First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (d *postgresDirectory) NodeProjects(nodeID string) ([]string, error) {
	var pkeys []string
	err := d.db.Model(&models.Subscription{}).
		Joins("JOIN projects ON projects.id = subscriptions.project_id").
		Where("subscriptions.node_id = ? OR subscriptions.node_id LIKE ?", nodeID, nodeID+":%").
		Distinct("projects.p_key").
		Pluck("projects.p_key", &pkeys).Error
	return pkeys, err
}

func (d *postgresDirectory) DelegationsOf(login string) ([]models.Delegation, error) {
	var delegations []models.Delegation
	err := d.db.Where("grantee = ?", login).Find(&delegations).Error
	return delegations, err
}
