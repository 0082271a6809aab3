package visibility

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestGateway builds a directory over a throwaway SQLite file:
//
//	companies: org > {engineering, consulting}
//	groups:    platform > platform-core, sales
//	users:     alice (engineering, platform-core), carol (engineering, platform),
//	           bob (consulting, sales), dave/gina/cathy/nadia/nate (org)
//	projects:  atlas (platform), hermes (sales)
//	nodes:     service:build > service:build:jenkins > service:build:jenkins:main,
//	           service:kpi
//	subs:      atlas -> service:build:jenkins, hermes -> service:kpi
//	rights:    gina GROUP platform, cathy COMPANY_TREE org,
//	           nadia NODE_TREE service:build, nate NODE service:build:jenkins
func newTestGateway(t *testing.T) directory.Gateway {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "dir.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DirectoryUser{}, &models.Group{}, &models.GroupMember{},
		&models.Company{}, &models.Project{}, &models.ProjectGroup{},
		&models.Subscription{}, &models.Node{}, &models.Delegation{},
	))

	seed := []interface{}{
		&models.Company{ID: "org", Name: "Org"},
		&models.Company{ID: "engineering", Name: "Engineering", ParentID: "org"},
		&models.Company{ID: "consulting", Name: "Consulting", ParentID: "org"},

		&models.Group{ID: "platform", Name: "Platform"},
		&models.Group{ID: "platform-core", Name: "Platform Core", ParentID: "platform"},
		&models.Group{ID: "sales", Name: "Sales"},

		&models.DirectoryUser{Login: "alice", Name: "Alice", CompanyID: "engineering"},
		&models.DirectoryUser{Login: "carol", Name: "Carol", CompanyID: "engineering"},
		&models.DirectoryUser{Login: "bob", Name: "Bob", CompanyID: "consulting"},
		&models.DirectoryUser{Login: "dave", Name: "Dave", CompanyID: "org"},
		&models.DirectoryUser{Login: "gina", Name: "Gina", CompanyID: "org"},
		&models.DirectoryUser{Login: "cathy", Name: "Cathy", CompanyID: "org"},
		&models.DirectoryUser{Login: "nadia", Name: "Nadia", CompanyID: "org"},
		&models.DirectoryUser{Login: "nate", Name: "Nate", CompanyID: "org"},

		&models.GroupMember{GroupID: "platform-core", Login: "alice"},
		&models.GroupMember{GroupID: "platform", Login: "carol"},
		&models.GroupMember{GroupID: "sales", Login: "bob"},

		&models.Project{ID: 1, PKey: "atlas", Name: "Atlas"},
		&models.Project{ID: 2, PKey: "hermes", Name: "Hermes"},
		&models.ProjectGroup{ProjectID: 1, GroupID: "platform"},
		&models.ProjectGroup{ProjectID: 2, GroupID: "sales"},

		&models.Node{ID: "service:build", Name: "Build"},
		&models.Node{ID: "service:build:jenkins", Name: "Jenkins"},
		&models.Node{ID: "service:build:jenkins:main", Name: "Jenkins Main"},
		&models.Node{ID: "service:kpi", Name: "KPI"},
		&models.Subscription{ProjectID: 1, NodeID: "service:build:jenkins"},
		&models.Subscription{ProjectID: 2, NodeID: "service:kpi"},

		&models.Delegation{Grantee: "gina", ScopeKind: models.ScopeGroup, ScopeKey: "platform"},
		&models.Delegation{Grantee: "cathy", ScopeKind: models.ScopeCompanyTree, ScopeKey: "org"},
		&models.Delegation{Grantee: "nadia", ScopeKind: models.ScopeNodeTree, ScopeKey: "service:build"},
		&models.Delegation{Grantee: "nate", ScopeKind: models.ScopeNode, ScopeKey: "service:build:jenkins"},
	}
	for _, row := range seed {
		require.NoError(t, db.Create(row).Error)
	}
	return directory.NewPostgresDirectory(db)
}

var allLogins = []string{"alice", "carol", "bob", "dave", "gina", "cathy", "nadia", "nate"}

func message(targetType models.MessageTargetType, target string) *models.Message {
	return &models.Message{TargetType: targetType, Target: target, CreatedBy: "system"}
}
