package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/orgdesk/inbox/backend/internal/apperr"
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/models"
	"github.com/orgdesk/inbox/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestService wires the real stores over a throwaway SQLite file with a
// small directory: company org > engineering (alice, carol) and consulting
// (bob); group platform > platform-core (alice in core, carol in platform),
// group sales (bob); project atlas on platform; node service:build:jenkins
// subscribed by atlas; gina holds a GROUP delegation on platform.
func newTestService(t *testing.T) *MessageService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "inbox.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Message{}, &models.ReadCursor{},
		&models.DirectoryUser{}, &models.Group{}, &models.GroupMember{},
		&models.Company{}, &models.Project{}, &models.ProjectGroup{},
		&models.Subscription{}, &models.Node{}, &models.Delegation{},
	))

	seed := []interface{}{
		&models.Company{ID: "org", Name: "Org"},
		&models.Company{ID: "engineering", ParentID: "org"},
		&models.Company{ID: "consulting", ParentID: "org"},
		&models.DirectoryUser{Login: "alice", Name: "Alice", CompanyID: "engineering"},
		&models.DirectoryUser{Login: "carol", Name: "Carol", CompanyID: "engineering"},
		&models.DirectoryUser{Login: "bob", Name: "Bob", CompanyID: "consulting"},
		&models.DirectoryUser{Login: "gina", Name: "Gina", CompanyID: "org"},
		&models.Group{ID: "platform"},
		&models.Group{ID: "platform-core", ParentID: "platform"},
		&models.Group{ID: "sales"},
		&models.GroupMember{GroupID: "platform-core", Login: "alice"},
		&models.GroupMember{GroupID: "platform", Login: "carol"},
		&models.GroupMember{GroupID: "sales", Login: "bob"},
		&models.Project{ID: 1, PKey: "atlas", Name: "Atlas"},
		&models.ProjectGroup{ProjectID: 1, GroupID: "platform"},
		&models.Node{ID: "service:build"},
		&models.Node{ID: "service:build:jenkins"},
		&models.Subscription{ProjectID: 1, NodeID: "service:build:jenkins"},
		&models.Delegation{Grantee: "gina", ScopeKind: models.ScopeGroup, ScopeKey: "platform"},
	}
	for _, row := range seed {
		require.NoError(t, db.Create(row).Error)
	}

	return NewMessageService(
		repositories.NewPostgresMessageRepository(db),
		repositories.NewPostgresReadCursorRepository(db),
		directory.NewPostgresDirectory(db),
		zerolog.Nop(),
	)
}

func userMessage(target, value string) models.SaveMessageRequest {
	return models.SaveMessageRequest{TargetType: string(models.TargetUser), Target: target, Value: value}
}

func TestCreateRejectsScriptInjection(t *testing.T) {
	service := newTestService(t)

	for _, value := range []string{
		"<script>alert()</script>",
		"< script >alert()</script>",
		`<img src="javascript:alert()">`,
		`<a href='//evil.example'>x</a>`,
	} {
		_, err := service.Create("alice", userMessage("bob", value))
		assert.ErrorIs(t, err, apperr.ErrContentRejected, value)
	}

	count, err := service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "rejected messages are never stored")
}

func TestCreateAllowsInertMarkup(t *testing.T) {
	service := newTestService(t)

	value := `msg <i class="fa fa-smile"></i>`
	id, err := service.Create("alice", userMessage("bob", value))
	require.NoError(t, err)
	require.NotZero(t, id)

	page, err := service.ListMine("bob", "", PageSpec{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, value, page.Items[0].Value, "value passes through unchanged")
}

func TestUnreadLifecycle(t *testing.T) {
	service := newTestService(t)

	baseline, err := service.CountUnread("bob")
	require.NoError(t, err)

	_, err = service.Create("alice", userMessage("bob", "ping"))
	require.NoError(t, err)

	count, err := service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, baseline+1, count)

	// Counting is a pure read.
	again, err := service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, count, again)

	// Listing flags the message as unread and commits the page as read.
	page, err := service.ListMine("bob", "", PageSpec{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Unread)
	require.NotNil(t, page.Items[0].From)
	assert.Equal(t, "alice", page.Items[0].From.Login)
	require.NotNil(t, page.Items[0].User)
	assert.Equal(t, "bob", page.Items[0].User.Login)

	count, err = service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, baseline, count)

	// A second listing shows the same message, no longer new.
	page, err = service.ListMine("bob", "", PageSpec{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].Unread)

	// The author keeps visibility without being the addressee.
	visible, err := service.ListVisible("alice", "", PageSpec{})
	require.NoError(t, err)
	require.Len(t, visible.Items, 1)

	mine, err := service.ListMine("alice", "", PageSpec{})
	require.NoError(t, err)
	assert.Empty(t, mine.Items)
}

func TestCursorNeverRewinds(t *testing.T) {
	service := newTestService(t)

	for _, value := range []string{"first", "second", "third"} {
		_, err := service.Create("alice", userMessage("bob", value))
		require.NoError(t, err)
	}

	// Viewing the full listing moves the cursor to the newest id.
	_, err := service.ListMine("bob", "", PageSpec{})
	require.NoError(t, err)

	_, err = service.Create("alice", userMessage("bob", "fourth"))
	require.NoError(t, err)

	count, err := service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A page holding only an old message must not rewind the cursor.
	page, err := service.ListMine("bob", "first", PageSpec{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	count, err = service.CountUnread("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListPagination(t *testing.T) {
	service := newTestService(t)

	for i := 0; i < 5; i++ {
		_, err := service.Create("alice", userMessage("bob", "note"))
		require.NoError(t, err)
	}

	page, err := service.ListMine("bob", "", PageSpec{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)

	last, err := service.ListMine("bob", "", PageSpec{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
}

func TestDeleteNotFoundShape(t *testing.T) {
	service := newTestService(t)

	id, err := service.Create("alice", userMessage("bob", "private"))
	require.NoError(t, err)

	missingErr := service.Delete("carol", 99999)
	invisibleErr := service.Delete("carol", id)

	// Not-existing and not-visible fail identically so existence never leaks.
	require.Error(t, missingErr)
	require.Error(t, invisibleErr)
	assert.Equal(t, missingErr, invisibleErr)
	assert.True(t, apperr.IsNotFound(missingErr))

	// The author can delete it.
	require.NoError(t, service.Delete("alice", id))
}

func TestDeleteThroughDelegation(t *testing.T) {
	service := newTestService(t)

	id, err := service.Create("alice", models.SaveMessageRequest{
		TargetType: string(models.TargetGroup), Target: "platform-core", Value: "core only",
	})
	require.NoError(t, err)

	// bob has no delegation over the group.
	require.Error(t, service.Delete("bob", id))

	// gina's GROUP delegation on the parent covers the nested group.
	require.NoError(t, service.Delete("gina", id))
}

func TestUpdateMirrorsCreateAuthorization(t *testing.T) {
	service := newTestService(t)

	id, err := service.Create("bob", models.SaveMessageRequest{
		TargetType: string(models.TargetGroup), Target: "sales", Value: "old",
	})
	require.NoError(t, err)

	// bob cannot redirect the message at a group he may not reference.
	err = service.Update("bob", id, models.SaveMessageRequest{
		TargetType: string(models.TargetGroup), Target: "platform", Value: "new",
	})
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "group", notFound.Field)

	// carol can, because she resolves the new target herself.
	require.NoError(t, service.Update("carol", id, models.SaveMessageRequest{
		TargetType: string(models.TargetGroup), Target: "platform", Value: "new",
	}))

	page, err := service.ListMine("alice", "", PageSpec{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "new", page.Items[0].Value)
	assert.Equal(t, "platform", page.Items[0].Target)

	err = service.Update("carol", 99999, userMessage("bob", "x"))
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "id", notFound.Field)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	service := newTestService(t)

	_, err := service.Create("alice", models.SaveMessageRequest{Value: "all hands"})
	require.NoError(t, err)

	for _, login := range []string{"alice", "carol", "bob", "gina"} {
		count, err := service.CountUnread(login)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, login)
	}
}

func TestAudience(t *testing.T) {
	service := newTestService(t)

	count, err := service.Audience("alice", models.TargetCompany, "engineering")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = service.Audience("alice", models.TargetBroadcast, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	// The target is validated against the actor's rights first.
	_, err = service.Audience("bob", models.TargetCompany, "engineering")
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "company", notFound.Field)
}
