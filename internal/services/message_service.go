// Package services holds the message orchestration: target validation,
// content policy, visibility filtering, unread accounting and audience
// counting, composed over the repositories and the directory gateway.
package services

import (
	"regexp"

	"github.com/orgdesk/inbox/backend/internal/apperr"
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/models"
	"github.com/orgdesk/inbox/backend/internal/repositories"
	"github.com/orgdesk/inbox/backend/internal/visibility"
	"github.com/rs/zerolog"
)

// xssPattern is the content denylist: active script tags, and src/href
// attributes pointing at protocol-qualified or protocol-relative URLs. This
// is a reject-on-match guard, not a sanitizer.
var xssPattern = regexp.MustCompile(`(<\s*script|(src|href)\s*=\s*['"](//|[^'"]+:))`)

// PageSpec selects a page of an already-ordered listing.
type PageSpec struct {
	Page  int
	Limit int
}

func (p PageSpec) normalized() PageSpec {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

// MessageView is a list item: the message, its unread flag against the
// caller's cursor, the author summary and the resolved target summary.
type MessageView struct {
	models.Message
	Unread  bool                   `json:"unread"`
	From    *models.UserSummary    `json:"from,omitempty"`
	User    *models.UserSummary    `json:"user,omitempty"`
	Group   *models.GroupSummary   `json:"group,omitempty"`
	Company *models.CompanySummary `json:"company,omitempty"`
	Project *models.ProjectSummary `json:"project,omitempty"`
	Node    *models.NodeSummary    `json:"node,omitempty"`
}

// MessagePage is one page of a filtered listing.
type MessagePage struct {
	Items []MessageView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// MessageService answers the message operations for an acting user.
type MessageService struct {
	messages repositories.MessageRepository
	cursors  repositories.ReadCursorRepository
	gateway  directory.Gateway
	log      zerolog.Logger
}

func NewMessageService(
	messages repositories.MessageRepository,
	cursors repositories.ReadCursorRepository,
	gateway directory.Gateway,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{messages: messages, cursors: cursors, gateway: gateway, log: log}
}

// request bundles the per-request collaborators: a memoized gateway and the
// engine/resolver built over it. Never reused across requests.
type request struct {
	gw       *directory.Cached
	engine   *visibility.Engine
	resolver *visibility.Resolver
}

func (s *MessageService) newRequest() *request {
	gw := directory.NewCached(s.gateway)
	return &request{gw: gw, engine: visibility.NewEngine(gw), resolver: visibility.NewResolver(gw)}
}

// Create validates the target against the acting user's rights, applies the
// content policy and stores the message.
func (s *MessageService) Create(actor string, req models.SaveMessageRequest) (uint, error) {
	rq := s.newRequest()
	message := &models.Message{CreatedBy: actor}
	if err := s.applyRequest(rq, actor, message, req); err != nil {
		return 0, err
	}
	if err := s.messages.Create(message); err != nil {
		return 0, err
	}
	return message.ID, nil
}

// Update replaces the message content and target, re-running the full create
// validation. Authorization mirrors Create: any user who can resolve the new
// target may update, regardless of delegation.
func (s *MessageService) Update(actor string, id uint, req models.SaveMessageRequest) error {
	message, err := s.messages.GetByID(id)
	if err != nil {
		return err
	}
	if message == nil {
		return apperr.NotFound("id")
	}
	rq := s.newRequest()
	if err := s.applyRequest(rq, actor, message, req); err != nil {
		return err
	}
	return s.messages.Save(message)
}

// applyRequest resolves and normalizes the target, runs the content guard and
// writes the validated fields onto message.
func (s *MessageService) applyRequest(rq *request, actor string, message *models.Message, req models.SaveMessageRequest) error {
	targetType := models.MessageTargetType(req.TargetType)
	if !targetType.Valid() {
		return apperr.InvalidTarget("targetType")
	}
	target, err := rq.resolver.Resolve(actor, targetType, req.Target)
	if err != nil {
		return err
	}
	if xssPattern.MatchString(req.Value) {
		// Rejection stays a generic forbidden error, no field detail.
		s.log.Warn().Str("user", actor).Str("value", req.Value).Msg("message content rejected")
		return apperr.ErrContentRejected
	}
	message.TargetType = targetType
	message.Target = target
	message.Value = req.Value
	return nil
}

// Delete removes the message if the actor has delegated visibility of it.
// A missing message and a message the actor may not see fail identically.
func (s *MessageService) Delete(actor string, id uint) error {
	message, err := s.messages.GetByID(id)
	if err != nil {
		return err
	}
	if message == nil {
		return apperr.NotFound("id")
	}
	visible, err := s.newRequest().engine.IsDelegatedVisible(actor, message)
	if err != nil {
		return err
	}
	if !visible {
		return apperr.NotFound("id")
	}
	return s.messages.Delete(id)
}

// ListMine returns the page of messages addressed to the actor and, as a side
// effect of listing, advances the actor's read cursor past the page.
func (s *MessageService) ListMine(actor, search string, page PageSpec) (*MessagePage, error) {
	return s.list(actor, search, page, (*visibility.Engine).IsAddressee)
}

// ListVisible returns the page of messages the actor may administer, even
// when not targeted, and advances the read cursor the same way as ListMine.
func (s *MessageService) ListVisible(actor, search string, page PageSpec) (*MessagePage, error) {
	return s.list(actor, search, page, (*visibility.Engine).IsDelegatedVisible)
}

func (s *MessageService) list(actor, search string, page PageSpec,
	pred func(*visibility.Engine, string, *models.Message) (bool, error)) (*MessagePage, error) {

	page = page.normalized()
	rq := s.newRequest()

	rows, err := s.messages.Search(search)
	if err != nil {
		return nil, err
	}
	filtered := rows[:0:0]
	for i := range rows {
		ok, err := pred(rq.engine, actor, &rows[i])
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, rows[i])
		}
	}

	start := (page.Page - 1) * page.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + page.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	items := filtered[start:end]

	cursor, err := s.cursors.Get(actor)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, len(items))
	var maxID uint
	for i := range items {
		view := MessageView{Message: items[i], Unread: items[i].ID > cursor}
		if err := s.fillTarget(rq, &view); err != nil {
			return nil, err
		}
		views[i] = view
		if items[i].ID > maxID {
			maxID = items[i].ID
		}
	}

	// Viewing the page commits it as read, whether or not the caller ever
	// renders it. The upsert keeps the cursor monotonic.
	if err := s.cursors.AdvanceTo(actor, maxID); err != nil {
		return nil, err
	}

	return &MessagePage{Items: views, Total: int64(len(filtered)), Page: page.Page, Limit: page.Limit}, nil
}

// CountUnread returns how many addressee messages carry an id above the
// actor's cursor. Pure read: calling it twice yields the same value.
func (s *MessageService) CountUnread(actor string) (int64, error) {
	cursor, err := s.cursors.Get(actor)
	if err != nil {
		return 0, err
	}
	rows, err := s.messages.SearchAfter("", cursor)
	if err != nil {
		return 0, err
	}
	rq := s.newRequest()
	var count int64
	for i := range rows {
		ok, err := rq.engine.IsAddressee(actor, &rows[i])
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// Audience returns the number of distinct users a hypothetical message with
// this target would reach. The target is validated against the actor's
// rights first, exactly as for Create.
func (s *MessageService) Audience(actor string, targetType models.MessageTargetType, target string) (int64, error) {
	if !targetType.Valid() {
		return 0, apperr.InvalidTarget("targetType")
	}
	rq := s.newRequest()
	normalized, err := rq.resolver.Resolve(actor, targetType, target)
	if err != nil {
		return 0, err
	}
	return rq.engine.Audience(targetType, normalized)
}

// fillTarget attaches the author summary and the display object matching the
// target kind. A vanished entity simply leaves the summary empty.
func (s *MessageService) fillTarget(rq *request, view *MessageView) error {
	if from, err := rq.gw.FindUser(view.CreatedBy); err != nil {
		return err
	} else if from != nil {
		summary := from.ToSummary()
		view.From = &summary
	}
	switch view.TargetType {
	case models.TargetUser:
		user, err := rq.gw.FindUser(view.Target)
		if err != nil {
			return err
		}
		if user != nil {
			summary := user.ToSummary()
			view.User = &summary
		}
	case models.TargetGroup:
		group, err := rq.gw.FindGroup(view.Target)
		if err != nil {
			return err
		}
		if group != nil {
			summary := group.ToSummary()
			view.Group = &summary
		}
	case models.TargetCompany:
		company, err := rq.gw.FindCompany(view.Target)
		if err != nil {
			return err
		}
		if company != nil {
			summary := company.ToSummary()
			view.Company = &summary
		}
	case models.TargetProject:
		project, err := rq.gw.FindProject(view.Target)
		if err != nil {
			return err
		}
		if project != nil {
			summary := project.ToSummary()
			view.Project = &summary
		}
	case models.TargetNode:
		node, err := rq.gw.FindNode(view.Target)
		if err != nil {
			return err
		}
		if node != nil {
			summary := node.ToSummary()
			view.Node = &summary
		}
	}
	return nil
}
