package visibility

import "github.com/orgdesk/inbox/backend/internal/models"

// Audience counts the distinct users that would be addressees of a message
// with the given target. It queries directory cardinalities directly, never
// the message store, so the cost is bounded by the directory size.
func (e *Engine) Audience(targetType models.MessageTargetType, target string) (int64, error) {
	switch targetType {
	case models.TargetBroadcast:
		return e.gw.CountUsers()
	case models.TargetUser:
		exists, err := e.gw.UserExists(target)
		if err != nil || !exists {
			return 0, err
		}
		return 1, nil
	case models.TargetGroup:
		logins, err := e.gw.GroupMembers(target)
		return int64(len(logins)), err
	case models.TargetCompany:
		logins, err := e.gw.CompanyMembers(target)
		return int64(len(logins)), err
	case models.TargetProject:
		logins, err := e.projectAudience(target)
		return int64(len(logins)), err
	case models.TargetNode:
		pkeys, err := e.gw.NodeProjects(target)
		if err != nil {
			return 0, err
		}
		distinct := map[string]bool{}
		for _, pkey := range pkeys {
			logins, err := e.projectAudience(pkey)
			if err != nil {
				return 0, err
			}
			for login := range logins {
				distinct[login] = true
			}
		}
		return int64(len(distinct)), nil
	}
	return 0, nil
}

// projectAudience returns the distinct members across all groups linked to
// the project key.
func (e *Engine) projectAudience(pkey string) (map[string]bool, error) {
	groupIDs, err := e.gw.ProjectGroups(pkey)
	if err != nil {
		return nil, err
	}
	logins := map[string]bool{}
	for _, groupID := range groupIDs {
		members, err := e.gw.GroupMembers(groupID)
		if err != nil {
			return nil, err
		}
		for _, login := range members {
			logins[login] = true
		}
	}
	return logins, nil
}
