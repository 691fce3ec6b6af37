package store

import (
	"context"
	"fmt"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

// GroupColumns is the allow-list of filterable/sortable group columns.
// "size" is the member-count alias of the listing query.
var GroupColumns = []string{
	"groups.id",
	"groups.name",
	"groups.description",
	"group_types.description",
	"groups.created_by",
	"groups.created_on",
	"size",
}

const groupJoins = "groups" +
	" LEFT JOIN group_types ON group_types.id = groups.group_type_id" +
	" LEFT JOIN group_members ON group_members.group_id = groups.id"

const (
	selectGroups = "SELECT groups.id, groups.name, groups.description," +
		" group_types.description AS group_type, groups.visibility, groups.created_by," +
		" groups.created_on, COUNT(group_members.id) AS size FROM " + groupJoins +
		"{{FILTER}}%s GROUP BY groups.id, group_types.description%s OFFSET ? LIMIT ?"

	countGroups = "SELECT COUNT(DISTINCT groups.id) AS total FROM " + groupJoins +
		"{{FILTER}}%s%s"

	selectGroupByID = "SELECT groups.id, groups.name, groups.description," +
		" group_types.description AS group_type, groups.visibility, groups.created_by," +
		" groups.created_on, COUNT(group_members.id) AS size FROM " + groupJoins +
		" WHERE groups.id = ? GROUP BY groups.id, group_types.description"

	selectGroupMemberIDs = "SELECT group_members.foreign_id FROM group_members WHERE group_members.group_id = ?"

	insertGroup = "INSERT INTO groups (group_type_id, name, description, visibility, created_by, created_on)" +
		" VALUES (?, ?, ?, false, ?, NOW()) RETURNING id"

	insertGroupMember = "INSERT INTO group_members (group_id, foreign_id)" +
		" VALUES (?, ?) ON CONFLICT DO NOTHING"

	deleteGroup        = "DELETE FROM groups WHERE id = ?"
	deleteGroupMembers = "DELETE FROM group_members WHERE group_id = ? AND foreign_id IN (%s)"

	updateGroupName       = "UPDATE groups SET name = ?, description = ?, updated_on = NOW() WHERE id = ?"
	updateGroupVisibility = "UPDATE groups SET visibility = ?, updated_on = NOW() WHERE id = ?"
)

const (
	groupBitsAdmin   = "1=1"
	groupBitsPublic  = "(groups.visibility = true)"
	groupBitsRegular = "(groups.created_by = ? OR groups.visibility = true)"
)

// GroupStore handles group visibility, membership and mutations.
type GroupStore struct {
	baseStore
}

func NewGroupStore(session db.Session, cfg config.Config) *GroupStore {
	return &GroupStore{baseStore: newBaseStore(session, cfg)}
}

func (s *GroupStore) permissionBits(user *types.UserAuth) (string, []interface{}, error) {
	if !s.cfg.UseAuthentication() {
		return groupBitsPublic, nil, nil
	}
	if user == nil || user.ID == nil {
		return "", nil, types.NewInsufficientPermissionsError()
	}
	if user.IsAdmin {
		return groupBitsAdmin, nil, nil
	}
	return groupBitsRegular, []interface{}{*user.ID}, nil
}

// HasAccess reports whether the caller may read or, with isEdit set, mutate
// the given group. A nil or negative group id is the "no group" sentinel and
// always grants access. Edit operations are refused outright when
// authentication is disabled or the deployment is read-only.
func (s *GroupStore) HasAccess(ctx context.Context, user *types.UserAuth, groupID *int64, isEdit bool) (bool, error) {
	if groupID == nil || *groupID < 0 {
		return true, nil
	}

	if isEdit && (!s.cfg.UseAuthentication() || s.cfg.ReadOnly()) {
		return false, nil
	}

	group, err := s.GetByID(ctx, *groupID)
	if err != nil {
		return false, err
	}
	if group == nil {
		return false, nil
	}

	if s.cfg.UseAuthentication() {
		if user == nil || user.ID == nil {
			return false, nil
		}
		if user.IsAdmin {
			return true, nil
		}
		owned := group.CreatedBy != nil && *group.CreatedBy == *user.ID
		if isEdit {
			return owned, nil
		}
		return owned || group.Visibility, nil
	}

	return group.Visibility, nil
}

// GetByID returns the group with the given id, or nil when it doesn't exist.
func (s *GroupStore) GetByID(ctx context.Context, groupID int64) (*types.Group, error) {
	rs, err := s.session.ExecuteIter(ctx, selectGroupByID, groupID)
	if err != nil {
		return nil, err
	}
	groups := parseGroups(rs)
	if len(groups) == 0 {
		return nil, nil
	}
	return &groups[0], nil
}

// GetAllForFilter returns the page of visible groups matching the filter,
// plus the total match count.
func (s *GroupStore) GetAllForFilter(ctx context.Context, user *types.UserAuth, filter *search.Query, p *search.Pagination) ([]types.Group, int64, error) {
	if err := p.UpdateSortColumn(GroupColumns, "groups.name"); err != nil {
		return nil, 0, err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return nil, 0, err
	}

	query, filterParams, err := search.Compile(filter, formatted(selectGroups, bits, p.SortQuery()), GroupColumns)
	if err != nil {
		return nil, 0, err
	}

	start, length := p.LimitParams()
	params := db.NewParams().
		Add(filterParams...).
		Add(bitParams...).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countFilterParams, err := search.Compile(filter, formatted(countGroups, bits, ""), GroupColumns)
	if err != nil {
		return nil, 0, err
	}
	countParams := db.NewParams().Add(countFilterParams...).Add(bitParams...)
	total, err := s.fetchTotal(ctx, countQuery, countParams.Values(), p)
	if err != nil {
		return nil, 0, err
	}

	return parseGroups(rs), total, nil
}

// GetMemberIDs collapses the group membership to the list of foreign ids.
func (s *GroupStore) GetMemberIDs(ctx context.Context, user *types.UserAuth, groupID int64) ([]int64, error) {
	allowed, err := s.HasAccess(ctx, user, &groupID, false)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, types.NewInsufficientPermissionsError()
	}

	rs, err := s.session.ExecuteIter(ctx, selectGroupMemberIDs, groupID)
	if err != nil {
		return nil, err
	}
	return db.ScalarLongs(rs, "foreign_id"), nil
}

// Create inserts a new private group owned by the caller.
func (s *GroupStore) Create(ctx context.Context, user *types.UserAuth, groupTypeID int64, name, description string) (*types.Group, error) {
	if s.cfg.ReadOnly() {
		return nil, types.NewReadOnlyModeError()
	}
	if !s.cfg.UseAuthentication() || user == nil || user.ID == nil {
		return nil, types.NewInsufficientPermissionsError()
	}

	rs, err := s.session.ExecuteIter(ctx, insertGroup, groupTypeID, name, description, *user.ID)
	if err != nil {
		return nil, err
	}
	ids := db.ScalarLongs(rs, "id")
	if len(ids) == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, ids[0])
}

// Delete removes the given groups. Denial surfaces as a typed failure so
// call sites must branch on it.
func (s *GroupStore) Delete(ctx context.Context, user *types.UserAuth, groupIDs []int64) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}

	for _, groupID := range groupIDs {
		id := groupID
		allowed, err := s.HasAccess(ctx, user, &id, true)
		if err != nil {
			return err
		}
		if !allowed {
			return types.NewInsufficientPermissionsError()
		}

		if err := s.session.Execute(ctx, deleteGroup, id); err != nil {
			return err
		}
	}
	return nil
}

// Rename updates name and description of a group the caller owns.
func (s *GroupStore) Rename(ctx context.Context, user *types.UserAuth, groupID int64, name, description string) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}

	allowed, err := s.HasAccess(ctx, user, &groupID, true)
	if err != nil {
		return err
	}
	if !allowed {
		return types.NewInsufficientPermissionsError()
	}

	return s.session.Execute(ctx, updateGroupName, name, description, groupID)
}

// SetVisibility flips a group between public and private.
func (s *GroupStore) SetVisibility(ctx context.Context, user *types.UserAuth, groupID int64, visible bool) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}

	allowed, err := s.HasAccess(ctx, user, &groupID, true)
	if err != nil {
		return err
	}
	if !allowed {
		return types.NewInsufficientPermissionsError()
	}

	return s.session.Execute(ctx, updateGroupVisibility, visible, groupID)
}

// AddMembers adds the given foreign ids to the group, skipping ids that are
// already members.
func (s *GroupStore) AddMembers(ctx context.Context, user *types.UserAuth, groupID int64, memberIDs []int64) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}

	allowed, err := s.HasAccess(ctx, user, &groupID, true)
	if err != nil {
		return err
	}
	if !allowed {
		return types.NewInsufficientPermissionsError()
	}

	for _, memberID := range memberIDs {
		if err := s.session.Execute(ctx, insertGroupMember, groupID, memberID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMembers removes the given foreign ids from the group.
func (s *GroupStore) RemoveMembers(ctx context.Context, user *types.UserAuth, groupID int64, memberIDs []int64) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}
	if len(memberIDs) == 0 {
		return nil
	}

	allowed, err := s.HasAccess(ctx, user, &groupID, true)
	if err != nil {
		return err
	}
	if !allowed {
		return types.NewInsufficientPermissionsError()
	}

	query := fmt.Sprintf(deleteGroupMembers, sqlPlaceholders(len(memberIDs)))
	params := db.NewParams().SetLong(groupID).SetLongs(memberIDs)
	return s.session.Execute(ctx, query, params.Values()...)
}

func parseGroups(rs db.ResultSet) []types.Group {
	rows := rs.Values()
	out := make([]types.Group, 0, len(rows))
	for _, row := range rows {
		group := types.Group{
			ID:          longVal(row, "id"),
			Name:        stringVal(row, "name"),
			Description: stringVal(row, "description"),
			GroupType:   stringVal(row, "group_type"),
			Visibility:  boolVal(row, "visibility"),
			CreatedBy:   longPtr(row, "created_by"),
			Size:        longVal(row, "size"),
		}
		if t := timePtr(row, "created_on"); t != nil {
			group.CreatedOn = *t
		}
		out = append(out, group)
	}
	return out
}
