package service

import (
	"context"
	"fmt"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone"`
}

type MemberUpdate struct {
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func (s *Service) manager(ctx context.Context, c Caller) (*models.User, error) {
	if !c.Role.CanManage() {
		return nil, ErrForbidden
	}
	return s.store.Users.GetUser(ctx, c.ID)
}

// sameTeam reports whether target belongs to the caller's company. A caller
// without a company administers everyone.
func sameTeam(caller, target *models.User) bool {
	return caller.Company == "" || caller.Company == target.Company
}

// ListTeam returns the users of the caller's company.
func (s *Service) ListTeam(ctx context.Context, c Caller) ([]models.User, error) {
	me, err := s.manager(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.store.Users.ListUsers(ctx, me.Company)
}

func (s *Service) AddTeamMember(ctx context.Context, c Caller, in MemberInput) (*models.User, error) {
	me, err := s.manager(ctx, c)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, invalid("role", "must be admin, manager or member")
	}
	if me.Role != models.RoleAdmin && role != models.RoleMember {
		return nil, ErrForbidden
	}

	user, err := s.newAccount(ctx, in.Name, in.Email, in.Password, role, me.Company, in.Phone)
	if err != nil {
		return nil, err
	}
	s.record(ctx, c, models.ActionTeamMemberAdded, activity.UserTarget(user), activity.Metadata{activity.MetaRole: string(role)})
	return user, nil
}

func (s *Service) UpdateTeamMember(ctx context.Context, c Caller, id primitive.ObjectID, in MemberUpdate) (*models.User, error) {
	me, err := s.manager(ctx, c)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sameTeam(me, user) {
		return nil, ErrForbidden
	}
	if me.Role != models.RoleAdmin && user.Role != models.RoleMember {
		return nil, ErrForbidden
	}

	var changes []string
	if in.Role != nil && *in.Role != user.Role {
		if !in.Role.Valid() {
			return nil, invalid("role", "must be admin, manager or member")
		}
		if me.Role != models.RoleAdmin || user.ID == me.ID {
			return nil, ErrForbidden
		}
		user.Role = *in.Role
		changes = append(changes, "role")
	}
	if in.IsActive != nil && *in.IsActive != user.IsActive {
		if user.ID == me.ID {
			return nil, invalid("isActive", "cannot change your own account status")
		}
		user.IsActive = *in.IsActive
		changes = append(changes, "isActive")
	}
	if len(changes) == 0 {
		return user, nil
	}

	user.UpdatedAt = s.now()
	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update team member: %w", err)
	}
	s.record(ctx, c, models.ActionTeamMemberUpdated, activity.UserTarget(user), activity.Metadata{
		activity.MetaChanges: changes,
		activity.MetaRole:    string(user.Role),
	})
	return user, nil
}

// RemoveTeamMember deactivates the account. Users are never hard deleted so
// their tasks, comments and audit entries keep resolving.
func (s *Service) RemoveTeamMember(ctx context.Context, c Caller, id primitive.ObjectID) error {
	me, err := s.manager(ctx, c)
	if err != nil {
		return err
	}
	if id == me.ID {
		return invalid("id", "cannot remove yourself")
	}
	user, err := s.store.Users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !sameTeam(me, user) || (me.Role != models.RoleAdmin && user.Role != models.RoleMember) {
		return ErrForbidden
	}
	if !user.IsActive {
		return nil
	}

	user.IsActive = false
	user.UpdatedAt = s.now()
	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("deactivate team member: %w", err)
	}
	s.record(ctx, c, models.ActionTeamMemberRemoved, activity.UserTarget(user), nil)
	return nil
}
