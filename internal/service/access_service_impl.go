package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timeledger/internal/access"
	"github.com/alexanderramin/timeledger/internal/domain"
)

type accessService struct {
	resolver *access.Resolver
	observer UseCaseObserver
}

func NewAccessService(resolver *access.Resolver, observers ...UseCaseObserver) AccessService {
	return &accessService{resolver: resolver, observer: useCaseObserverOrNoop(observers)}
}

func (s *accessService) CanAct(ctx context.Context, userID, taskID int64) (bool, error) {
	d, err := s.Explain(ctx, userID, taskID)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

func (s *accessService) Explain(ctx context.Context, userID, taskID int64) (d access.Decision, err error) {
	fields := map[string]any{"user_id": userID, "task_id": taskID}
	defer observe(ctx, s.observer, "access-decide", time.Now(), fields, &err)

	if err = requireIDs(map[string]int64{"user_id": userID, "task_id": taskID}); err != nil {
		return access.Decision{}, err
	}
	d, err = s.resolver.Decide(ctx, userID, taskID)
	if err != nil {
		return access.Decision{}, err
	}
	fields["allowed"] = d.Allowed
	fields["rule"] = d.Rule
	return d, nil
}

// ExplainFor is Explain on behalf of callerID. Anyone may ask about
// themselves; asking about another user takes an admin.
func (s *accessService) ExplainFor(ctx context.Context, callerID, userID, taskID int64) (access.Decision, error) {
	if err := requireIDs(map[string]int64{"caller_id": callerID}); err != nil {
		return access.Decision{}, err
	}
	if callerID != userID {
		role, err := s.resolver.Role(ctx, callerID)
		if err != nil {
			return access.Decision{}, err
		}
		if role != domain.RoleAdmin {
			return access.Decision{}, fmt.Errorf("user %d may not inspect access of user %d: %w", callerID, userID, domain.ErrUnauthorized)
		}
	}
	return s.Explain(ctx, userID, taskID)
}

// Authorize is CanAct with a denial turned into ErrUnauthorized.
func (s *accessService) Authorize(ctx context.Context, userID, taskID int64) error {
	ok, err := s.CanAct(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d may not act on task %d: %w", userID, taskID, domain.ErrUnauthorized)
	}
	return nil
}
