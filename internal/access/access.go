// Package access decides whether a user may act on a task. The decision is
// an ordered list of rules; the first rule that allows wins and the rules
// after it are never evaluated.
package access

import (
	"context"
	"fmt"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// Facts supplies the individual lookups the default rules need.
type Facts interface {
	UserRole(ctx context.Context, userID int64) (domain.Role, error)
	Task(ctx context.Context, taskID int64) (*domain.Task, error)
	IsAssigned(ctx context.Context, userID, taskID int64) (bool, error)
	IsTeamMember(ctx context.Context, userID, teamID int64) (bool, error)
	InProjectTeam(ctx context.Context, userID, projectID int64) (bool, error)
	HasProjectHistory(ctx context.Context, userID, projectID int64) (bool, error)
}

// Subject is what a rule is asked about. Task is loaded once by the
// resolver before any rule runs.
type Subject struct {
	UserID int64
	Task   *domain.Task
}

// Rule is one named step of the decision chain.
type Rule struct {
	Name  string
	Check func(ctx context.Context, facts Facts, s Subject) (bool, error)
}

// Decision is the outcome of Decide. Rule names the rule that allowed, and
// is empty on deny.
type Decision struct {
	Allowed bool
	Rule    string
}

// Rule names of the default chain.
const (
	RuleRole        = "role"
	RuleAssignment  = "assignment"
	RuleTeam        = "team"
	RuleProjectTeam = "project_team"
	RuleHistory     = "history"
)

// Role allows admins and developers on every task.
func Role() Rule {
	return Rule{Name: RuleRole, Check: func(ctx context.Context, f Facts, s Subject) (bool, error) {
		role, err := f.UserRole(ctx, s.UserID)
		if err != nil {
			return false, err
		}
		return role.Elevated(), nil
	}}
}

// Assignment allows users directly assigned to the task.
func Assignment() Rule {
	return Rule{Name: RuleAssignment, Check: func(ctx context.Context, f Facts, s Subject) (bool, error) {
		return f.IsAssigned(ctx, s.UserID, s.Task.ID)
	}}
}

// Team allows members of the task's team, in any team role.
func Team() Rule {
	return Rule{Name: RuleTeam, Check: func(ctx context.Context, f Facts, s Subject) (bool, error) {
		if s.Task.TeamID == nil {
			return false, nil
		}
		return f.IsTeamMember(ctx, s.UserID, *s.Task.TeamID)
	}}
}

// ProjectTeam allows members of any team linked to the task's project, but
// only for tasks without a team of their own.
func ProjectTeam() Rule {
	return Rule{Name: RuleProjectTeam, Check: func(ctx context.Context, f Facts, s Subject) (bool, error) {
		if s.Task.TeamID != nil {
			return false, nil
		}
		return f.InProjectTeam(ctx, s.UserID, s.Task.ProjectID)
	}}
}

// History allows users who have logged any time against the task's
// project. It keeps legacy users working whose assignments were never
// recorded.
func History() Rule {
	return Rule{Name: RuleHistory, Check: func(ctx context.Context, f Facts, s Subject) (bool, error) {
		return f.HasProjectHistory(ctx, s.UserID, s.Task.ProjectID)
	}}
}

// DefaultRules is the standard chain in evaluation order.
func DefaultRules() []Rule {
	return []Rule{Role(), Assignment(), Team(), ProjectTeam(), History()}
}

// Resolver evaluates a rule chain against a Facts source.
type Resolver struct {
	facts Facts
	rules []Rule
}

// NewResolver builds a resolver. With no rules it uses DefaultRules.
func NewResolver(facts Facts, rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{facts: facts, rules: rules}
}

// Role reports userID's role; an unknown user is ErrNotFound.
func (r *Resolver) Role(ctx context.Context, userID int64) (domain.Role, error) {
	return r.facts.UserRole(ctx, userID)
}

// Decide runs the chain for userID on taskID. An unknown task or user is
// ErrNotFound rather than a deny.
func (r *Resolver) Decide(ctx context.Context, userID, taskID int64) (Decision, error) {
	task, err := r.facts.Task(ctx, taskID)
	if err != nil {
		return Decision{}, err
	}
	// Resolve the user up front so a missing user is never mistaken for a
	// deny by rules that only look at join tables.
	if _, err := r.facts.UserRole(ctx, userID); err != nil {
		return Decision{}, err
	}

	s := Subject{UserID: userID, Task: task}
	for _, rule := range r.rules {
		ok, err := rule.Check(ctx, r.facts, s)
		if err != nil {
			return Decision{}, fmt.Errorf("access rule %s: %w", rule.Name, err)
		}
		if ok {
			return Decision{Allowed: true, Rule: rule.Name}, nil
		}
	}
	return Decision{}, nil
}
