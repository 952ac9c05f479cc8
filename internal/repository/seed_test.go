package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/timeledger/internal/db"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/testutil"
	"github.com/stretchr/testify/require"
)

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, d db.DBTX, name string, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name, opts...)
	require.NoError(t, NewSQLiteUserRepo(d).Create(context.Background(), u))
	return u
}

// seedTask inserts a project and one task under it.
func seedTask(t *testing.T, d db.DBTX, title string, opts ...testutil.TaskOption) (*domain.Project, *domain.Task) {
	t.Helper()
	ctx := context.Background()
	p := testutil.NewTestProject("")
	require.NoError(t, NewSQLiteProjectRepo(d).Create(ctx, p))
	task := testutil.NewTestTask(p.ID, title, opts...)
	require.NoError(t, NewSQLiteTaskRepo(d).Create(ctx, task))
	return p, task
}
