package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMemoryRepo returns a memory store whose clock advances one minute per user.
func newTestMemoryRepo() *memoryRepository {
	r := NewMemoryRepository().(*memoryRepository)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return r
}

func seedUser(t *testing.T, r Repository, username string) *User {
	t.Helper()
	u := &User{Username: username, Email: username + "@x.com", Status: StatusActive}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func usernames(users []*User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names
}

func TestPageRequestNormalize(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		p, err := PageRequest{PageSize: 5}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, SortByCreatedAt, p.SortBy)
		assert.Equal(t, SortDesc, p.SortOrder)
	})

	t.Run("Sort Order Is Case Insensitive", func(t *testing.T) {
		p, err := PageRequest{PageSize: 5, SortBy: SortByEmail, SortOrder: "asc"}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, SortAsc, p.SortOrder)
	})

	invalid := map[string]PageRequest{
		"Zero Page Size":     {PageIndex: 0, PageSize: 0},
		"Negative Page Size": {PageIndex: 0, PageSize: -3},
		"Negative Index":     {PageIndex: -1, PageSize: 10},
		"Unknown Sort Key":   {PageSize: 10, SortBy: "password_hash"},
		"Unknown Sort Order": {PageSize: 10, SortOrder: "sideways"},
		"Offset Overflow":    {PageIndex: 1 << 40, PageSize: 1 << 20},
	}
	for name, p := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := p.Normalize()
			assert.ErrorIs(t, err, ErrInvalidPageRequest)
		})
	}
}

func TestExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid Page Request", func(t *testing.T) {
		e := NewExecutor(newTestMemoryRepo(), 0)

		_, err := e.Execute(ctx, Filter{}, PageRequest{PageIndex: 0, PageSize: 0})
		assert.ErrorIs(t, err, ErrInvalidPageRequest)

		_, err = e.Execute(ctx, Filter{}, PageRequest{PageIndex: -1, PageSize: 10})
		assert.ErrorIs(t, err, ErrInvalidPageRequest)
	})

	t.Run("Max Page Size", func(t *testing.T) {
		e := NewExecutor(newTestMemoryRepo(), 50)

		_, err := e.Execute(ctx, Filter{}, PageRequest{PageSize: 51})
		assert.ErrorIs(t, err, ErrInvalidPageRequest)

		res, err := e.Execute(ctx, Filter{}, PageRequest{PageSize: 50})
		require.NoError(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("Username Contains", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for _, name := range []string{"alice", "bob", "alison"} {
			seedUser(t, repo, name)
		}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Compose(UsernameContains("ALI")), PageRequest{PageSize: 10, SortBy: SortByUsername, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "alison"}, usernames(res.Items))
		assert.Equal(t, 2, res.Total)
	})

	t.Run("Search Text Keeps Its Spaces", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for _, name := range []string{"alice", "mary ali"} {
			seedUser(t, repo, name)
		}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Compose(UsernameContains(" ali")), DefaultPageRequest())
		require.NoError(t, err)
		assert.Equal(t, []string{"mary ali"}, usernames(res.Items))
	})

	t.Run("Text Sort Ignores Case", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for _, name := range []string{"Bob", "alice", "carol"} {
			seedUser(t, repo, name+"1")
		}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Filter{}, PageRequest{PageSize: 10, SortBy: SortByUsername, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice1", "Bob1", "carol1"}, usernames(res.Items))
	})

	t.Run("Email Is Case Insensitive", func(t *testing.T) {
		repo := newTestMemoryRepo()
		seedUser(t, repo, "foo")
		u := &User{Username: "bar", Email: "foo@bar.com", Status: StatusActive}
		require.NoError(t, repo.Create(ctx, u))
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Compose(HasEmail("Foo@Bar.com")), DefaultPageRequest())
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, u.ID, res.Items[0].ID)
	})

	t.Run("Role Filter Deduplicates Users", func(t *testing.T) {
		repo := newTestMemoryRepo()
		alice := seedUser(t, repo, "alice")
		bob := seedUser(t, repo, "bob")
		seedUser(t, repo, "carol")

		admin := RoleBrief{ID: "r-admin", Name: "Admin"}
		// alice reaches the role through two association rows.
		repo.memberships[alice.ID] = []RoleBrief{admin, admin}
		repo.memberships[bob.ID] = []RoleBrief{admin}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Compose(HasRole("admin")), PageRequest{PageSize: 10, SortBy: SortByUsername, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, usernames(res.Items))
		assert.Equal(t, 2, res.Total)

		// Without the distinct flag the joined rows leak through.
		raw := Filter{Predicates: []Predicate{*HasRole("admin")}}
		res, err = e.Execute(ctx, raw, PageRequest{PageSize: 10, SortBy: SortByUsername, SortOrder: SortAsc})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("Pages Partition The Result", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for i := 0; i < 7; i++ {
			u := seedUser(t, repo, fmt.Sprintf("user%d", i))
			if i%2 == 0 {
				repo.memberships[u.ID] = []RoleBrief{{ID: "r1", Name: "staff"}, {ID: "r1", Name: "staff"}}
			}
		}
		e := NewExecutor(repo, 0)
		filter := Compose(HasRole("STAFF"))

		var all []string
		for page := 0; ; page++ {
			res, err := e.Execute(ctx, filter, PageRequest{PageIndex: page, PageSize: 3, SortBy: SortByUsername, SortOrder: SortAsc})
			require.NoError(t, err)
			assert.Equal(t, 4, res.Total)
			if len(res.Items) == 0 {
				break
			}
			all = append(all, usernames(res.Items)...)
		}
		assert.Equal(t, []string{"user0", "user2", "user4", "user6"}, all)
	})

	t.Run("Page Beyond The End", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for _, name := range []string{"alice", "bob", "carol"} {
			seedUser(t, repo, name)
		}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Filter{}, PageRequest{PageIndex: 5, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 5, res.PageIndex)
	})

	t.Run("Ties Break On Identity", func(t *testing.T) {
		repo := newTestMemoryRepo()
		fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return fixed }
		for i := 0; i < 5; i++ {
			seedUser(t, repo, fmt.Sprintf("u%d", i))
		}
		e := NewExecutor(repo, 0)

		var ids []string
		for page := 0; page < 3; page++ {
			res, err := e.Execute(ctx, Filter{}, PageRequest{PageIndex: page, PageSize: 2})
			require.NoError(t, err)
			for _, u := range res.Items {
				ids = append(ids, u.ID)
			}
		}
		require.Len(t, ids, 5)
		assert.IsIncreasing(t, ids)
	})

	t.Run("Default Sort Is Newest First", func(t *testing.T) {
		repo := newTestMemoryRepo()
		for _, name := range []string{"first", "second", "third"} {
			seedUser(t, repo, name)
		}
		e := NewExecutor(repo, 0)

		res, err := e.Execute(ctx, Filter{}, DefaultPageRequest())
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, usernames(res.Items))
	})
}

func TestPageWindow(t *testing.T) {
	users := []*User{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Len(t, pageWindow(users, PageRequest{PageIndex: 0, PageSize: 2}), 2)
	assert.Len(t, pageWindow(users, PageRequest{PageIndex: 1, PageSize: 2}), 1)
	assert.Empty(t, pageWindow(users, PageRequest{PageIndex: 2, PageSize: 2}))
}
