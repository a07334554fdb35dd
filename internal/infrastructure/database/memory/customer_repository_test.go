package memory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo() *CustomerRepository {
	return NewCustomerRepository(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seed(t *testing.T, repo *CustomerRepository, names ...string) []*customer.Customer {
	t.Helper()
	out := make([]*customer.Customer, 0, len(names))
	for _, name := range names {
		c := customer.NewCustomer(name, "1 Main St", "555", name+"@example.com", "4111")
		require.NoError(t, repo.Create(context.Background(), c))
		out = append(out, c)
	}
	return out
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := newRepo()

	created := seed(t, repo, "Alex", "Sally")

	assert.Equal(t, int64(1), created[0].ID)
	assert.Equal(t, int64(2), created[1].ID)
	assert.False(t, created[0].CreatedAt.IsZero())
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	repo := newRepo()
	created := seed(t, repo, "Alex")

	removed, err := repo.Delete(context.Background(), created[0].ID)
	require.NoError(t, err)
	require.True(t, removed)

	next := seed(t, repo, "Sally")
	assert.Equal(t, int64(2), next[0].ID)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	repo := newRepo()
	created := seed(t, repo, "Alex")

	found, err := repo.FindByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	found.Name = "Mutated"

	again, err := repo.FindByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", again.Name)
}

func TestFindByIDNotFound(t *testing.T) {
	_, err := newRepo().FindByID(context.Background(), 42)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindAllKeepsInsertionOrderAndFilters(t *testing.T) {
	repo := newRepo()
	seed(t, repo, "Alex", "Sally", "John", "Sally")

	all, err := repo.FindAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, c := range all {
		assert.Equal(t, int64(i+1), c.ID)
	}

	sallies, err := repo.FindAll(context.Background(), "Sally")
	require.NoError(t, err)
	require.Len(t, sallies, 2)
	assert.Equal(t, int64(2), sallies[0].ID)
	assert.Equal(t, int64(4), sallies[1].ID)

	none, err := repo.FindAll(context.Background(), "sally")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdate(t *testing.T) {
	repo := newRepo()
	created := seed(t, repo, "Alex", "Sally")

	replacement := customer.NewCustomer("Alexander", "2 Side St", "556", "a@x.io", "5500")
	replacement.ID = created[0].ID
	require.NoError(t, repo.Update(context.Background(), replacement))

	found, err := repo.FindByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alexander", found.Name)
	assert.Equal(t, created[0].CreatedAt, found.CreatedAt)

	replacement.ID = 99
	assert.ErrorIs(t, repo.Update(context.Background(), replacement), apperrors.ErrNotFound)
}

func TestDeleteKeepsIndexConsistent(t *testing.T) {
	repo := newRepo()
	created := seed(t, repo, "Alex", "Sally", "John")

	removed, err := repo.Delete(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)

	john, err := repo.FindByID(context.Background(), created[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "John", john.Name)
}

func TestSetActiveStatusAndCount(t *testing.T) {
	repo := newRepo()
	created := seed(t, repo, "Alex", "Sally")

	cust, err := repo.SetActiveStatus(context.Background(), created[1].ID, false)
	require.NoError(t, err)
	assert.False(t, cust.Active)

	active, inactive, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
	assert.Equal(t, int64(1), inactive)

	_, err = repo.SetActiveStatus(context.Background(), 77, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRepo().FindAll(ctx, "")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentCreateAssignsUniqueIDs(t *testing.T) {
	repo := newRepo()
	const workers = 50

	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := customer.NewCustomer("", "addr", "p", "e", "c")
			if err := repo.Create(context.Background(), c); err == nil {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
