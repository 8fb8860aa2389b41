package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dserve-api/models"
	"dserve-api/store/gormstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := gormstore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Store{
		"memory":     NewMemory(),
		"persistent": NewPersistent(db),
	}
}

func TestStoreContract(t *testing.T) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 12; i++ {
				uid := "cashier-1"
				if i%3 == 0 {
					uid = "owner-1"
				}
				added, err := s.Add(ctx, models.LoginSession{
					UserID: uid, Username: uid, Role: models.RoleCashier,
					LoginTime: base.Add(time.Duration(i) * time.Minute),
					IPAddress: "10.0.0.1", UserAgent: "till",
				})
				require.NoError(t, err)
				assert.NotEmpty(t, added.ID)
			}

			recent, err := s.Recent(ctx, 0)
			require.NoError(t, err)
			require.Len(t, recent, DefaultRecentLimit)
			assert.True(t, recent[0].LoginTime.Equal(base.Add(11*time.Minute)))

			three, err := s.Recent(ctx, 3)
			require.NoError(t, err)
			assert.Len(t, three, 3)

			n, err := s.Clear(ctx, "owner-1")
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			left, err := s.Recent(ctx, 100)
			require.NoError(t, err)
			assert.Len(t, left, 8)
			for _, ls := range left {
				assert.Equal(t, "cashier-1", ls.UserID)
			}

			n, err = s.Clear(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 8, n)
		})
	}
}

func TestMemoryAddStampsTime(t *testing.T) {
	m := NewMemory()
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	s, err := m.Add(context.Background(), models.LoginSession{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, fixed, s.LoginTime)
}

func TestMemoryConcurrentAdd(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Add(context.Background(), models.LoginSession{UserID: fmt.Sprint(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	all, err := m.Recent(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
