//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// setupTestDB starts one PostgreSQL container per test binary, migrates it
// and returns a pool connected to it. DRILLSCHED_TEST_DATABASE_URL skips the
// container and uses an existing database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	containerOnce.Do(func() {
		if dsn := os.Getenv("DRILLSCHED_TEST_DATABASE_URL"); dsn != "" {
			containerDSN = dsn
		} else {
			containerDSN, containerErr = startContainer()
		}
		if containerErr == nil {
			containerErr = migrateDSN(containerDSN)
		}
	})
	if containerErr != nil {
		t.Fatalf("failed to set up test database: %v", containerErr)
	}

	db, err := sql.Open("pgx", containerDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "drills",
			"POSTGRES_PASSWORD": "drills",
			"POSTGRES_DB":       "drills",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://drills:drills@%s:%s/drills?sslmode=disable", host, port.Port()), nil
}

func migrateDSN(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return Migrate(ctx, db)
}

func insertDrill(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO drills (id, name, category, default_reps) VALUES ($1, $2, $3, $4)`,
		id, name, "footwork", 10,
	)
	require.NoError(t, err)
	return id
}

func newState(t *testing.T, owner, drill uuid.UUID, now time.Time) *domain.PracticeState {
	t.Helper()
	s, err := domain.NewPracticeState(owner, drill, now, time.UTC)
	require.NoError(t, err)
	return s
}

func TestPostgresPracticeStore_EnsureIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	s := NewPostgresPracticeStore(db, nil)
	ctx := context.Background()

	owner := uuid.New()
	drill := insertDrill(t, db, "Cone weave")
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	first, err := s.Ensure(ctx, newState(t, owner, drill, now))
	require.NoError(t, err)

	second, err := s.Ensure(ctx, newState(t, owner, drill, now.Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2025-05-02", domain.FormatDate(second.NextDueDate))
	assert.True(t, now.Equal(second.LastPracticedAt))
}

func TestPostgresPracticeStore_EnsureUnknownDrill(t *testing.T) {
	db := setupTestDB(t)
	s := NewPostgresPracticeStore(db, nil)

	_, err := s.Ensure(context.Background(), newState(t, uuid.New(), uuid.New(), time.Now()))
	assert.ErrorIs(t, err, store.ErrDrillNotFound)
}

func TestPostgresPracticeStore_UpdateAndGet(t *testing.T) {
	db := setupTestDB(t)
	s := NewPostgresPracticeStore(db, nil)
	ctx := context.Background()

	owner := uuid.New()
	drill := insertDrill(t, db, "Wall pass")
	state, err := s.Ensure(ctx, newState(t, owner, drill, time.Now()))
	require.NoError(t, err)

	state.EaseFactor = 2.6
	state.Repetitions = 1
	state.NextDueDate = time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(ctx, state))

	got, err := s.Get(ctx, owner, drill)
	require.NoError(t, err)
	assert.InDelta(t, 2.6, got.EaseFactor, 1e-9)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, "2025-05-09", domain.FormatDate(got.NextDueDate))

	missing := newState(t, uuid.New(), drill, time.Now())
	assert.ErrorIs(t, s.Update(ctx, missing), store.ErrPracticeNotFound)

	_, err = s.Get(ctx, uuid.New(), drill)
	assert.ErrorIs(t, err, store.ErrPracticeNotFound)
}

func TestPostgresPracticeStore_DueQueries(t *testing.T) {
	db := setupTestDB(t)
	s := NewPostgresPracticeStore(db, nil)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	dueDates := []int{3, 1, 2, 9}
	for i, offset := range dueDates {
		drill := insertDrill(t, db, fmt.Sprintf("Drill %d", i))
		st, err := s.Ensure(ctx, newState(t, owner, drill, base))
		require.NoError(t, err)
		st.NextDueDate = domain.AddDays(base, offset)
		require.NoError(t, s.Update(ctx, st))

		_, err = s.Ensure(ctx, newState(t, other, drill, base.AddDate(0, 0, -10)))
		require.NoError(t, err)
	}

	asOf := domain.AddDays(base, 3)
	due, err := s.ListDue(ctx, owner, asOf, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	for i := 1; i < len(due); i++ {
		assert.False(t, due[i].State.NextDueDate.Before(due[i-1].State.NextDueDate))
	}
	for _, d := range due {
		assert.Equal(t, owner, d.State.OwnerID)
		require.NotNil(t, d.Drill)
		assert.Equal(t, "footwork", d.Drill.Category)
	}

	limited, err := s.ListDue(ctx, owner, asOf, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	count, err := s.CountDue(ctx, owner, asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	days, err := s.CountByDueDate(ctx, owner, domain.AddDays(base, 1), domain.AddDays(base, 9))
	require.NoError(t, err)
	require.Len(t, days, 4)
	assert.Equal(t, "2025-05-02", domain.FormatDate(days[0].Date))
	assert.Equal(t, "2025-05-10", domain.FormatDate(days[3].Date))
}

func TestPostgresPracticeStore_GetForUpdateSerializes(t *testing.T) {
	db := setupTestDB(t)
	s := NewPostgresPracticeStore(db, nil)
	ctx := context.Background()

	owner := uuid.New()
	drill := insertDrill(t, db, "Rondo")
	_, err := s.Ensure(ctx, newState(t, owner, drill, time.Now()))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				txStore := s.WithTx(tx)
				st, err := txStore.GetForUpdate(ctx, owner, drill)
				if err != nil {
					return err
				}
				st.Repetitions++
				return txStore.Update(ctx, st)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, owner, drill)
	require.NoError(t, err)
	assert.Equal(t, workers, got.Repetitions)
}
