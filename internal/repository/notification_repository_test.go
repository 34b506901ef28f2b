package repository_test

import (
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"

	"github.com/weddify/marketplace/internal/domain/notification"
	"github.com/weddify/marketplace/internal/repository"
)

type notificationRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      *repository.NotificationRepository
	container testcontainers.Container
}

func TestNotificationRepositorySuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(notificationRepositorySuite))
}

func (s *notificationRepositorySuite) SetupSuite() {
	ctx := s.T().Context()

	var err error
	s.container, s.pool, err = startPostgres(ctx)
	s.Require().NoError(err)

	s.repo = repository.NewNotificationRepository(s.pool)
}

func (s *notificationRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	terminate(s.container)
}

// insertOrder creates the order row the notification foreign key needs.
func (s *notificationRepositorySuite) insertOrder() int64 {
	t := s.T()
	ctx := t.Context()

	customerID, err := insertCustomer(ctx, s.pool, "customer")
	require.NoError(t, err)

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, customer_name, customer_email, total_amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		"ORD"+gofakeit.DigitN(14), customerID, gofakeit.Name(), gofakeit.Email(),
		decimal.RequireFromString("1000")).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *notificationRepositorySuite) insertVendor() uuid.UUID {
	id, err := insertCustomer(s.T().Context(), s.pool, "vendor")
	require.NoError(s.T(), err)
	return id
}

func (s *notificationRepositorySuite) TestGetOrCreate_Idempotent() {
	t := s.T()
	ctx := t.Context()

	orderID := s.insertOrder()
	vendorID := s.insertVendor()

	first, err := s.repo.GetOrCreate(ctx, orderID, vendorID)
	require.NoError(t, err)
	require.False(t, first.EmailSent)
	require.False(t, first.Viewed)

	second, err := s.repo.GetOrCreate(ctx, orderID, vendorID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "one row per (order, vendor)")
}

func (s *notificationRepositorySuite) TestGetOrCreate_Concurrent() {
	t := s.T()
	ctx := t.Context()

	orderID := s.insertOrder()
	vendorID := s.insertVendor()

	const workers = 16
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.repo.GetOrCreate(ctx, orderID, vendorID)
			if err == nil {
				ids[i] = n.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id, "concurrent creates must converge on one row")
	}
}

func (s *notificationRepositorySuite) TestMarkEmailSent() {
	t := s.T()
	ctx := t.Context()

	n, err := s.repo.GetOrCreate(ctx, s.insertOrder(), s.insertVendor())
	require.NoError(t, err)

	sentAt := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.repo.MarkEmailSent(ctx, n.ID, sentAt))

	got, err := s.repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, got.EmailSent)
	require.NotNil(t, got.EmailSentAt)
}

func (s *notificationRepositorySuite) TestMarkViewed_KeepsFirstTimestamp() {
	t := s.T()
	ctx := t.Context()

	n, err := s.repo.GetOrCreate(ctx, s.insertOrder(), s.insertVendor())
	require.NoError(t, err)

	first, err := s.repo.MarkViewed(ctx, n.ID, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, first.Viewed)
	require.NotNil(t, first.ViewedAt)

	second, err := s.repo.MarkViewed(ctx, n.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, second.Viewed)
	require.Equal(t, first.ViewedAt.UTC(), second.ViewedAt.UTC(),
		"viewed_at is stamped once")
}

func (s *notificationRepositorySuite) TestMarkViewed_NotFound() {
	_, err := s.repo.MarkViewed(s.T().Context(), 999999, time.Now())
	require.ErrorIs(s.T(), err, notification.ErrNotFound)
}

func (s *notificationRepositorySuite) TestListByVendor_NewestFirst() {
	t := s.T()
	ctx := t.Context()

	vendorID := s.insertVendor()
	var created []int64
	for i := 0; i < 3; i++ {
		n, err := s.repo.GetOrCreate(ctx, s.insertOrder(), vendorID)
		require.NoError(t, err)
		created = append(created, n.ID)
	}

	list, err := s.repo.ListByVendor(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, created[2], list[0].ID)
}
