package profile

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadflowhq/leadflow/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations holds the embedded schema migrations for the profiles table,
// rooted at the migration files themselves. Pass it to pg.Migrate during
// startup.
var Migrations = mustSubFS(migrationsFS, "migrations")

func mustSubFS(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// counterColumns maps counters to their physical columns. Defined once here
// so an unmapped counter is impossible to reach at runtime; Counter.Valid
// and this table are the only two places a counter name exists.
var counterColumns = map[Counter]string{
	CounterTrialLeads:             "trial_leads",
	CounterTrialEmails:            "trial_emails",
	CounterTrialVoiceCalls:        "trial_voice_calls",
	CounterTrialAIEmails:          "trial_ai_emails",
	CounterTrialKeywordSearches:   "trial_keyword_searches",
	CounterTrialCampaigns:         "trial_campaigns",
	CounterMonthlyLeads:           "monthly_leads",
	CounterMonthlyEmails:          "monthly_emails",
	CounterMonthlyKeywordSearches: "monthly_keyword_searches",
}

const defaultOpTimeout = 5 * time.Second

// postgresStore implements Store on a pgx connection pool. Every mutation is
// a single SQL statement so the database is the serialization point; no
// operation reads a profile and writes it back.
type postgresStore struct {
	pool      *pgxpool.Pool
	opTimeout time.Duration
}

// PostgresOption configures the Postgres store.
type PostgresOption func(*postgresStore)

// WithOpTimeout bounds every store call. A store that exceeds the bound
// reports ErrUnavailable rather than blocking the request path.
func WithOpTimeout(d time.Duration) PostgresOption {
	return func(s *postgresStore) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// NewPostgresStore creates a Postgres-backed Store. Panics on a nil pool to
// fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) Store {
	if pool == nil {
		panic("profile: pgx pool is required")
	}

	s := &postgresStore{
		pool:      pool,
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *postgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// storeErr maps driver errors to the package taxonomy. Timeouts and
// connection failures collapse into ErrUnavailable so callers can fail
// closed without inspecting driver internals.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err):
		return ErrNotFound
	case pg.IsDuplicateKeyError(err):
		return ErrAlreadyExists
	default:
		return errors.Join(ErrUnavailable, err)
	}
}

const profileColumns = `user_id, email, first_name, raw_tier, trial_end,
	billing_customer_id, billing_interval, last_billing_event_at,
	trial_leads, trial_emails, trial_voice_calls, trial_ai_emails,
	trial_keyword_searches, trial_campaigns,
	monthly_leads, monthly_emails, monthly_keyword_searches, monthly_reset_at,
	created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.UserID, &p.Email, &p.FirstName, &p.RawTier, &p.TrialEnd,
		&p.BillingCustomerID, &p.BillingInterval, &p.LastBillingEventAt,
		&p.Usage.TrialLeads, &p.Usage.TrialEmails, &p.Usage.TrialVoiceCalls, &p.Usage.TrialAIEmails,
		&p.Usage.TrialKeywordSearches, &p.Usage.TrialCampaigns,
		&p.Usage.MonthlyLeads, &p.Usage.MonthlyEmails, &p.Usage.MonthlyKeywordSearches, &p.Usage.MonthlyResetAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	return &p, nil
}

func (s *postgresStore) Create(ctx context.Context, p *Profile) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (
			user_id, email, first_name, raw_tier, trial_end,
			billing_customer_id, billing_interval, last_billing_event_at,
			monthly_reset_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.UserID, p.Email, p.FirstName, p.RawTier, p.TrialEnd,
		p.BillingCustomerID, p.BillingInterval, p.LastBillingEventAt,
		p.Usage.MonthlyResetAt, p.CreatedAt, p.UpdatedAt,
	)
	return storeErr(err)
}

func (s *postgresStore) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (s *postgresStore) Update(ctx context.Context, userID uuid.UUID, changes Changes) error {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	args = append(args, userID)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.FirstName != nil {
		add("first_name", *changes.FirstName)
	}
	if changes.RawTier != nil {
		add("raw_tier", *changes.RawTier)
	}
	if changes.BillingCustomerID != nil {
		add("billing_customer_id", *changes.BillingCustomerID)
	}
	if changes.BillingInterval != nil {
		add("billing_interval", *changes.BillingInterval)
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at = now()")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles SET `+strings.Join(set, ", ")+` WHERE user_id = $1`, args...)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) IncrementCounter(ctx context.Context, userID uuid.UUID, counter Counter, amount int64) (int64, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return 0, ErrUnknownCounter
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Single-statement atomic add; the RETURNING clause gives the post-update
	// value without a second round trip.
	var newValue int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE profiles SET %s = %s + $2, updated_at = now()
		 WHERE user_id = $1 RETURNING %s`, column, column, column),
		userID, amount,
	).Scan(&newValue)
	if err != nil {
		return 0, storeErr(err)
	}
	return newValue, nil
}

func (s *postgresStore) ResetMonthlyUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Conditional update: only the caller whose observed timestamp still
	// matches performs the rollover, everyone else sees zero rows.
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET
			monthly_leads = 0,
			monthly_emails = 0,
			monthly_keyword_searches = 0,
			monthly_reset_at = $3,
			updated_at = now()
		WHERE user_id = $1 AND monthly_reset_at = $2`,
		userID, observed, next,
	)
	if err != nil {
		return false, storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return false, s.missingOrLost(ctx, userID)
	}
	return true, nil
}

func (s *postgresStore) ApplyBillingChange(ctx context.Context, userID uuid.UUID, occurredAt time.Time, change BillingChange) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Ordering guard and write-once customer linkage in one statement.
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET
			raw_tier = $2,
			billing_customer_id = CASE
				WHEN billing_customer_id = '' AND $3 <> '' THEN $3
				ELSE billing_customer_id
			END,
			billing_interval = CASE WHEN $4 <> '' THEN $4 ELSE billing_interval END,
			last_billing_event_at = $5,
			updated_at = now()
		WHERE user_id = $1 AND last_billing_event_at < $5`,
		userID, change.RawTier, change.BillingCustomerID, change.BillingInterval, occurredAt,
	)
	if err != nil {
		return false, storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return false, s.missingOrLost(ctx, userID)
	}
	return true, nil
}

// missingOrLost disambiguates a zero-row conditional update: the profile is
// either gone (ErrNotFound) or another caller won the race (nil).
func (s *postgresStore) missingOrLost(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) FindByBillingCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	if customerID == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE billing_customer_id = $1`, customerID)
	return scanProfile(row)
}

func (s *postgresStore) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	return scanProfile(row)
}
