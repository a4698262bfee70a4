package profile

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/leadflowhq/leadflow/pkg/plan"
)

// redisStore implements Store on a Redis hash per profile. Counter
// increments use the native HINCRBY; the conditional operations (monthly
// rollover, billing apply) run as Lua scripts so the compare and the write
// happen in one server-side step.
//
// Timestamps are stored as Unix milliseconds so Lua can compare them
// numerically.
type redisStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

// RedisOption configures the Redis store.
type RedisOption func(*redisStore)

// WithRedisOpTimeout bounds every store call.
func WithRedisOpTimeout(d time.Duration) RedisOption {
	return func(s *redisStore) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// NewRedisStore creates a Redis-backed Store. Panics on a nil client to fail
// fast during initialization.
func NewRedisStore(client *redis.Client, opts ...RedisOption) Store {
	if client == nil {
		panic("profile: redis client is required")
	}

	s := &redisStore{
		client:    client,
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func profileKey(userID uuid.UUID) string   { return "profile:" + userID.String() }
func emailKey(email string) string         { return "profile:email:" + email }
func customerKey(customerID string) string { return "profile:customer:" + customerID }

func (s *redisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func redisErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrNotFound
	default:
		return errors.Join(ErrUnavailable, err)
	}
}

// createScript refuses to overwrite an existing profile or email index entry.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
	return 0
end
for i = 1, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i+1])
end
redis.call('SET', KEYS[2], redis.call('HGET', KEYS[1], 'user_id'))
return 1
`)

func (s *redisStore) Create(ctx context.Context, p *Profile) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	fields := []any{
		"user_id", p.UserID.String(),
		"email", p.Email,
		"first_name", p.FirstName,
		"raw_tier", string(p.RawTier),
		"trial_end", strconv.FormatInt(p.TrialEnd.UnixMilli(), 10),
		"billing_customer_id", p.BillingCustomerID,
		"billing_interval", string(p.BillingInterval),
		"last_billing_event_at", strconv.FormatInt(p.LastBillingEventAt.UnixMilli(), 10),
		"trial_leads", p.Usage.TrialLeads,
		"trial_emails", p.Usage.TrialEmails,
		"trial_voice_calls", p.Usage.TrialVoiceCalls,
		"trial_ai_emails", p.Usage.TrialAIEmails,
		"trial_keyword_searches", p.Usage.TrialKeywordSearches,
		"trial_campaigns", p.Usage.TrialCampaigns,
		"monthly_leads", p.Usage.MonthlyLeads,
		"monthly_emails", p.Usage.MonthlyEmails,
		"monthly_keyword_searches", p.Usage.MonthlyKeywordSearches,
		"monthly_reset_at", strconv.FormatInt(p.Usage.MonthlyResetAt.UnixMilli(), 10),
		"created_at", strconv.FormatInt(p.CreatedAt.UnixMilli(), 10),
		"updated_at", strconv.FormatInt(p.UpdatedAt.UnixMilli(), 10),
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{profileKey(p.UserID), emailKey(p.Email)}, fields...).Int()
	if err != nil {
		return redisErr(err)
	}
	if created == 0 {
		return ErrAlreadyExists
	}
	if p.BillingCustomerID != "" {
		if err := s.client.Set(ctx, customerKey(p.BillingCustomerID), p.UserID.String(), 0).Err(); err != nil {
			return redisErr(err)
		}
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.load(ctx, userID)
}

func (s *redisStore) load(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	fields, err := s.client.HGetAll(ctx, profileKey(userID)).Result()
	if err != nil {
		return nil, redisErr(err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return parseProfile(userID, fields)
}

func parseProfile(userID uuid.UUID, fields map[string]string) (*Profile, error) {
	intField := func(name string) int64 {
		v, _ := strconv.ParseInt(fields[name], 10, 64)
		return v
	}
	timeField := func(name string) time.Time {
		return time.UnixMilli(intField(name)).UTC()
	}

	return &Profile{
		UserID:             userID,
		Email:              fields["email"],
		FirstName:          fields["first_name"],
		RawTier:            plan.Tier(fields["raw_tier"]),
		TrialEnd:           timeField("trial_end"),
		BillingCustomerID:  fields["billing_customer_id"],
		BillingInterval:    BillingInterval(fields["billing_interval"]),
		LastBillingEventAt: timeField("last_billing_event_at"),
		Usage: Usage{
			TrialLeads:             intField("trial_leads"),
			TrialEmails:            intField("trial_emails"),
			TrialVoiceCalls:        intField("trial_voice_calls"),
			TrialAIEmails:          intField("trial_ai_emails"),
			TrialKeywordSearches:   intField("trial_keyword_searches"),
			TrialCampaigns:         intField("trial_campaigns"),
			MonthlyLeads:           intField("monthly_leads"),
			MonthlyEmails:          intField("monthly_emails"),
			MonthlyKeywordSearches: intField("monthly_keyword_searches"),
			MonthlyResetAt:         timeField("monthly_reset_at"),
		},
		CreatedAt: timeField("created_at"),
		UpdatedAt: timeField("updated_at"),
	}, nil
}

// updateScript applies a partial update and keeps the email/customer lookup
// keys in sync with the hash.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local id = redis.call('HGET', KEYS[1], 'user_id')
for i = 2, #ARGV, 2 do
	local field, value = ARGV[i], ARGV[i+1]
	if field == 'email' then
		local old = redis.call('HGET', KEYS[1], 'email')
		if old then redis.call('DEL', 'profile:email:' .. old) end
		redis.call('SET', 'profile:email:' .. value, id)
	elseif field == 'billing_customer_id' then
		local old = redis.call('HGET', KEYS[1], 'billing_customer_id')
		if old and old ~= '' then redis.call('DEL', 'profile:customer:' .. old) end
		if value ~= '' then redis.call('SET', 'profile:customer:' .. value, id) end
	end
	redis.call('HSET', KEYS[1], field, value)
end
redis.call('HSET', KEYS[1], 'updated_at', ARGV[1])
return 1
`)

func (s *redisStore) Update(ctx context.Context, userID uuid.UUID, changes Changes) error {
	args := []any{strconv.FormatInt(time.Now().UnixMilli(), 10)}
	if changes.Email != nil {
		args = append(args, "email", *changes.Email)
	}
	if changes.FirstName != nil {
		args = append(args, "first_name", *changes.FirstName)
	}
	if changes.RawTier != nil {
		args = append(args, "raw_tier", string(*changes.RawTier))
	}
	if changes.BillingCustomerID != nil {
		args = append(args, "billing_customer_id", *changes.BillingCustomerID)
	}
	if changes.BillingInterval != nil {
		args = append(args, "billing_interval", string(*changes.BillingInterval))
	}
	if len(args) == 1 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := updateScript.Run(ctx, s.client, []string{profileKey(userID)}, args...).Int()
	if err != nil {
		return redisErr(err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// incrScript guards HINCRBY with an existence check so incrementing a
// missing profile does not silently create a stray hash.
var incrScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
`)

func (s *redisStore) IncrementCounter(ctx context.Context, userID uuid.UUID, counter Counter, amount int64) (int64, error) {
	if !counter.Valid() {
		return 0, ErrUnknownCounter
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	newValue, err := incrScript.Run(ctx, s.client,
		[]string{profileKey(userID)}, string(counter), amount).Int64()
	if err != nil {
		return 0, redisErr(err)
	}
	return newValue, nil
}

// resetScript performs the rollover only when the stored reset timestamp
// still matches the value the caller observed.
var resetScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'monthly_reset_at') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1],
	'monthly_leads', 0,
	'monthly_emails', 0,
	'monthly_keyword_searches', 0,
	'monthly_reset_at', ARGV[2],
	'updated_at', ARGV[3])
return 1
`)

func (s *redisStore) ResetMonthlyUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := resetScript.Run(ctx, s.client, []string{profileKey(userID)},
		strconv.FormatInt(observed.UnixMilli(), 10),
		strconv.FormatInt(next.UnixMilli(), 10),
		strconv.FormatInt(time.Now().UnixMilli(), 10),
	).Int()
	if err != nil {
		return false, redisErr(err)
	}
	switch res {
	case -1:
		return false, ErrNotFound
	case 0:
		return false, nil
	}
	return true, nil
}

// billingScript applies a tier transition guarded by the ordering token and
// keeps the customer lookup key in sync on first linkage.
var billingScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local last = tonumber(redis.call('HGET', KEYS[1], 'last_billing_event_at')) or 0
local occurred = tonumber(ARGV[1])
if occurred <= last then
	return 0
end
redis.call('HSET', KEYS[1], 'raw_tier', ARGV[2], 'last_billing_event_at', ARGV[1], 'updated_at', ARGV[5])
local linked = redis.call('HGET', KEYS[1], 'billing_customer_id')
if ARGV[3] ~= '' and (not linked or linked == '') then
	redis.call('HSET', KEYS[1], 'billing_customer_id', ARGV[3])
	redis.call('SET', 'profile:customer:' .. ARGV[3], redis.call('HGET', KEYS[1], 'user_id'))
end
if ARGV[4] ~= '' then
	redis.call('HSET', KEYS[1], 'billing_interval', ARGV[4])
end
return 1
`)

func (s *redisStore) ApplyBillingChange(ctx context.Context, userID uuid.UUID, occurredAt time.Time, change BillingChange) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := billingScript.Run(ctx, s.client, []string{profileKey(userID)},
		strconv.FormatInt(occurredAt.UnixMilli(), 10),
		string(change.RawTier),
		change.BillingCustomerID,
		string(change.BillingInterval),
		strconv.FormatInt(time.Now().UnixMilli(), 10),
	).Int()
	if err != nil {
		return false, redisErr(err)
	}
	switch res {
	case -1:
		return false, ErrNotFound
	case 0:
		return false, nil
	}
	return true, nil
}

func (s *redisStore) FindByBillingCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	if customerID == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.findByIndex(ctx, customerKey(customerID))
}

func (s *redisStore) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.findByIndex(ctx, emailKey(email))
}

func (s *redisStore) findByIndex(ctx context.Context, key string) (*Profile, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, redisErr(err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return s.load(ctx, userID)
}
