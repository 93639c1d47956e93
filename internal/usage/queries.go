package usage

const (
	createUsageTablesSQL = `
		CREATE TABLE IF NOT EXISTS user_usage (
			user_id TEXT PRIMARY KEY,
			subscription_tier TEXT NOT NULL DEFAULT 'none',
			recipes_used_this_month INTEGER NOT NULL DEFAULT 0,
			month_started TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS anonymous_usage (
			fingerprint TEXT PRIMARY KEY,
			recipes_used_lifetime INTEGER NOT NULL DEFAULT 0,
			last_seen TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			ip TEXT NOT NULL DEFAULT ''
		);
	`

	queryGetUserUsage = `
		SELECT user_id, subscription_tier, recipes_used_this_month, month_started, updated_at
		FROM user_usage
		WHERE user_id = $1
	`

	queryGetAnonymousUsage = `
		SELECT fingerprint, recipes_used_lifetime, last_seen, ip
		FROM anonymous_usage
		WHERE fingerprint = $1
	`

	// $1 user, $2 tier, $3 current month, $4 limit (negative = unbounded).
	// the conflict WHERE makes check and increment one statement; no row is
	// returned when the counter is already at the ceiling.
	queryIncrementUserUsage = `
		INSERT INTO user_usage (user_id, subscription_tier, recipes_used_this_month, month_started, updated_at)
		SELECT $1::text, $2::text, 1, $3::text, NOW()
		WHERE $4::int <> 0
		ON CONFLICT (user_id) DO UPDATE SET
			recipes_used_this_month = CASE
				WHEN user_usage.month_started = EXCLUDED.month_started THEN user_usage.recipes_used_this_month + 1
				ELSE 1
			END,
			month_started = EXCLUDED.month_started,
			subscription_tier = EXCLUDED.subscription_tier,
			updated_at = NOW()
		WHERE $4::int < 0
			OR user_usage.month_started <> EXCLUDED.month_started
			OR user_usage.recipes_used_this_month < $4::int
		RETURNING user_id, subscription_tier, recipes_used_this_month, month_started, updated_at
	`

	// $1 fingerprint, $2 ip, $3 lifetime limit (negative = unbounded)
	queryIncrementAnonymousUsage = `
		INSERT INTO anonymous_usage (fingerprint, recipes_used_lifetime, last_seen, ip)
		SELECT $1::text, 1, NOW(), $2::text
		WHERE $3::int <> 0
		ON CONFLICT (fingerprint) DO UPDATE SET
			recipes_used_lifetime = anonymous_usage.recipes_used_lifetime + 1,
			last_seen = NOW(),
			ip = EXCLUDED.ip
		WHERE $3::int < 0 OR anonymous_usage.recipes_used_lifetime < $3::int
		RETURNING fingerprint, recipes_used_lifetime, last_seen, ip
	`
)
