package ledger

const (
	createLedgerTableSQL = `
		CREATE TABLE IF NOT EXISTS spending_ledger (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			daily_date TEXT NOT NULL DEFAULT '',
			daily_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			monthly_month TEXT NOT NULL DEFAULT '',
			monthly_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			paused BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		INSERT INTO spending_ledger (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
	`

	// $1 amount, $2 current day, $3 current month, $4 daily ceiling, $5 monthly ceiling.
	// right-hand column references see the pre-update row, so reset and add
	// happen in one atomic statement.
	addSpendSQL = `
		UPDATE spending_ledger SET
			daily_amount = CASE WHEN daily_date = $2 THEN daily_amount ELSE 0 END + $1,
			daily_date = $2,
			monthly_amount = CASE WHEN monthly_month = $3 THEN monthly_amount ELSE 0 END + $1,
			monthly_month = $3,
			paused = ($4 > 0 AND CASE WHEN daily_date = $2 THEN daily_amount ELSE 0 END + $1 >= $4)
				OR ($5 > 0 AND CASE WHEN monthly_month = $3 THEN monthly_amount ELSE 0 END + $1 >= $5),
			updated_at = NOW()
		WHERE id = 1
		RETURNING daily_date, daily_amount, monthly_month, monthly_amount
	`
)
