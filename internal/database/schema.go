package database

// Table schemas, one statement block per module. Timestamps are stored as
// RFC3339 TEXT; monetary fields as REAL. Nullable derived values stay NULL
// until the metrics engine has enough data to compute them.
var schemas = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT 'live',
		currency TEXT NOT NULL DEFAULT 'USD',
		initial_balance REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);`,

	`CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		instrument_type TEXT NOT NULL DEFAULT 'stocks',
		direction TEXT NOT NULL DEFAULT 'long',
		quantity REAL NOT NULL,
		leverage REAL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		entry_timestamp TEXT NOT NULL,
		exit_timestamp TEXT,
		fees REAL NOT NULL DEFAULT 0,
		commission REAL NOT NULL DEFAULT 0,
		slippage REAL NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		strategy TEXT,
		notes TEXT,
		profit_loss REAL,
		profit_loss_percent REAL,
		r_multiple REAL,
		status TEXT NOT NULL DEFAULT 'open',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);
	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);`,

	`CREATE TABLE IF NOT EXISTS journal_folders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_folders_user ON journal_folders(user_id);`,

	`CREATE TABLE IF NOT EXISTS journals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT,
		folder_id TEXT,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		linked_trade_ids TEXT NOT NULL DEFAULT '[]',
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY(folder_id) REFERENCES journal_folders(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journals_user ON journals(user_id);
	CREATE INDEX IF NOT EXISTS idx_journals_folder ON journals(folder_id);`,

	`CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		is_bulleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_strategies_user ON strategies(user_id);`,

	`CREATE TABLE IF NOT EXISTS trade_ohlc (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL,
		FOREIGN KEY(trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_trade_ohlc_trade ON trade_ohlc(trade_id, timestamp);`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		changes TEXT NOT NULL DEFAULT '{}',
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs(user_id, timestamp);`,
}
