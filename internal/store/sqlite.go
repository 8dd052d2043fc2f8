package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/bankdialog/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps readers unblocked while a plan is being written.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS accounts (
		user_name TEXT NOT NULL COLLATE NOCASE,
		account_type TEXT NOT NULL COLLATE NOCASE,
		balance TEXT NOT NULL DEFAULT '0',
		due_date TEXT NOT NULL DEFAULT '',
		pending_payment INTEGER NOT NULL DEFAULT 0,
		payment_amount TEXT NOT NULL DEFAULT '0',
		loan_amount TEXT NOT NULL DEFAULT '0',
		loan_interest TEXT NOT NULL DEFAULT '0',
		loan_years INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_name, account_type)
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL COLLATE NOCASE,
		account_type TEXT NOT NULL COLLATE NOCASE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (kind, user_id, user_name, account_type)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		phone TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_phone ON profiles(phone);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListAccounts returns every account held under a user name.
func (s *SQLiteStore) ListAccounts(ctx context.Context, userName string) ([]*domain.Account, error) {
	query := `
		SELECT user_name, account_type, balance, due_date, pending_payment,
		       payment_amount, loan_amount, loan_interest, loan_years
		FROM accounts WHERE user_name = ? ORDER BY account_type`

	rows, err := s.db.QueryContext(ctx, query, userName)
	if err != nil {
		return nil, classify("query accounts", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close account rows", "error", closeErr)
		}
	}()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.UserName, &a.AccountType, &a.Balance, &a.DueDate, &a.PendingPayment,
			&a.PaymentAmount, &a.LoanAmount, &a.LoanInterest, &a.LoanYears,
		); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// ListPlans returns plans of a kind written for a user and user name.
func (s *SQLiteStore) ListPlans(ctx context.Context, kind domain.PlanKind, userID, userName, accountType string) ([]*domain.Plan, error) {
	query := `
		SELECT id, kind, user_id, user_name, account_type, start_date, end_date, created_at
		FROM plans WHERE kind = ? AND user_id = ? AND user_name = ?`
	args := []interface{}{string(kind), userID, userName}

	if accountType != "" {
		query += ` AND account_type = ?`
		args = append(args, accountType)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query plans", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close plan rows", "error", closeErr)
		}
	}()

	var plans []*domain.Plan
	for rows.Next() {
		var p domain.Plan
		var kindStr string
		var createdAt int64
		if err := rows.Scan(
			&p.ID, &kindStr, &p.UserID, &p.UserName, &p.AccountType,
			&p.StartDate, &p.EndDate, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		p.Kind = domain.PlanKind(kindStr)
		p.CreatedAt = time.Unix(createdAt, 0)
		plans = append(plans, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}

	return plans, nil
}

// FindProfilesByPhone returns profiles indexed under a phone number.
func (s *SQLiteStore) FindProfilesByPhone(ctx context.Context, phone string) ([]*domain.Profile, error) {
	query := `SELECT user_id, phone, first_name, last_name FROM profiles WHERE phone = ?`

	rows, err := s.db.QueryContext(ctx, query, phone)
	if err != nil {
		return nil, classify("query profiles", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close profile rows", "error", closeErr)
		}
	}()

	var profiles []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.UserID, &p.Phone, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// InsertPlan writes a new plan, assigning an ID and creation time when missing.
func (s *SQLiteStore) InsertPlan(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO plans (id, kind, user_id, user_name, account_type, start_date, end_date, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		plan.ID, string(plan.Kind), plan.UserID, plan.UserName, plan.AccountType,
		plan.StartDate, plan.EndDate, plan.CreatedAt.Unix(),
	)
	if err != nil {
		return classify("insert plan", err)
	}
	return nil
}

// UpsertAccount creates or replaces an account record.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, account *domain.Account) error {
	query := `
	INSERT INTO accounts (
		user_name, account_type, balance, due_date, pending_payment,
		payment_amount, loan_amount, loan_interest, loan_years, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_name, account_type) DO UPDATE SET
		balance = excluded.balance,
		due_date = excluded.due_date,
		pending_payment = excluded.pending_payment,
		payment_amount = excluded.payment_amount,
		loan_amount = excluded.loan_amount,
		loan_interest = excluded.loan_interest,
		loan_years = excluded.loan_years,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		account.UserName, account.AccountType, account.Balance.String(), account.DueDate,
		account.PendingPayment, account.PaymentAmount.String(), account.LoanAmount.String(),
		account.LoanInterest.String(), account.LoanYears, time.Now().Unix(),
	)
	if err != nil {
		return classify("upsert account", err)
	}
	return nil
}

// UpsertProfile creates or replaces a profile record.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
	INSERT INTO profiles (user_id, phone, first_name, last_name)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		phone = excluded.phone,
		first_name = excluded.first_name,
		last_name = excluded.last_name`

	_, err := s.db.ExecContext(ctx, query, profile.UserID, profile.Phone, profile.FirstName, profile.LastName)
	if err != nil {
		return classify("upsert profile", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
