package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
)

// SchemaName is the Postgres schema all tables live in.
const SchemaName = "plangate"

// ChangeChannel is the LISTEN/NOTIFY channel row triggers publish on. Payloads
// are JSON objects {"topic": <table>, "op": insert|update|delete, "key": <id>}.
const ChangeChannel = "plangate_changes"

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// OpenPostgres connects to Postgres, creates the plangate schema if needed and
// runs migrations. The connection string must not embed a password; use
// PGPASSWORD, .pgpass or the OS keyring instead.
func OpenPostgres(connStr string) (*sql.DB, error) {
	if _, err := ValidateConnString(connStr); err != nil {
		return nil, err
	}
	connStr = ensureSearchPath(connStr)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Configure connection pool parameters to avoid connection exhaustion
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(connStr) {
			return nil, fmt.Errorf("connecting to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + SchemaName); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := migrateNotify(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("installing change triggers: %w", err)
	}

	return db, nil
}

// notifyTables are the tables whose row changes are announced on ChangeChannel.
var notifyTables = []string{"daily_plans", "daily_plan_items", "time_entries"}

// NOTIFY inside a trigger is delivered when the writing transaction commits,
// and never if it rolls back.
const notifyFunction = `CREATE OR REPLACE FUNCTION plangate_notify_change() RETURNS trigger AS $$
DECLARE
	row_id TEXT;
BEGIN
	IF TG_OP = 'DELETE' THEN
		row_id := OLD.id;
	ELSE
		row_id := NEW.id;
	END IF;
	PERFORM pg_notify('` + ChangeChannel + `', json_build_object(
		'topic', TG_TABLE_NAME,
		'op', lower(TG_OP),
		'key', row_id
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

func migrateNotify(db *sql.DB) error {
	if _, err := db.Exec(notifyFunction); err != nil {
		return err
	}
	for _, table := range notifyTables {
		trigger := table + "_notify_change"
		stmts := []string{
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
				FOR EACH ROW EXECUTE FUNCTION plangate_notify_change()`, trigger, table),
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("%s: %w", trigger, err)
			}
		}
	}
	return nil
}

// ValidateConnString checks if a connection string is a valid
// PostgreSQL connection string (URI or DSN) and ensures it does not
// contain a password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if HasEmbeddedCredentials(connStr) {
		return false, ErrEmbeddedCredentials
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}

	return true, nil
}

// HasEmbeddedCredentials reports whether connStr carries a password, in
// either URL or key=value form.
func HasEmbeddedCredentials(connStr string) bool {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return false
		}
		_, set := u.User.Password()
		return set
	}
	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err came from a unique constraint in
// either SQLite or Postgres.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// ensureSearchPath points the connection at the plangate schema unless the
// caller already chose one.
func ensureSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", SchemaName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if hasParam(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + SchemaName
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return hasParam(connStr, "sslmode")
}

// hasParam looks for key in a DSN of space-separated key=value pairs.
func hasParam(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}
