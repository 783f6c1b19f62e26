package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/sahilchouksey/course-catalog/config"
)

// Tables are listed children first so they can be dropped in order.
var (
	catalogTables = []string{
		"courses_elements",
		"elements",
		"courses",
		"competencies",
		"domains",
		"terms",
	}
	accountTables = []string{
		"jwt_token_blacklist",
		"admin_audit_logs",
		"cron_job_logs",
		"course_users",
	}
)

// Relationships documents the foreign keys AutoMigrate creates.
var Relationships = map[string]string{
	"courses":          "term_id -> terms(term_id), domain_id -> domains(domain_id)",
	"elements":         "competency_id -> competencies(competency_id)",
	"courses_elements": "course_id -> courses(course_id), element_id -> elements(element_id)",
}

// PostgreSQLStore is a plain lib/pq connection used by the admin CLI for
// schema maintenance outside of gorm.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start(env *config.EnviornmentVariable) (*PostgreSQLStore, error) {
	connectStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		env.DB_HOST, env.DB_PORT, env.DB_USER_NAME, env.DB_PASSWORD, env.DB_NAME, env.DB_SSL_MODE)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return &PostgreSQLStore{db: db}, nil
}

// DropCatalog drops the catalog tables, and the account tables too unless
// keepUsers is set.
func (s *PostgreSQLStore) DropCatalog(ctx context.Context, keepUsers bool) error {
	tables := catalogTables
	if !keepUsers {
		tables = append(append([]string{}, catalogTables...), accountTables...)
	}
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", strings.Join(tables, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, "drop catalog tables")
	}
	return nil
}

// TableCounts returns the row count of each catalog table that exists.
func (s *PostgreSQLStore) TableCounts(ctx context.Context) (map[string]int64, error) {
	tables := append(append([]string{}, catalogTables...), accountTables...)
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var present bool
		err := s.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)",
			table).Scan(&present)
		if err != nil {
			return nil, errors.Wrapf(err, "inspect %s", table)
		}
		if !present {
			continue
		}
		var n int64
		// table names are constants, never input
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
