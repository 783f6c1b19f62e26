package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sahilchouksey/course-catalog/config"
	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// Models lists every table the service owns, parents before children.
var Models = []interface{}{
	&model.Term{},
	&model.Domain{},
	&model.Competency{},
	&model.Course{},
	&model.Element{},
	&model.CourseElement{},
	&model.User{},
	&model.JWTTokenBlacklist{},
	&model.AdminAuditLog{},
	&model.CronJobLog{},
}

// GORMStore owns the connection pool. Reopen swaps the pool in place so
// holders of the store keep working after a reconnect.
type GORMStore struct {
	mu     sync.RWMutex
	db     *gorm.DB
	driver string
	open   func() (*gorm.DB, error)
	log    *logger.Logger
}

// StartGORM opens the store selected by DB_DRIVER.
func StartGORM(env *config.EnviornmentVariable, log *logger.Logger) (*GORMStore, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if env.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	switch env.DB_DRIVER {
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.DB_HOST,
			env.DB_USER_NAME,
			env.DB_PASSWORD,
			env.DB_NAME,
			env.DB_PORT,
			env.DB_SSL_MODE,
		)
		return newStore("postgres", log, func() (*gorm.DB, error) {
			return openPostgres(dsn, gormLogger)
		})
	case "sqlite":
		return OpenSQLite(env.SQLITE_PATH, gormLogger, log)
	default:
		return nil, errors.Errorf("unsupported DB_DRIVER %q", env.DB_DRIVER)
	}
}

// OpenSQLite opens a file-backed sqlite store with foreign keys enforced.
func OpenSQLite(path string, gormLogger gormlogger.Interface, log *logger.Logger) (*GORMStore, error) {
	if gormLogger == nil {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	return newStore("sqlite", log, func() (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:         gormLogger,
			TranslateError: true,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer; a single connection keeps transactions serial
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	})
}

func openPostgres(dsn string, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true, // Prepare statements for better performance
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func newStore(driver string, log *logger.Logger, open func() (*gorm.DB, error)) (*GORMStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := open()
	if err != nil {
		log.Error("unable to open store", "driver", driver, "error", err)
		return nil, errors.Wrapf(err, "open %s store", driver)
	}
	log.Info("connected to store", "driver", driver)
	return &GORMStore{db: db, driver: driver, open: open, log: log}, nil
}

// Driver returns "postgres" or "sqlite".
func (s *GORMStore) Driver() string {
	return s.driver
}

// Init runs AutoMigrate for every catalog table
func (s *GORMStore) Init() error {
	s.log.Info("running AutoMigrate")
	if err := s.GetDB().AutoMigrate(Models...); err != nil {
		s.log.Error("AutoMigrate failed", "error", err)
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// GetDB returns the current pool.
func (s *GORMStore) GetDB() *gorm.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Reopen closes the current pool and opens a new one. On failure the old
// handle stays in place so callers see the original connectivity error.
// When stale is no longer current another caller has already reopened, and
// the fresh pool is left alone.
func (s *GORMStore) Reopen(stale *gorm.DB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stale != nil && s.db != stale {
		return nil
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	db, err := s.open()
	if err != nil {
		s.log.Warn("reopen failed", "driver", s.driver, "error", err)
		return errors.Wrap(err, "reopen store")
	}
	s.db = db
	s.log.Info("store reopened", "driver", s.driver)
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	s.log.Info("closing store", "driver", s.driver)
	sqlDB, err := s.GetDB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.GetDB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DropCatalog drops the catalog tables, and the account tables too unless
// keepUsers is set. Postgres deployments use PostgreSQLStore.DropCatalog
// instead so that dependent objects are dropped with CASCADE.
func (s *GORMStore) DropCatalog(keepUsers bool) error {
	tables := catalogTables
	if !keepUsers {
		tables = append(append([]string{}, catalogTables...), accountTables...)
	}
	migrator := s.GetDB().Migrator()
	for _, table := range tables {
		if err := migrator.DropTable(table); err != nil {
			return errors.Wrapf(err, "drop %s", table)
		}
	}
	return nil
}

// TableCounts returns the row count of each catalog table that exists.
func (s *GORMStore) TableCounts(ctx context.Context) (map[string]int64, error) {
	db := s.GetDB().WithContext(ctx)
	tables := append(append([]string{}, catalogTables...), accountTables...)
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			continue
		}
		var n int64
		if err := db.Table(table).Count(&n).Error; err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}
