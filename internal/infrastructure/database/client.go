package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDSN(dsn string) Option {
	return func(o *Options) { o.DSN = dsn }
}

func WithMaxOpenConns(n int) Option {
	return func(o *Options) { o.MaxOpenConns = n }
}

func WithMaxIdleConns(n int) Option {
	return func(o *Options) { o.MaxIdleConns = n }
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = d }
}

func WithLogLevel(lvl gormlogger.LogLevel) Option {
	return func(o *Options) { o.LogLevel = lvl }
}

func defaultOptions() Options {
	return Options{
		Driver:          DriverMySQL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		LogLevel:        gormlogger.Silent,
	}
}

var (
	once sync.Once
	db   *gorm.DB
)

// NewDatabaseClient builds (or returns) the singleton connection.
// The first successful call fixes config.
func NewDatabaseClient(opts ...Option) error {
	var initErr error
	once.Do(func() {
		conf := defaultOptions()
		for _, fn := range opts {
			if fn != nil {
				fn(&conf)
			}
		}

		conn, err := Open(conf)
		if err != nil {
			initErr = err
			return
		}
		db = conn
	})
	return initErr
}

// Open dials a standalone connection outside the singleton. Used by the
// singleton itself and by tests that need an isolated database.
func Open(conf Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case DriverMySQL:
		dialector = mysql.Open(conf.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conf.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(conf.LogLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access underlying sql.DB")
	}
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)

	return conn, nil
}

func Client() *gorm.DB {
	if db == nil {
		panic("database client not initialized")
	}
	return db
}
