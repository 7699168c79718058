package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings of the example store.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from TIMELINER_DB_* environment variables.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("TIMELINER_DB_HOST"),
		Port:     os.Getenv("TIMELINER_DB_PORT"),
		Database: os.Getenv("TIMELINER_DB_DATABASE"),
		Username: os.Getenv("TIMELINER_DB_USERNAME"),
		Password: os.Getenv("TIMELINER_DB_PASSWORD"),
		Schema:   os.Getenv("TIMELINER_DB_SCHEMA"),
		SSLMode:  os.Getenv("TIMELINER_DB_SSLMODE"),
	}

	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, "TIMELINER_DB_HOST")
	}
	if config.Port == "" {
		missing = append(missing, "TIMELINER_DB_PORT")
	}
	if config.Database == "" {
		missing = append(missing, "TIMELINER_DB_DATABASE")
	}
	if config.Username == "" {
		missing = append(missing, "TIMELINER_DB_USERNAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schema,
	)
}

// Database wraps the connection pool together with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings the database. It panics if the database is unreachable.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := ConnectDatabase(name, config, logger)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}
	return db
}

// ConnectDatabase opens and pings the database, returning an error if it is unreachable.
func ConnectDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	db, err := connect(config)
	if err != nil {
		return nil, NewError("connect "+name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: db,
		Logger:   logger,
	}, nil
}

// NewTestDatabase opens a database with a discarding logger.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(slog.DiscardHandler)
	return NewDatabase("test", config, logger)
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func connect(config *DatabaseConfiguration) (*sql.DB, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		case <-time.After(200 * time.Millisecond):
		}
	}
}
