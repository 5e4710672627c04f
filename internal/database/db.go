// Package database persists alert delivery history in PostgreSQL so the
// alert bot does not re-send the same alert within a day. Nothing else is
// persisted; watchlists and users live in configuration.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alert_deliveries (
			symbol TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			priority_score INT NOT NULL,
			delivered_on DATE NOT NULL,
			delivered_at TIMESTAMP NOT NULL,
			PRIMARY KEY (symbol, alert_type, delivered_on)
		)
	`)
	return err
}

// WasDelivered reports whether an alert of this type for this symbol was
// already sent on the given day.
func (db *DB) WasDelivered(symbol string, alertType models.AlertType, day time.Time) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM alert_deliveries
			WHERE symbol = $1 AND alert_type = $2 AND delivered_on = $3
		)
	`, symbol, string(alertType), day.Format("2006-01-02")).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// RecordDelivery marks an alert as sent. Recording the same alert twice
// on one day is a no-op, so a crash between send and record at worst
// re-sends once.
func (db *DB) RecordDelivery(symbol string, alert models.Alert, priorityScore int, day time.Time) error {
	_, err := db.Exec(`
		INSERT INTO alert_deliveries (
			symbol, alert_type, severity, message, priority_score, delivered_on, delivered_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (symbol, alert_type, delivered_on) DO NOTHING
	`, symbol, string(alert.Type), alert.Severity, alert.Message, priorityScore, day.Format("2006-01-02"))

	return err
}

// PruneDeliveries removes delivery records older than the retention
// window.
func (db *DB) PruneDeliveries(olderThan time.Time) error {
	_, err := db.Exec(`
		DELETE FROM alert_deliveries
		WHERE delivered_on < $1
	`, olderThan.Format("2006-01-02"))

	return err
}
