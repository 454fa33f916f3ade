package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Upload outcome values.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Upload is one intake attempt.
type Upload struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	Filename  string    `gorm:"size:255;index" json:"filename"`
	Size      int64     `json:"size"`
	SHA256    string    `gorm:"column:sha256;size:64" json:"sha256"`
	MIME      string    `gorm:"column:mime;size:127" json:"mime"`
	Verdict   string    `gorm:"size:255" json:"verdict"`
	Kind      string    `gorm:"size:16" json:"kind"`
	Status    string    `gorm:"size:16;index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名。
func (Upload) TableName() string {
	return "uploads"
}

// Ledger records intake attempts in a SQL database.
type Ledger struct {
	db *gorm.DB
}

// OpenLedger connects to driver (sqlite, mysql or postgres) and migrates
// the schema.
func OpenLedger(driver, dsn, logLevel string) (*Ledger, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported ledger driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s ledger: %w", driver, err)
	}
	return NewLedger(db)
}

// NewLedger wraps an open database and migrates the schema.
func NewLedger(db *gorm.DB) (*Ledger, error) {
	if err := db.AutoMigrate(&Upload{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record inserts u, assigning an ID and timestamp when unset.
func (l *Ledger) Record(ctx context.Context, u *Upload) error {
	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return l.db.WithContext(ctx).Create(u).Error
}

// Recent returns up to limit records, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Upload, error) {
	var out []Upload
	err := l.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Close releases the underlying connection pool.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
