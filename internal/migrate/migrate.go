package migrate

import (
	"fmt"

	"rentnest-backend/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&User{},
		&Property{},
		&Viewing{},
		&Application{},
		&Agreement{},
		&Payment{},
		&Notification{},
		&ActivityLog{},
		&Verification{},
		&Bill{},
		&Dispute{},
	}
}

// TableStatus reports whether a model's table exists.
type TableStatus struct {
	Table   string
	Applied bool
}

// OpenPostgres opens a gorm connection for schema management.
func OpenPostgres(dsn string, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if debug {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Up creates or alters tables and indexes to match the models.
func Up(db *gorm.DB) error {
	logger.Info("Applying schema", "tables", len(Models()))
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	return nil
}

func Status(db *gorm.DB) ([]TableStatus, error) {
	var out []TableStatus
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", m, err)
		}
		out = append(out, TableStatus{
			Table:   stmt.Schema.Table,
			Applied: db.Migrator().HasTable(m),
		})
	}
	return out, nil
}
