package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/voice-assistant/internal/reminder"
)

// reminderRow is the SQL representation of a reminder. Client fields are kept
// verbatim as a JSON document.
type reminderRow struct {
	ID     uint   `gorm:"primaryKey;autoIncrement:false"`
	Time   string `gorm:"size:19;not null"`
	Fields string `gorm:"type:text;not null"`
}

func (reminderRow) TableName() string {
	return "reminders"
}

// OpenSQL opens PostgreSQL when databaseURL is set and SQLite at sqlitePath
// otherwise.
func OpenSQL(databaseURL, sqlitePath string, logger zerolog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info().Str("dialect", db.Dialector.Name()).Msg("reminder database connected")
	return db, nil
}

// SQLStore keeps reminders in a relational table through gorm.
type SQLStore struct {
	mu sync.Mutex

	db  *gorm.DB
	now reminder.Clock
}

// NewSQLStore migrates the reminders table and returns a store over it.
func NewSQLStore(db *gorm.DB, now reminder.Clock) (*SQLStore, error) {
	if err := db.AutoMigrate(&reminderRow{}); err != nil {
		return nil, fmt.Errorf("migrate reminders: %w", err)
	}
	return &SQLStore{
		db:  db,
		now: now,
	}, nil
}

// List returns all reminders ordered by id.
func (s *SQLStore) List(ctx context.Context) ([]reminder.Reminder, error) {
	var rows []reminderRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}

	out := make([]reminder.Reminder, 0, len(rows))
	for _, row := range rows {
		r, err := row.reminder()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Create inserts a reminder with id = row count + 1 inside a transaction. The
// primary key rejects a duplicate id written by another process.
func (s *SQLStore) Create(ctx context.Context, fields reminder.Reminder) (reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fields.Fields())
	if err != nil {
		return nil, fmt.Errorf("encode reminder fields: %w", err)
	}

	var created reminder.Reminder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&reminderRow{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count reminders: %w", err)
		}

		created = reminder.Stamp(fields, int(count)+1, s.now())
		row := reminderRow{
			ID:     uint(count) + 1,
			Time:   created.Time(),
			Fields: string(data),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert reminder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (row reminderRow) reminder() (reminder.Reminder, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(row.Fields)))
	dec.UseNumber()

	var fields reminder.Reminder
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode reminder %d: %w", row.ID, err)
	}

	if fields == nil {
		fields = reminder.Reminder{}
	}
	fields[reminder.FieldID] = int(row.ID)
	fields[reminder.FieldTime] = row.Time
	return fields, nil
}
