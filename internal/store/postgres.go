package store

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// candidateRow is the "candidates" table layout.
type candidateRow struct {
	ID              uint    `gorm:"primaryKey"`
	SessionID       string  `gorm:"index"`
	Email           *string `gorm:"uniqueIndex"`
	Name            *string
	Phone           *string
	Experience      *string
	DesiredPosition *string
	Location        *string
	TechStack       []string `gorm:"serializer:json"`
	Questions       []string `gorm:"serializer:json"`
	Answers         []string `gorm:"serializer:json"`
	Assessments     []string `gorm:"serializer:json"`
	SentimentScore  int
	Grade           *int
	CompletedAt     time.Time
	CreatedAt       time.Time
}

func (candidateRow) TableName() string {
	return "candidates"
}

// PostgresSink writes records to PostgreSQL. A duplicate email is silently skipped.
type PostgresSink struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the candidates table.
func OpenPostgres(dsn string, debug bool) (*PostgresSink, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&candidateRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

func NewPostgresSink(db *gorm.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (p *PostgresSink) Save(ctx context.Context, c *candidate.Candidate) error {
	row := toRow(c)
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *PostgresSink) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load returns all stored records ordered by insertion.
func (p *PostgresSink) Load(ctx context.Context) ([]*candidate.Candidate, error) {
	var rows []candidateRow
	if err := p.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	out := make([]*candidate.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func toRow(c *candidate.Candidate) candidateRow {
	return candidateRow{
		SessionID:       c.SessionID,
		Email:           c.Email,
		Name:            c.Name,
		Phone:           c.Phone,
		Experience:      c.Experience,
		DesiredPosition: c.DesiredPosition,
		Location:        c.Location,
		TechStack:       c.TechStack,
		Questions:       c.Questions,
		Answers:         c.Answers,
		Assessments:     c.Assessments,
		SentimentScore:  c.SentimentScore,
		Grade:           c.Grade,
		CompletedAt:     c.CompletedAt,
	}
}

func fromRow(row candidateRow) *candidate.Candidate {
	return &candidate.Candidate{
		Name:            row.Name,
		Email:           row.Email,
		Phone:           row.Phone,
		Experience:      row.Experience,
		DesiredPosition: row.DesiredPosition,
		Location:        row.Location,
		TechStack:       row.TechStack,
		Questions:       row.Questions,
		Answers:         row.Answers,
		Assessments:     row.Assessments,
		SentimentScore:  row.SentimentScore,
		Grade:           row.Grade,
		SessionID:       row.SessionID,
		CompletedAt:     row.CompletedAt,
	}
}
