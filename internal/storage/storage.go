package storage

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hospital-portal-server/internal/config"
	"hospital-portal-server/internal/models"
)

// Kind identifies which backing store a process is running against.
type Kind string

const (
	KindMySQL  Kind = "mysql"
	KindSQLite Kind = "sqlite"
)

// Backend is the persistence contract the handlers depend on. Exactly one
// implementation is selected at startup and used for the process lifetime.
// Not-found reads surface gorm.ErrRecordNotFound; every other error is a
// backend failure and bubbles to the caller untouched.
type Backend interface {
	ListAppointments(ctx context.Context, sort string) ([]models.Appointment, error)
	GetAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	CreateAppointmentRecord(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	UpdateAppointmentRecord(ctx context.Context, id string, columns map[string]interface{}) (*models.Appointment, error)
	DeleteAppointmentRecord(ctx context.Context, id string) (bool, error)

	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	GetDoctorByID(ctx context.Context, id string) (*models.Doctor, error)
	CreateDoctor(ctx context.Context, doctor *models.Doctor) error
	UpdateDoctor(ctx context.Context, id string, columns map[string]interface{}) (*models.Doctor, error)

	Kind() Kind
}

// Store is the GORM-backed Backend. MySQL and SQLite differ only in the
// dialector handed to Select; GORM's migrator keeps the schema identical on
// both.
type Store struct {
	db   *gorm.DB
	kind Kind
}

// Select establishes the backing store for this process. A configured
// networked database is tried first; any connection failure permanently
// falls back to the file-based store. The decision is made once and logged.
func Select(cfg *config.Config) (*Store, error) {
	if cfg.Database.Configured() {
		db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil {
				sqlDB.SetMaxOpenConns(cfg.Database.PoolSize)
			}
			log.Info().
				Str("backend", string(KindMySQL)).
				Str("host", cfg.Database.Host).
				Str("database", cfg.Database.Name).
				Int("pool_size", cfg.Database.PoolSize).
				Msg("storage backend selected")
			return New(db, KindMySQL)
		}
		log.Warn().Err(err).
			Str("host", cfg.Database.Host).
			Msg("networked database unavailable, falling back to file-based store")
	} else {
		log.Info().Msg("no networked database configured, using file-based store")
	}

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("backend", string(KindSQLite)).
		Str("path", cfg.SQLitePath).
		Msg("storage backend selected")
	return New(db, KindSQLite)
}

// New wraps an open connection and applies the additive schema migration.
// AutoMigrate only ever adds missing tables and columns, never drops.
func New(db *gorm.DB, kind Kind) (*Store, error) {
	if err := db.AutoMigrate(&models.Appointment{}, &models.Doctor{}); err != nil {
		return nil, err
	}
	return &Store{db: db, kind: kind}, nil
}

// Kind reports which backing store was selected.
func (s *Store) Kind() Kind {
	return s.kind
}

// ListAppointments returns all appointments. sort "-created_date" gives
// newest first; anything else gives the default ascending creation order.
// Filtering and pagination happen client-side in the dashboard.
func (s *Store) ListAppointments(ctx context.Context, sort string) ([]models.Appointment, error) {
	order := "created_date asc"
	if sort == "-created_date" {
		order = "created_date desc"
	}
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Order(order).Find(&appointments).Error
	return appointments, err
}

// GetAppointmentByID fetches one appointment.
func (s *Store) GetAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// CreateAppointmentRecord inserts a resolved record and re-reads it, so the
// caller gets exactly what a subsequent fetch would return.
func (s *Store) CreateAppointmentRecord(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := s.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, err
	}
	return s.GetAppointmentByID(ctx, appointment.ID)
}

// UpdateAppointmentRecord applies a partial column update and returns the
// refreshed row. An update naming no recognized columns still succeeds and
// still bumps updated_at; an unknown id returns gorm.ErrRecordNotFound.
func (s *Store) UpdateAppointmentRecord(ctx context.Context, id string, columns map[string]interface{}) (*models.Appointment, error) {
	if _, err := s.GetAppointmentByID(ctx, id); err != nil {
		return nil, err
	}
	delete(columns, "id")
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return s.GetAppointmentByID(ctx, id)
}

// DeleteAppointmentRecord hard-deletes by id. A missing row is reported as
// false, not as an error.
func (s *Store) DeleteAppointmentRecord(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListDoctors returns the doctor directory ordered by name.
func (s *Store) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.db.WithContext(ctx).Order("name asc").Find(&doctors).Error
	return doctors, err
}

// GetDoctorByID fetches one directory entry.
func (s *Store) GetDoctorByID(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.WithContext(ctx).First(&doctor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// CreateDoctor inserts a directory entry.
func (s *Store) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return s.db.WithContext(ctx).Create(doctor).Error
}

// UpdateDoctor applies a partial column update to a directory entry.
func (s *Store) UpdateDoctor(ctx context.Context, id string, columns map[string]interface{}) (*models.Doctor, error) {
	if _, err := s.GetDoctorByID(ctx, id); err != nil {
		return nil, err
	}
	delete(columns, "id")
	err := s.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", id).Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return s.GetDoctorByID(ctx, id)
}
