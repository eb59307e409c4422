// Package store is the data-store capability the maintenance commands run against:
// row reads with tenant, coordinate and timestamp filters, inserts, updates and
// deletes by primary key, and counts.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/kunder-tools/internal/models"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// Filter narrows a customer read. Zero fields do not filter.
type Filter struct {
	OrganizationID     uint
	MissingCoordinates bool
	HasCoordinates     bool
	UpdatedSince       time.Time
	IDs                []uint
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.OrganizationID != 0 {
		q = q.Where("organization_id = ?", f.OrganizationID)
	}
	if f.MissingCoordinates {
		q = q.Where("(latitude IS NULL OR longitude IS NULL)")
	}
	if f.HasCoordinates {
		q = q.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
	if !f.UpdatedSince.IsZero() {
		q = q.Where("updated_at >= ?", f.UpdatedSince)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	return q
}

type Store struct{ DB *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// ListCustomers returns the customers matching f ordered by id.
func (s *Store) ListCustomers(ctx context.Context, f Filter) ([]models.Customer, error) {
	var out []models.Customer
	q := f.apply(s.DB.WithContext(ctx).Model(&models.Customer{}))
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (s *Store) CountCustomers(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := f.apply(s.DB.WithContext(ctx).Model(&models.Customer{})).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// UpdateCustomer writes cols onto the customer with the given id. A nil value sets
// the column to NULL.
func (s *Store) UpdateCustomer(ctx context.Context, id uint, cols map[string]any) error {
	res := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update customer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update customer %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete customer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete customer %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertCustomer creates c. A non-zero ID is kept as given.
func (s *Store) InsertCustomer(ctx context.Context, c *models.Customer) error {
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert customer %d: %w", c.ID, err)
	}
	return nil
}

func (s *Store) CustomerExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResyncCustomerIDs moves the postgres id sequence past the highest id so inserts
// with explicit ids do not collide with later generated ones. Other dialects are
// left alone.
func (s *Store) ResyncCustomerIDs(ctx context.Context) error {
	if s.DB.Dialector.Name() != "postgres" {
		return nil
	}
	table := models.Customer{}.TableName()
	return s.DB.WithContext(ctx).Exec(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM "+table+"), 1))", table,
	).Error
}

// UserEmailTaken reports whether an admin account already uses email.
func (s *Store) UserEmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.UserAccount{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// ClientEmailTaken reports whether a client account already uses email.
func (s *Store) ClientEmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.ClientAccount{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (s *Store) CreateUser(ctx context.Context, u *models.UserAccount) error {
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return nil
}

func (s *Store) CreateClient(ctx context.Context, c *models.ClientAccount) error {
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create client %s: %w", c.Email, err)
	}
	return nil
}

// RecentLogins merges admin and client logins at or after since, newest first,
// capped at limit when limit > 0.
func (s *Store) RecentLogins(ctx context.Context, since time.Time, limit int) ([]models.LoginEvent, error) {
	db := s.DB.WithContext(ctx)

	var users []models.UserAccount
	q := db.Where("last_login IS NOT NULL AND last_login >= ?", since).Order("last_login DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list user logins: %w", err)
	}

	var clients []models.ClientAccount
	q = db.Where("last_login IS NOT NULL AND last_login >= ?", since).Order("last_login DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list client logins: %w", err)
	}

	events := make([]models.LoginEvent, 0, len(users)+len(clients))
	for _, u := range users {
		events = append(events, models.LoginEvent{Kind: "user", ID: u.ID, Name: u.Name, Email: u.Email, At: *u.LastLogin})
	}
	for _, c := range clients {
		events = append(events, models.LoginEvent{Kind: "client", ID: c.ID, Name: c.Name, Email: c.Email, Company: c.Company, At: *c.LastLogin})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
