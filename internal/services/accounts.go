package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/diewo77/kunder-tools/internal/auth"
	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/validation"
)

// ErrEmailTaken is returned when provisioning an email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

// AccountStore is the data-store capability for accounts and logins.
type AccountStore interface {
	UserEmailTaken(ctx context.Context, email string) (bool, error)
	ClientEmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.UserAccount) error
	CreateClient(ctx context.Context, c *models.ClientAccount) error
	RecentLogins(ctx context.Context, since time.Time, limit int) ([]models.LoginEvent, error)
}

type AccountService struct {
	Store AccountStore
	Log   zerolog.Logger
	// Now is replaceable in tests.
	Now func() time.Time
}

func NewAccountService(st AccountStore, log zerolog.Logger) *AccountService {
	return &AccountService{Store: st, Log: log, Now: time.Now}
}

// AccountInput is what an operator supplies to provision an account.
type AccountInput struct {
	Name     string
	Email    string
	Password string
	Company  string
}

func (in AccountInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.MinLength("password", in.Password, auth.MinPasswordLength, v)
	return v.Err()
}

// ProvisionUser creates an admin account with a bcrypt-hashed password.
func (s *AccountService) ProvisionUser(ctx context.Context, in AccountInput) (*models.UserAccount, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := auth.NormalizeEmail(in.Email)
	taken, err := s.Store.UserEmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.UserAccount{Name: in.Name, Email: email, Password: hash, Role: models.RoleAdmin}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.Log.Info().Uint("id", u.ID).Str("email", u.Email).Msg("user provisioned")
	return u, nil
}

// ProvisionClient creates a client portal account.
func (s *AccountService) ProvisionClient(ctx context.Context, in AccountInput) (*models.ClientAccount, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := auth.NormalizeEmail(in.Email)
	taken, err := s.Store.ClientEmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	c := &models.ClientAccount{Name: in.Name, Email: email, Password: hash, Company: in.Company}
	if err := s.Store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.Log.Info().Uint("id", c.ID).Str("email", c.Email).Msg("client provisioned")
	return c, nil
}

// RecentLogins returns the logins within window before now, newest first.
func (s *AccountService) RecentLogins(ctx context.Context, window time.Duration, limit int) ([]models.LoginEvent, error) {
	return s.Store.RecentLogins(ctx, s.Now().Add(-window), limit)
}

// PrintLogins renders login events as a table.
func PrintLogins(w io.Writer, events []models.LoginEvent) error {
	table := tablewriter.NewTable(w)
	table.Header("when", "kind", "name", "email", "company")
	for _, e := range events {
		if err := table.Append(e.At.Local().Format("2006-01-02 15:04"), e.Kind, e.Name, e.Email, e.Company); err != nil {
			return err
		}
	}
	return table.Render()
}
