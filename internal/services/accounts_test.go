package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/kunder-tools/internal/auth"
	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/store"
	"github.com/diewo77/kunder-tools/internal/validation"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.UserAccount{}, &models.ClientAccount{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestProvisionUser(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccountService(store.New(db), zerolog.Nop())
	ctx := context.Background()

	u, err := svc.ProvisionUser(ctx, AccountInput{Name: "Ola Nordmann", Email: " Ola@Example.NO ", Password: "hemmelig-1"})
	require.NoError(t, err)
	assert.Equal(t, "ola@example.no", u.Email)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEqual(t, "hemmelig-1", u.Password)
	assert.True(t, auth.CheckPassword(u.Password, "hemmelig-1"))

	var stored models.UserAccount
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, u.Password, stored.Password)

	_, err = svc.ProvisionUser(ctx, AccountInput{Name: "Ola igjen", Email: "OLA@example.no", Password: "hemmelig-2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestProvisionRejectsInvalidInput(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccountService(store.New(db), zerolog.Nop())

	_, err := svc.ProvisionClient(context.Background(), AccountInput{Name: "", Email: "ikke-epost", Password: "kort"})
	require.Error(t, err)
	v, ok := err.(validation.Violations)
	require.True(t, ok, "expected violations, got %T", err)
	assert.Equal(t, "required", v["name"])
	assert.Equal(t, "invalid_email", v["email"])
	assert.Equal(t, "too_short", v["password"])

	var n int64
	db.Model(&models.ClientAccount{}).Count(&n)
	assert.Zero(t, n)
}

func TestProvisionClientAllowsAdminEmail(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccountService(store.New(db), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.ProvisionUser(ctx, AccountInput{Name: "Kari", Email: "kari@example.no", Password: "passord123"})
	require.NoError(t, err)
	c, err := svc.ProvisionClient(ctx, AccountInput{Name: "Kari", Email: "kari@example.no", Password: "passord123", Company: "Kari Elektro AS"})
	require.NoError(t, err)
	assert.Equal(t, "Kari Elektro AS", c.Company)
}

func TestRecentLoginsWindow(t *testing.T) {
	db := setupTestDB(t, t.Name())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour)
	old := now.Add(-48 * time.Hour)
	require.NoError(t, db.Create(&models.UserAccount{Name: "Ny", Email: "ny@example.no", Password: "x", Role: models.RoleAdmin, LastLogin: &recent}).Error)
	require.NoError(t, db.Create(&models.ClientAccount{Name: "Gammel", Email: "gammel@example.no", Password: "x", LastLogin: &old}).Error)

	svc := NewAccountService(store.New(db), zerolog.Nop())
	svc.Now = func() time.Time { return now }

	events, err := svc.RecentLogins(context.Background(), 24*time.Hour, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ny@example.no", events[0].Email)

	var buf bytes.Buffer
	require.NoError(t, PrintLogins(&buf, events))
	assert.Contains(t, buf.String(), "ny@example.no")
}

func TestMigrateLocal(t *testing.T) {
	local := store.New(setupTestDB(t, t.Name()+"_local"))
	hosted := store.New(setupTestDB(t, t.Name()+"_hosted"))
	ctx := context.Background()

	for _, c := range []models.Customer{
		{ID: 1, Name: "Bodø Bygg", City: "Bodø"},
		{ID: 2, Name: "Narvik El", City: "Narvik"},
		{ID: 3, Name: "Alta Alarm", City: "Alta"},
	} {
		require.NoError(t, local.InsertCustomer(ctx, &c))
	}
	require.NoError(t, hosted.InsertCustomer(ctx, &models.Customer{ID: 2, OrganizationID: org, Name: "Narvik El"}))

	r := newTestRunner(hosted)
	rep, err := r.MigrateLocal(ctx, Options{OrganizationID: org}, local, hosted)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Changed)
	assert.Equal(t, 1, rep.Skipped)
	n, err := hosted.CountCustomers(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "dry run inserts nothing")

	rep, err = r.MigrateLocal(ctx, Options{OrganizationID: org, Commit: true}, local, hosted)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Applied)

	migrated, err := hosted.ListCustomers(ctx, store.Filter{OrganizationID: org})
	require.NoError(t, err)
	require.Len(t, migrated, 3)
	assert.Equal(t, "Alta Alarm", migrated[2].Name)
	assert.Equal(t, uint(org), migrated[2].OrganizationID)

	rep, err = r.MigrateLocal(ctx, Options{OrganizationID: org, Commit: true}, local, hosted)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Skipped, "second run is a no-op")
	assert.Equal(t, 0, rep.Applied)

	empty := store.New(setupTestDB(t, t.Name()+"_empty"))
	_, err = r.MigrateLocal(ctx, Options{OrganizationID: org}, empty, hosted)
	assert.ErrorIs(t, err, ErrNoRows)
}
