package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-api/models"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewUserStore(db)
}

func seedUser(t *testing.T, s *UserStore, email string, mutate ...func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		Email:          email,
		HashedPassword: "digest",
		IsActive:       true,
	}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, s.Create(user))
	return user
}

func strPtr(s string) *string { return &s }

func TestCreateAndLookups(t *testing.T) {
	s := newTestStore(t)
	created := seedUser(t, s, "A@X.com", func(u *models.User) {
		u.Username = strPtr("alice")
	})

	byID, err := s.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email, "emails are stored lowercased")

	byEmail, err := s.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := s.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	_, err = s.GetByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "a@x.com")

	err := s.Create(&models.User{Email: "a@x.com", HashedPassword: "other"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "a@x.com", func(u *models.User) { u.Username = strPtr("alice") })

	err := s.Create(&models.User{
		Email:          "b@x.com",
		Username:       strPtr("alice"),
		HashedPassword: "other",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUsersWithoutUsernameDoNotConflict(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "a@x.com")
	seedUser(t, s, "b@x.com")
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		seedUser(t, s, fmt.Sprintf("user%d@x.com", i))
	}

	users, total, err := s.List(0, 2, "", nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.EqualValues(t, 5, total, "total reflects the filtered set, not the page")

	users, total, err = s.List(4, 2, "", nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.EqualValues(t, 5, total)
}

func TestListSearch(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "alice@example.com", func(u *models.User) {
		u.Username = strPtr("wonder")
		u.FullName = "Alice Liddell"
	})
	seedUser(t, s, "bob@example.com", func(u *models.User) {
		u.FullName = "Bob Builder"
	})

	// matches email
	users, total, err := s.List(0, 10, "ALICE", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "alice@example.com", users[0].Email)

	// matches username
	_, total, err = s.List(0, 10, "wonder", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// matches full name
	_, total, err = s.List(0, 10, "builder", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = s.List(0, 10, "nobody", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestListActiveFilter(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "active@x.com")
	inactive := seedUser(t, s, "inactive@x.com")
	require.NoError(t, s.SetActive(inactive.ID, false, nil))

	active := true
	users, total, err := s.List(0, 10, "", &active)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "active@x.com", users[0].Email)
}

func TestUpdatePartial(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com", func(u *models.User) {
		u.FullName = "Before"
		u.Bio = "old bio"
	})

	updated, err := s.Update(user.ID, map[string]interface{}{"full_name": "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.FullName)
	assert.Equal(t, "old bio", updated.Bio, "untouched fields stay put")
}

func TestUpdateEmptyPatchOnlyRefreshesUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com", func(u *models.User) { u.FullName = "Same" })
	before := user.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	updated, err := s.Update(user.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Same", updated.FullName)
	assert.Equal(t, user.Email, updated.Email)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestUpdateMissingUser(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Update(123, map[string]interface{}{"full_name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSoftDelete(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com")

	deleted, err := s.SoftDelete(user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// deleted users vanish from every lookup
	_, err = s.GetByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = s.GetByEmail("a@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, total, err := s.List(0, 10, "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	// second delete is a no-op report
	deleted, err = s.SoftDelete(user.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSoftDeleteForcesInactive(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com")

	_, err := s.SoftDelete(user.ID)
	require.NoError(t, err)

	var raw models.User
	require.NoError(t, s.db.Unscoped().First(&raw, user.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)
	assert.False(t, raw.IsActive)
}

func TestRecordLogin(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com")

	at := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordLogin(user.ID, at))
	}

	got, err := s.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LoginCount)
	require.NotNil(t, got.LastLogin)

	assert.ErrorIs(t, s.RecordLogin(9999, at), gorm.ErrRecordNotFound)
}

func TestSetActive(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com")

	verified := true
	require.NoError(t, s.SetActive(user.ID, true, &verified))

	got, err := s.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.True(t, got.IsVerified)

	require.NoError(t, s.SetActive(user.ID, false, nil))
	got, err = s.GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsVerified, "verified flag untouched when not requested")

	assert.ErrorIs(t, s.SetActive(9999, true, nil), gorm.ErrRecordNotFound)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	// empty table: everything zero, no division by zero
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalUsers)
	assert.Zero(t, stats.VerificationRate)
	assert.Zero(t, stats.ActivationRate)

	seedUser(t, s, "a@x.com", func(u *models.User) { u.IsVerified = true })
	seedUser(t, s, "b@x.com")
	inactive := seedUser(t, s, "c@x.com")
	require.NoError(t, s.SetActive(inactive.ID, false, nil))

	stats, err = s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.ActiveUsers)
	assert.EqualValues(t, 1, stats.VerifiedUsers)
	assert.EqualValues(t, 3, stats.UsersCreatedToday)
	assert.InDelta(t, 33.33, stats.VerificationRate, 0.001)
	assert.InDelta(t, 66.67, stats.ActivationRate, 0.001)
}

func TestStatsExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "a@x.com")
	seedUser(t, s, "b@x.com")

	_, err := s.SoftDelete(user.ID)
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalUsers)
}
