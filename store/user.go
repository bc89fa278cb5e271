// Package store owns all persistence for the users table. It is the only
// place that mutates user rows; callers get copies and sentinel errors
// (gorm.ErrRecordNotFound, gorm.ErrDuplicatedKey), never HTTP concerns.
package store

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"user-api/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByID returns a live user. Soft-deleted rows are excluded by the
// gorm.DeletedAt scope, here and in every other query of this package.
func (s *UserStore) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// listQuery builds a fresh filtered query so Count and Find never share a
// statement.
func (s *UserStore) listQuery(search string, isActive *bool) *gorm.DB {
	query := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	return query
}

// List returns a page of users ordered newest first, plus the total size of
// the filtered set (not bounded by limit).
func (s *UserStore) List(skip, limit int, search string, isActive *bool) ([]models.User, int64, error) {
	var total int64
	if err := s.listQuery(search, isActive).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.listQuery(search, isActive).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Create inserts the user. A unique-index conflict on email or username comes
// back as gorm.ErrDuplicatedKey.
func (s *UserStore) Create(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return s.db.Create(user).Error
}

// Update applies only the provided columns and refreshes updated_at, then
// returns the fresh row.
func (s *UserStore) Update(id uint, changes map[string]interface{}) (*models.User, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	if email, ok := changes["email"].(string); ok {
		changes["email"] = strings.ToLower(email)
	}
	changes["updated_at"] = time.Now()

	if err := s.db.Model(&models.User{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// SoftDelete marks the user deleted and inactive in a single update. This is
// the one place the deleted⇒inactive invariant is enforced. Returns false
// when no live row matched (already deleted or never existed).
func (s *UserStore) SoftDelete(id uint) (bool, error) {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"is_active":  false,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetActive flips the active flag and, when verified is non-nil, the verified
// flag too.
func (s *UserStore) SetActive(id uint, active bool, verified *bool) error {
	changes := map[string]interface{}{"is_active": active}
	if verified != nil {
		changes["is_verified"] = *verified
	}

	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordLogin stamps last_login and bumps login_count by exactly one.
func (s *UserStore) RecordLogin(id uint, at time.Time) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login":  at,
		"login_count": gorm.Expr("login_count + ?", 1),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UserStats is the aggregate snapshot for the admin overview.
type UserStats struct {
	TotalUsers        int64   `json:"total_users"`
	ActiveUsers       int64   `json:"active_users"`
	VerifiedUsers     int64   `json:"verified_users"`
	UsersCreatedToday int64   `json:"users_created_today"`
	VerificationRate  float64 `json:"verification_rate"`
	ActivationRate    float64 `json:"activation_rate"`
}

// Stats computes the admin overview over live rows. Rates are percentages
// rounded to two decimals, zero when there are no users.
func (s *UserStore) Stats() (*UserStats, error) {
	stats := &UserStats{}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("is_verified = ?", true).Count(&stats.VerifiedUsers).Error; err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := s.db.Model(&models.User{}).Where("created_at >= ?", today).Count(&stats.UsersCreatedToday).Error; err != nil {
		return nil, err
	}

	if stats.TotalUsers > 0 {
		stats.VerificationRate = round2(float64(stats.VerifiedUsers) / float64(stats.TotalUsers) * 100)
		stats.ActivationRate = round2(float64(stats.ActiveUsers) / float64(stats.TotalUsers) * 100)
	}

	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
