package repository

import (
	"context"
	"errors"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository read-only access to the user registry
type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("mobile = ?", mobile).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// MerchantRepository read-only access to the merchant registry
type MerchantRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Merchant, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Merchant, error)
}

type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new MerchantRepository
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) FindByID(ctx context.Context, id uint64) (*domain.Merchant, error) {
	var m domain.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrMerchantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *merchantRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Merchant, error) {
	var merchants []domain.Merchant
	if len(ids) == 0 {
		return merchants, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&merchants).Error
	return merchants, err
}
