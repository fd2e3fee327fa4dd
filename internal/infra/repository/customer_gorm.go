package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unique_violation
const pgUniqueViolation = "23505"

type customerGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomerGormRepository(db *gorm.DB) repo.CustomerRepository {
	return &customerGormRepository{db: db}
}

func (r *customerGormRepository) FindActiveByID(ctx context.Context, tenantID int64, customerID int64) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = ?", customerID, tenantID, true).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// emailは小文字で保存している前提
func (r *customerGormRepository) FindActiveByEmail(ctx context.Context, tenantID int64, email string) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ? AND is_active = ?", tenantID, email, true).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (r *customerGormRepository) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Customer{}, repo.ErrConflict
		}
		return model.Customer{}, err
	}
	return c, nil
}

// GetOrCreateGeneric は (tenant_id, generic_key) で一意な汎用顧客を使い回す。
// 同時に作られても1件になるよう ON CONFLICT DO NOTHING → 取り直し
func (r *customerGormRepository) GetOrCreateGeneric(ctx context.Context, tenantID int64) (model.Customer, error) {
	key := model.GenericCustomerKey
	newCustomer := model.Customer{
		TenantID:   tenantID,
		Name:       model.GenericCustomerName,
		GenericKey: &key,
		IsActive:   true,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&newCustomer).Error; err != nil {
		return model.Customer{}, err
	}

	var c model.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND generic_key = ?", tenantID, key).
		First(&c).Error; err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (r *customerGormRepository) CreateVisit(ctx context.Context, v model.CustomerVisit) error {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// 一意制約違反だけ ErrConflict に寄せる
func mapWriteError(err error) error {
	if isUniqueViolation(err) {
		return repo.ErrConflict
	}
	return err
}
