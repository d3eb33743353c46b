package repository

import (
	"context"
	"time"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction. A reused reference is a domain Conflict.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "transaction")
}

func (r *TransactionRepository) GetByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&t).Error
	if err != nil {
		return nil, translate(err, "transaction")
	}
	return &t, nil
}

// SetNotchData overwrites the stored provider payload without touching status.
func (r *TransactionRepository) SetNotchData(ctx context.Context, ref string, data []byte) error {
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("reference = ?", ref).
		Updates(map[string]interface{}{"notch_data": datatypes.JSON(data), "updated_at": time.Now()}).Error
	return translate(err, "transaction")
}

// CompleteTransition moves a pending transaction to txStatus and its order to
// orderStatus in one database transaction. The transaction row is only updated
// while it is still pending; applied is false when another writer got there first.
func (r *TransactionRepository) CompleteTransition(ctx context.Context, ref, txStatus, orderStatus string, data []byte) (applied bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": txStatus, "updated_at": time.Now()}
		if data != nil {
			updates["notch_data"] = datatypes.JSON(data)
		}
		res := tx.Model(&models.Transaction{}).
			Where("reference = ? AND status = ?", ref, domain.TransactionStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		var t models.Transaction
		if err := tx.Select("id", "order_id").Where("reference = ?", ref).First(&t).Error; err != nil {
			return err
		}
		if t.OrderID == nil {
			return nil
		}
		return tx.Model(&models.Order{}).Where("id = ?", *t.OrderID).
			Updates(map[string]interface{}{"status": orderStatus, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return false, translate(err, "transaction")
	}
	return applied, nil
}

// ListStalePending returns pending transactions created before cutoff, oldest first.
func (r *TransactionRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.TransactionStatusPending, cutoff).
		Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, translate(err, "transaction")
}

func (r *TransactionRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "transaction")
	}
	var list []models.Transaction
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, translate(err, "transaction")
}
