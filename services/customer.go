package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/gorm"
)

// CustomerService manages customer records.
type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type CustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerInput struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// Create stores a new customer. Phone numbers must be unique.
func (s *CustomerService) Create(ctx context.Context, actor *models.Actor, in CustomerInput) (*models.Customer, error) {
	if err := authorize(actor, models.CapManageCustomers); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	db := s.db.WithContext(ctx)
	if err := s.ensureUniquePhone(db, in.Phone, uuid.Nil); err != nil {
		return nil, err
	}

	customer := models.Customer{
		CreatedByUserID: &actor.ID,
		Name:            name,
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		Address:         in.Address,
		Notes:           in.Notes,
	}
	if err := db.Create(&customer).Error; err != nil {
		return nil, internalError(err, "failed to create customer")
	}
	return &customer, nil
}

type CustomerFilter struct {
	Search   string
	Page     int
	PageSize int
}

// List matches Search against name, email and phone.
func (s *CustomerService) List(ctx context.Context, actor *models.Actor, f CustomerFilter) ([]models.Customer, int64, error) {
	if err := authorize(actor, models.CapManageCustomers); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, internalError(err, "failed to count customers")
	}
	page, size := paging(f.Page, f.PageSize)
	var customers []models.Customer
	if err := q.Order("name ASC").Offset((page - 1) * size).Limit(size).Find(&customers).Error; err != nil {
		return nil, 0, internalError(err, "failed to list customers")
	}
	return customers, total, nil
}

// Get returns the customer with their jobs, newest first.
func (s *CustomerService) Get(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Customer, error) {
	if err := authorize(actor, models.CapManageCustomers); err != nil {
		return nil, err
	}
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "customer")
	}
	return &customer, nil
}

// Update applies the non-nil fields of in.
func (s *CustomerService) Update(ctx context.Context, actor *models.Actor, id uuid.UUID, in UpdateCustomerInput) (*models.Customer, error) {
	if err := authorize(actor, models.CapManageCustomers); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "customer")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("name", "must not be empty")
		}
		updates["name"] = name
	}
	if in.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != customer.Phone {
			if err := s.ensureUniquePhone(db, phone, customer.ID); err != nil {
				return nil, err
			}
		}
		updates["phone"] = phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := db.Model(&customer).Updates(updates).Error; err != nil {
			return nil, internalError(err, "failed to update customer")
		}
	}
	if err := db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, internalError(err, "failed to reload customer")
	}
	return &customer, nil
}

// Delete soft deletes the customer. Customers with unfinished jobs are kept.
func (s *CustomerService) Delete(ctx context.Context, actor *models.Actor, id uuid.UUID) error {
	if err := authorize(actor, models.CapManageCustomers); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, "id = ?", id).Error; err != nil {
		return lookupError(err, "customer")
	}

	var active int64
	err := db.Model(&models.Job{}).
		Where("customer_id = ? AND status NOT IN ?", id, []models.JobStatus{models.JobStatusClosed, models.JobStatusCancelled}).
		Count(&active).Error
	if err != nil {
		return internalError(err, "failed to count jobs")
	}
	if active > 0 {
		return newError(KindInvalidState, "customer has %d unfinished job(s)", active)
	}
	if err := db.Delete(&customer).Error; err != nil {
		return internalError(err, "failed to delete customer")
	}
	return nil
}

func (s *CustomerService) ensureUniquePhone(db *gorm.DB, phone string, except uuid.UUID) error {
	if phone == "" {
		return nil
	}
	var existing models.Customer
	err := db.Where("phone = ? AND id <> ?", phone, except).First(&existing).Error
	if err == nil {
		return validationError("phone", "already belongs to another customer")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internalError(err, "failed to check phone")
	}
	return nil
}
