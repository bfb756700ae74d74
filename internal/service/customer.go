package service

import (
	"context"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
)

type customerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, search string) ([]domain.Customer, error)
}

type changeNotifier interface {
	MarkDirty()
}

type CustomerService struct {
	customers customerRepo
	notifier  changeNotifier
}

func NewCustomerService(customers customerRepo, notifier changeNotifier) *CustomerService {
	return &CustomerService{customers: customers, notifier: notifier}
}

type CustomerInput struct {
	ID           string
	Name         string
	MobileNumber *string
	Address      *string
	Grade        string
	Memo         *string
}

// CreateCustomer registers a customer with a zero balance. Opening debt
// arrives afterwards as a carry-over ledger entry, never as a direct balance
// write.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	log := logging.FromContext(ctx)

	if in.ID == "" || in.Name == "" {
		return nil, fmt.Errorf("CreateCustomer: %w", domain.ErrInvalidRequest)
	}
	grade := domain.CustomerGrade(in.Grade)
	if grade == "" {
		grade = domain.GradeRegular
	}

	c := &domain.Customer{
		ID:           in.ID,
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
		Address:      in.Address,
		Grade:        grade,
		Memo:         in.Memo,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("customer created", "customer_id", c.ID, "name", c.Name)
	return c, nil
}

// UpdateCustomer updates the descriptive fields only. The cached balance is
// owned by the ledger service and never touched here.
func (s *CustomerService) UpdateCustomer(ctx context.Context, in CustomerInput) error {
	if in.ID == "" || in.Name == "" {
		return fmt.Errorf("UpdateCustomer: %w", domain.ErrInvalidRequest)
	}
	err := s.customers.Update(ctx, &domain.Customer{
		ID:           in.ID,
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
		Address:      in.Address,
		Grade:        domain.CustomerGrade(in.Grade),
		Memo:         in.Memo,
	})
	if err != nil {
		return fmt.Errorf("UpdateCustomer: %w", err)
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteCustomer: %w", err)
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("ListCustomers: %w", err)
	}
	return customers, nil
}
