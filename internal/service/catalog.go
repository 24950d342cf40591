package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/xid"
)

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx, owner)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return domain.Customer{}, err
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:        xid.New("cus"),
		OwnerID:   owner,
		Name:      req.Name,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, owner, "customer_create", "customer", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := s.check(req); err != nil {
		return domain.Customer{}, err
	}

	existing, err := s.repo.GetCustomer(ctx, owner, strings.TrimSpace(id))
	if err != nil {
		return domain.Customer{}, err
	}
	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.Name = name
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, owner, "customer_update", "customer", saved.ID, fmt.Sprintf("name=%s->%s", existing.Name, saved.Name))
	return *saved, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteCustomer(ctx, owner, id); err != nil {
		return err
	}
	s.logAudit(ctx, owner, "customer_delete", "customer", id, "")
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, owner)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}
	if err := checkMoney("price", req.Price); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		ID:        xid.New("prd"),
		OwnerID:   owner,
		Name:      req.Name,
		Price:     req.Price,
		Unit:      req.Unit,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, owner, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%s,unit=%s", created.Name, created.Price, created.Unit))
	return *created, nil
}

// UpdateProduct changes the catalogue only; existing orders keep their snapshots.
func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, owner, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Price != nil {
		if err := checkMoney("price", *req.Price); err != nil {
			return domain.Product{}, err
		}
		updated.Price = *req.Price
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Unit = unit
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	if !existing.Price.Equal(saved.Price) {
		s.logAudit(ctx, owner, "product_price_change", "product", saved.ID, fmt.Sprintf("price=%s->%s", existing.Price, saved.Price))
	} else {
		s.logAudit(ctx, owner, "product_update", "product", saved.ID, "name="+saved.Name)
	}
	return *saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteProduct(ctx, owner, id); err != nil {
		return err
	}
	s.logAudit(ctx, owner, "product_delete", "product", id, "")
	return nil
}

// SetUnitsPerBox configures packaging for a product; zero clears it.
func (s *Service) SetUnitsPerBox(ctx context.Context, productID string, req domain.UnitsPerBoxRequest) error {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return err
	}
	if err := s.check(req); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if err := s.repo.SetUnitsPerBox(ctx, owner, productID, req.UnitsPerBox); err != nil {
		return err
	}
	s.logAudit(ctx, owner, "units_per_box_set", "product", productID, fmt.Sprintf("units_per_box=%d", req.UnitsPerBox))
	return nil
}
