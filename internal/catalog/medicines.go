// Package catalog manages medicines and the shops that list them.
// Reads are open; every mutation requires the admin role.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/01moynul/med-delivery-golang/internal/apperrors"
	"github.com/01moynul/med-delivery-golang/internal/auth"
	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MedicineInput is the writable part of a medicine.
type MedicineInput struct {
	Name       string
	Price      decimal.Decimal
	IsFavorite bool
}

func (in MedicineInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.InvalidArgument("name is required")
	}
	if in.Price.IsNegative() {
		return apperrors.InvalidArgument("price must not be negative")
	}
	return nil
}

// Service reads and writes medicines. Prices are always read from the
// store so cart pricing never sees a stale value.
type Service struct {
	store store.Store
	log   *slog.Logger
}

func NewService(st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, log: log.With("component", "catalog")}
}

func (s *Service) FindByID(ctx context.Context, id string) (models.CatalogItem, error) {
	m, err := s.store.Repos().Catalog.FindByID(ctx, id)
	if err != nil {
		return models.CatalogItem{}, apperrors.NotFoundIf(err, store.ErrNotFound, "medicine %s not found", id)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]models.CatalogItem, error) {
	return s.store.Repos().Catalog.List(ctx)
}

func (s *Service) Create(ctx context.Context, who auth.Identity, in MedicineInput) (models.CatalogItem, error) {
	if !who.IsAdmin() {
		return models.CatalogItem{}, apperrors.Forbidden("admin role required")
	}
	if err := in.validate(); err != nil {
		return models.CatalogItem{}, err
	}
	m := models.CatalogItem{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Price:      in.Price,
		IsFavorite: in.IsFavorite,
	}
	if err := s.store.Repos().Catalog.Create(ctx, &m); err != nil {
		return models.CatalogItem{}, err
	}
	s.log.InfoContext(ctx, "medicine created", "medicine_id", m.ID, "by", who.UserID)
	return m, nil
}

// Update replaces a medicine. Carts holding it pick up the new price on
// their next read.
func (s *Service) Update(ctx context.Context, who auth.Identity, id string, in MedicineInput) (models.CatalogItem, error) {
	if !who.IsAdmin() {
		return models.CatalogItem{}, apperrors.Forbidden("admin role required")
	}
	if err := in.validate(); err != nil {
		return models.CatalogItem{}, err
	}
	m := models.CatalogItem{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Price:      in.Price,
		IsFavorite: in.IsFavorite,
	}
	if err := s.store.Repos().Catalog.Update(ctx, &m); err != nil {
		return models.CatalogItem{}, apperrors.NotFoundIf(err, store.ErrNotFound, "medicine %s not found", id)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, who auth.Identity, id string) error {
	if !who.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return apperrors.NotFoundIf(s.store.Repos().Catalog.Delete(ctx, id), store.ErrNotFound, "medicine %s not found", id)
}

// Seed inserts items that are not already present. Used at startup.
func (s *Service) Seed(ctx context.Context, items []models.CatalogItem) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, m := range existing {
		have[m.Name] = true
	}

	added := 0
	for _, m := range items {
		if have[m.Name] {
			continue
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if err := s.store.Repos().Catalog.Create(ctx, &m); err != nil {
			return added, fmt.Errorf("seed %s: %w", m.Name, err)
		}
		added++
	}
	return added, nil
}

// DefaultMedicines is the starter catalog.
func DefaultMedicines() []models.CatalogItem {
	price := decimal.RequireFromString
	return []models.CatalogItem{
		{Name: "Lipitor", Price: price("9.00")},
		{Name: "Advil", Price: price("10.00")},
		{Name: "Zoloft", Price: price("16.00")},
		{Name: "Tylenol", Price: price("15.00")},
		{Name: "Crestor", Price: price("40.00")},
	}
}
