package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/01moynul/med-delivery-golang/internal/apperrors"
	"github.com/01moynul/med-delivery-golang/internal/auth"
	"github.com/01moynul/med-delivery-golang/internal/models"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ShopInput is the writable part of a shop.
type ShopInput struct {
	Name        string
	MedicineIDs []string
}

type ShopService struct {
	store store.Store
	log   *slog.Logger
}

func NewShopService(st store.Store, log *slog.Logger) *ShopService {
	if log == nil {
		log = slog.Default()
	}
	return &ShopService{store: st, log: log.With("component", "shops")}
}

// ListShops returns every shop with its medicines resolved.
func (s *ShopService) ListShops(ctx context.Context) ([]models.Shop, error) {
	repos := s.store.Repos()
	shops, err := repos.Shops.List(ctx)
	if err != nil {
		return nil, err
	}
	meds, err := repos.Catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.CatalogItem, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}
	for i := range shops {
		shops[i].Medicines = pick(byID, shops[i].MedicineIDs)
	}
	return shops, nil
}

// GetShop returns the shop with its medicines, cheapest first when
// sortByPrice is set. Medicines deleted from the catalog are skipped.
func (s *ShopService) GetShop(ctx context.Context, id string, sortByPrice bool) (models.Shop, error) {
	repos := s.store.Repos()
	shop, err := repos.Shops.FindByID(ctx, id)
	if err != nil {
		return models.Shop{}, apperrors.NotFoundIf(err, store.ErrNotFound, "shop %s not found", id)
	}

	shop.Medicines = []models.CatalogItem{}
	for _, mid := range shop.MedicineIDs {
		m, err := repos.Catalog.FindByID(ctx, mid)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.Shop{}, err
		}
		shop.Medicines = append(shop.Medicines, m)
	}
	if sortByPrice {
		slices.SortStableFunc(shop.Medicines, func(a, b models.CatalogItem) int {
			return a.Price.Cmp(b.Price)
		})
	}
	return shop, nil
}

func (s *ShopService) CreateShop(ctx context.Context, who auth.Identity, in ShopInput) (models.Shop, error) {
	shop := models.Shop{ID: uuid.NewString()}
	err := s.write(ctx, who, &shop, in, func(ctx context.Context, r store.Repositories) error {
		return r.Shops.Create(ctx, &shop)
	})
	return shop, err
}

func (s *ShopService) UpdateShop(ctx context.Context, who auth.Identity, id string, in ShopInput) (models.Shop, error) {
	shop := models.Shop{ID: id}
	err := s.write(ctx, who, &shop, in, func(ctx context.Context, r store.Repositories) error {
		return apperrors.NotFoundIf(r.Shops.Update(ctx, &shop), store.ErrNotFound, "shop %s not found", id)
	})
	return shop, err
}

// write validates the input and medicine ids, then runs persist in a
// transaction with the shop filled in.
func (s *ShopService) write(ctx context.Context, who auth.Identity, shop *models.Shop, in ShopInput,
	persist func(ctx context.Context, r store.Repositories) error) error {
	if !who.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.InvalidArgument("name is required")
	}
	shop.Name = name
	shop.Slug = slug.Make(name)
	shop.MedicineIDs = dedupe(in.MedicineIDs)

	err := s.store.WithinTx(ctx, func(ctx context.Context, r store.Repositories) error {
		shop.Medicines = make([]models.CatalogItem, 0, len(shop.MedicineIDs))
		for _, mid := range shop.MedicineIDs {
			m, err := r.Catalog.FindByID(ctx, mid)
			if err != nil {
				return apperrors.NotFoundIf(err, store.ErrNotFound, "medicine %s not found", mid)
			}
			shop.Medicines = append(shop.Medicines, m)
		}
		return persist(ctx, r)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return apperrors.Wrap(apperrors.ErrInvalidArgument, err, "a shop named "+name+" already exists")
	}
	return err
}

func (s *ShopService) DeleteShop(ctx context.Context, who auth.Identity, id string) error {
	if !who.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return apperrors.NotFoundIf(s.store.Repos().Shops.Delete(ctx, id), store.ErrNotFound, "shop %s not found", id)
}

func pick(byID map[string]models.CatalogItem, ids []string) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
