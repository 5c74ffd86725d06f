package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carte-app/api/internal/auth"
	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/event"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// CatalogStore defines the DB methods needed to manage menus, categories
// and items. Satisfied by *database.Queries (and its WithTx variant).
type CatalogStore interface {
	StockStore
	ListMenus(ctx context.Context) ([]database.Menu, error)
	CreateMenu(ctx context.Context, arg database.CreateMenuParams) (database.Menu, error)
	GetMenu(ctx context.Context, id int64) (database.Menu, error)
	UpdateMenuName(ctx context.Context, arg database.UpdateMenuNameParams) (database.Menu, error)
	DeleteMenu(ctx context.Context, id int64) (int64, error)
	BumpMenuVersion(ctx context.Context, id int64) (int64, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	GetCategory(ctx context.Context, arg database.GetCategoryParams) (database.Category, error)
	DeleteCategory(ctx context.Context, arg database.DeleteCategoryParams) (int64, error)
	ListCategoriesByMenu(ctx context.Context, menuID int64) ([]database.Category, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, arg database.DeleteMenuItemParams) (int64, error)
	ListMenuItemsByMenu(ctx context.Context, menuID int64) ([]database.MenuItem, error)
}

// NewCatalogStore creates a CatalogStore from a DBTX (pool or tx).
type NewCatalogStore func(db database.DBTX) CatalogStore

// Carte is a menu with its category tree, as shown to customers.
type Carte struct {
	Menu       database.Menu
	Categories []event.Category
}

// CatalogUpdate is the category tree and catalog version right after a
// catalog mutation committed.
type CatalogUpdate struct {
	Categories []event.Category
	Version    int64
}

// StockUpdate is an item after an admin stock override.
type StockUpdate struct {
	Item    database.MenuItem
	Version int64
}

// CatalogService handles menus, categories, items and admin access.
type CatalogService struct {
	pool     Pool
	newStore NewCatalogStore
	verifier auth.AdminVerifier
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(pool Pool, newStore NewCatalogStore, verifier auth.AdminVerifier) *CatalogService {
	return &CatalogService{pool: pool, newStore: newStore, verifier: verifier}
}

func (s *CatalogService) ListMenus(ctx context.Context) ([]database.Menu, error) {
	menus, err := s.newStore(s.pool).ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// CreateMenu stores a new menu; the admin password goes through the
// configured verifier before it is persisted.
func (s *CatalogService) CreateMenu(ctx context.Context, name, password string) (database.Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Menu{}, ErrEmptyName
	}
	if password == "" {
		return database.Menu{}, ErrEmptyPassword
	}

	secret, err := s.verifier.HashSecret(password)
	if err != nil {
		return database.Menu{}, err
	}

	menu, err := s.newStore(s.pool).CreateMenu(ctx, database.CreateMenuParams{
		Name:          name,
		AdminPassword: secret,
	})
	if err != nil {
		return database.Menu{}, fmt.Errorf("create menu: %w", err)
	}
	logrus.WithField("menu_id", menu.ID).Info("menu created")
	return menu, nil
}

// VerifyAdmin checks candidate against the menu's admin password.
func (s *CatalogService) VerifyAdmin(ctx context.Context, menuID int64, candidate string) (database.Menu, error) {
	menu, err := s.getMenu(ctx, s.newStore(s.pool), menuID)
	if err != nil {
		return database.Menu{}, err
	}
	if !s.verifier.VerifyAdmin(menu, candidate) {
		return database.Menu{}, ErrInvalidPassword
	}
	return menu, nil
}

func (s *CatalogService) RenameMenu(ctx context.Context, menuID int64, name string) (database.Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Menu{}, ErrEmptyName
	}
	menu, err := s.newStore(s.pool).UpdateMenuName(ctx, database.UpdateMenuNameParams{ID: menuID, Name: name})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Menu{}, ErrMenuNotFound
		}
		return database.Menu{}, fmt.Errorf("update menu name: %w", err)
	}
	return menu, nil
}

// DeleteMenu removes the menu together with its categories, items and orders.
func (s *CatalogService) DeleteMenu(ctx context.Context, menuID int64) error {
	if _, err := s.newStore(s.pool).DeleteMenu(ctx, menuID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMenuNotFound
		}
		return fmt.Errorf("delete menu: %w", err)
	}
	logrus.WithField("menu_id", menuID).Info("menu deleted")
	return nil
}

// Carte returns the menu with its full category tree. The menu row is read
// first so the returned version never claims more than the tree holds.
func (s *CatalogService) Carte(ctx context.Context, menuID int64) (*Carte, error) {
	store := s.newStore(s.pool)
	menu, err := s.getMenu(ctx, store, menuID)
	if err != nil {
		return nil, err
	}
	categories, err := loadCategories(ctx, store, menuID)
	if err != nil {
		return nil, err
	}
	return &Carte{Menu: menu, Categories: categories}, nil
}

func (s *CatalogService) AddCategory(ctx context.Context, menuID int64, name string) (*CatalogUpdate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return s.catalogTx(ctx, menuID, func(store CatalogStore) error {
		if _, err := s.getMenu(ctx, store, menuID); err != nil {
			return err
		}
		if _, err := store.CreateCategory(ctx, database.CreateCategoryParams{MenuID: menuID, Name: name}); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
}

// DeleteCategory removes a category and its items. It fails with
// ErrItemInUse while any of those items appears on an order.
func (s *CatalogService) DeleteCategory(ctx context.Context, menuID, categoryID int64) (*CatalogUpdate, error) {
	return s.catalogTx(ctx, menuID, func(store CatalogStore) error {
		_, err := store.DeleteCategory(ctx, database.DeleteCategoryParams{ID: categoryID, MenuID: menuID})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, pgx.ErrNoRows):
			return ErrCategoryNotFound
		case isForeignKeyViolation(err):
			return ErrItemInUse
		}
		return fmt.Errorf("delete category: %w", err)
	})
}

func (s *CatalogService) AddItem(ctx context.Context, menuID, categoryID int64, name string, stock int32) (*CatalogUpdate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return s.catalogTx(ctx, menuID, func(store CatalogStore) error {
		if _, err := store.GetCategory(ctx, database.GetCategoryParams{ID: categoryID, MenuID: menuID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}
		if _, err := store.CreateMenuItem(ctx, database.CreateMenuItemParams{
			CategoryID: categoryID,
			Name:       name,
			Stock:      stock,
		}); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		return nil
	})
}

// DeleteItem removes an item that no order references.
func (s *CatalogService) DeleteItem(ctx context.Context, menuID, itemID int64) (*CatalogUpdate, error) {
	return s.catalogTx(ctx, menuID, func(store CatalogStore) error {
		_, err := store.DeleteMenuItem(ctx, database.DeleteMenuItemParams{ID: itemID, MenuID: menuID})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, pgx.ErrNoRows):
			return ErrItemNotFound
		case isForeignKeyViolation(err):
			return ErrItemInUse
		}
		return fmt.Errorf("delete item: %w", err)
	})
}

// SetStock overrides an item's stock through the stock ledger.
func (s *CatalogService) SetStock(ctx context.Context, menuID, itemID int64, value int32) (*StockUpdate, error) {
	if value < 0 {
		return nil, ErrInvalidStock
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	current, err := store.GetMenuItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if current.MenuID != menuID {
		return nil, ErrItemNotFound
	}

	item, err := NewStockLedger(store).Set(ctx, itemID, value)
	if err != nil {
		return nil, err
	}
	version, err := store.BumpMenuVersion(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("bump menu version: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"menu_id": menuID,
		"item_id": itemID,
		"stock":   value,
	}).Info("stock set")
	return &StockUpdate{Item: item, Version: version}, nil
}

// catalogTx runs fn, bumps the catalog version and reloads the category
// tree, all in one transaction.
func (s *CatalogService) catalogTx(ctx context.Context, menuID int64, fn func(store CatalogStore) error) (*CatalogUpdate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if err := fn(store); err != nil {
		return nil, err
	}

	version, err := store.BumpMenuVersion(ctx, menuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("bump menu version: %w", err)
	}
	categories, err := loadCategories(ctx, store, menuID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CatalogUpdate{Categories: categories, Version: version}, nil
}

func (s *CatalogService) getMenu(ctx context.Context, store CatalogStore, menuID int64) (database.Menu, error) {
	menu, err := store.GetMenu(ctx, menuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Menu{}, ErrMenuNotFound
		}
		return database.Menu{}, fmt.Errorf("get menu: %w", err)
	}
	return menu, nil
}

func loadCategories(ctx context.Context, store CatalogStore, menuID int64) ([]event.Category, error) {
	cats, err := store.ListCategoriesByMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items, err := store.ListMenuItemsByMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	byCategory := make(map[int64][]event.Item, len(cats))
	for _, it := range items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], event.Item{
			ID:         it.ID,
			CategoryID: it.CategoryID,
			Name:       it.Name,
			Stock:      it.Stock,
		})
	}

	tree := make([]event.Category, 0, len(cats))
	for _, c := range cats {
		catItems := byCategory[c.ID]
		if catItems == nil {
			catItems = []event.Item{}
		}
		tree = append(tree, event.Category{
			ID:     c.ID,
			MenuID: c.MenuID,
			Name:   c.Name,
			Items:  catItems,
		})
	}
	return tree, nil
}
