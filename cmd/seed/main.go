package main

import (
	"context"
	"fmt"
	"os"

	"github.com/carte-app/api/internal/auth"
	"github.com/carte-app/api/internal/config"
	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/logger"
	"github.com/carte-app/api/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type seedOptions struct {
	menu     string
	password string
	category string
	item     string
	stock    int32
}

func main() {
	opts := seedOptions{}
	pflag.StringVar(&opts.menu, "menu", "Bistro", "menu name")
	pflag.StringVar(&opts.password, "password", "", "menu admin password (default $SEED_PASSWORD, then \"admin\")")
	pflag.StringVar(&opts.category, "category", "Drinks", "category name")
	pflag.StringVar(&opts.item, "item", "Cola", "item name")
	pflag.Int32Var(&opts.stock, "stock", 5, "initial item stock")
	pflag.Parse()

	if opts.password == "" {
		opts.password = os.Getenv("SEED_PASSWORD")
	}
	if opts.password == "" {
		opts.password = "admin"
		logrus.Warn("using default admin password 'admin'; change it in production")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		logrus.WithError(err).Fatal("setup logger")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("unable to connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("unable to ping database")
	}

	verifier, err := auth.NewVerifier(cfg.AdminPasswordScheme)
	if err != nil {
		logrus.WithError(err).Fatal("admin verifier")
	}
	catalog := service.NewCatalogService(pool, func(db database.DBTX) service.CatalogStore {
		return database.New(db)
	}, verifier)

	menuID, err := seed(ctx, catalog, opts)
	if err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
	logrus.WithField("menu_id", menuID).Info("seed completed successfully")
}

// menuSeeder is the slice of the catalog the seed needs.
// Satisfied by *service.CatalogService.
type menuSeeder interface {
	ListMenus(ctx context.Context) ([]database.Menu, error)
	CreateMenu(ctx context.Context, name, password string) (database.Menu, error)
	AddCategory(ctx context.Context, menuID int64, name string) (*service.CatalogUpdate, error)
	AddItem(ctx context.Context, menuID, categoryID int64, name string, stock int32) (*service.CatalogUpdate, error)
}

// seed creates the demo menu unless a menu with the same name exists.
func seed(ctx context.Context, catalog menuSeeder, opts seedOptions) (int64, error) {
	menus, err := catalog.ListMenus(ctx)
	if err != nil {
		return 0, fmt.Errorf("list menus: %w", err)
	}
	for _, m := range menus {
		if m.Name == opts.menu {
			logrus.WithField("menu_id", m.ID).Infof("menu %q already exists, skipping", opts.menu)
			return m.ID, nil
		}
	}

	menu, err := catalog.CreateMenu(ctx, opts.menu, opts.password)
	if err != nil {
		return 0, fmt.Errorf("create menu: %w", err)
	}
	update, err := catalog.AddCategory(ctx, menu.ID, opts.category)
	if err != nil {
		return 0, fmt.Errorf("add category: %w", err)
	}

	var categoryID int64
	for _, c := range update.Categories {
		if c.Name == opts.category {
			categoryID = c.ID
		}
	}
	if _, err := catalog.AddItem(ctx, menu.ID, categoryID, opts.item, opts.stock); err != nil {
		return 0, fmt.Errorf("add item: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"menu_id":  menu.ID,
		"category": opts.category,
		"item":     opts.item,
		"stock":    opts.stock,
	}).Infof("created menu %q", opts.menu)
	return menu.ID, nil
}
