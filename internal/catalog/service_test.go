package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recordingMetrics struct {
	mu      sync.Mutex
	created int
}

func (r *recordingMetrics) RecordProductCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func newTestCatalog(t *testing.T) (*Service, *gorm.DB, *recordingMetrics) {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(databasePath+"?_pragma=foreign_keys(1)"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&users.User{}, &Product{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	metrics := &recordingMetrics{}
	service, err := NewService(ServiceConfig{Database: db, Logger: zap.NewNop(), Metrics: metrics})
	if err != nil {
		t.Fatalf("failed to build catalog service: %v", err)
	}
	return service, db, metrics
}

func seedUser(t *testing.T, db *gorm.DB, subject, username string) users.UserID {
	t.Helper()
	user := users.User{Subject: subject, Username: username, Email: username + "@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func mustCreate(t *testing.T, service *Service, owner users.UserID, input CreateProductInput) ProductID {
	t.Helper()
	id, err := service.CreateProduct(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return id
}

func countProducts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&Product{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	return count
}

func TestCreateProductRejectsMissingFieldsWithoutWriting(t *testing.T) {
	service, db, metrics := newTestCatalog(t)
	owner := seedUser(t, db, "uid-1", "alice")

	inputs := []CreateProductInput{
		{Title: "", Price: 10.0},
		{Title: "   ", Price: 10.0},
		{Title: "Bike", Price: nil},
		{Title: "Bike", Price: -1.0},
		{Title: "Bike", Price: "ten"},
		{Title: "Bike", Price: true},
		{Title: "Bike", Price: 1e12},
	}
	for _, input := range inputs {
		_, err := service.CreateProduct(context.Background(), owner, input)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}
	if got := countProducts(t, db); got != 0 {
		t.Fatalf("expected no product rows, got %d", got)
	}
	if metrics.created != 0 {
		t.Fatalf("expected no creation metrics, got %d", metrics.created)
	}
}

func TestCreateProductTrimsTitleAndListsSeller(t *testing.T) {
	service, db, metrics := newTestCatalog(t)
	owner := seedUser(t, db, "uid-1", "alice")

	id := mustCreate(t, service, owner, CreateProductInput{Title: " Bike ", Price: 10.0, Category: " sports "})

	listings, err := service.ListProducts(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected one listing, got %d", len(listings))
	}
	listing := listings[0]
	if listing.ID != id || listing.Title != "Bike" || listing.SellerName != "alice" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if listing.UserID != owner || listing.Price != 10 || listing.Category != "sports" {
		t.Fatalf("unexpected listing fields %+v", listing)
	}
	if listing.Description != "" || listing.Image != "" {
		t.Fatalf("expected optional fields to default to empty, got %+v", listing)
	}
	if metrics.created != 1 {
		t.Fatalf("expected one creation metric, got %d", metrics.created)
	}
}

func TestCreateProductAcceptsNumericStringPrice(t *testing.T) {
	service, db, _ := newTestCatalog(t)
	owner := seedUser(t, db, "uid-1", "alice")

	mustCreate(t, service, owner, CreateProductInput{Title: "Lamp", Price: "12.50"})

	var stored Product
	if err := db.Take(&stored).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if stored.Price != 12.5 {
		t.Fatalf("unexpected price %v", stored.Price)
	}
}

func TestCreateProductForUnknownOwnerIsStorageError(t *testing.T) {
	service, db, _ := newTestCatalog(t)

	_, err := service.CreateProduct(context.Background(), users.UserID(999), CreateProductInput{Title: "Ghost", Price: 1.0})
	if apperr.KindOf(err) != apperr.KindStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if got := countProducts(t, db); got != 0 {
		t.Fatalf("expected no product rows, got %d", got)
	}
}

func TestListProductsOrdersNewestFirst(t *testing.T) {
	service, db, _ := newTestCatalog(t)
	owner := seedUser(t, db, "uid-1", "alice")

	first := mustCreate(t, service, owner, CreateProductInput{Title: "First", Price: 1.0})
	second := mustCreate(t, service, owner, CreateProductInput{Title: "Second", Price: 2.0})
	third := mustCreate(t, service, owner, CreateProductInput{Title: "Third", Price: 3.0})

	listings, err := service.ListProducts(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []ProductID{third, second, first}
	if len(listings) != len(want) {
		t.Fatalf("expected %d listings, got %d", len(want), len(listings))
	}
	for i, id := range want {
		if listings[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, listings[i].ID, id)
		}
	}
}

func TestListProductsFiltersByTextAndCategory(t *testing.T) {
	service, db, _ := newTestCatalog(t)
	alice := seedUser(t, db, "uid-1", "alice")
	bob := seedUser(t, db, "uid-2", "bob")

	roadBike := mustCreate(t, service, alice, CreateProductInput{Title: "road bike", Price: 100.0, Category: "sports"})
	helmet := mustCreate(t, service, bob, CreateProductInput{Title: "Helmet", Description: "fits any bike", Price: 20.0, Category: "accessories"})
	mustCreate(t, service, bob, CreateProductInput{Title: "Sofa", Description: "grey", Price: 80.0, Category: "sports"})

	listings, err := service.ListProducts(context.Background(), ListFilter{Query: "bike"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 2 || listings[0].ID != helmet || listings[1].ID != roadBike {
		t.Fatalf("unexpected text matches %+v", listings)
	}
	if listings[0].SellerName != "bob" || listings[1].SellerName != "alice" {
		t.Fatalf("unexpected seller names %+v", listings)
	}

	listings, err = service.ListProducts(context.Background(), ListFilter{Query: "bike", Category: "sports"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != roadBike {
		t.Fatalf("expected only the intersection, got %+v", listings)
	}

	listings, err = service.ListProducts(context.Background(), ListFilter{Category: "accessories"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != helmet {
		t.Fatalf("expected category match only, got %+v", listings)
	}

	listings, err = service.ListProducts(context.Background(), ListFilter{Category: "sport"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected category to match exactly, got %+v", listings)
	}
}

func TestListProductsTreatsWildcardsLiterally(t *testing.T) {
	service, db, _ := newTestCatalog(t)
	owner := seedUser(t, db, "uid-1", "alice")

	discount := mustCreate(t, service, owner, CreateProductInput{Title: "50% off chair", Price: 5.0})
	mustCreate(t, service, owner, CreateProductInput{Title: "500 marbles", Price: 5.0})

	listings, err := service.ListProducts(context.Background(), ListFilter{Query: "0%"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != discount {
		t.Fatalf("expected literal percent match, got %+v", listings)
	}

	listings, err = service.ListProducts(context.Background(), ListFilter{Query: "_"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected underscore to match literally, got %+v", listings)
	}
}

func TestListProductsEmptyCatalogReturnsEmptySlice(t *testing.T) {
	service, _, _ := newTestCatalog(t)
	listings, err := service.ListProducts(context.Background(), ListFilter{Query: "  ", Category: ""})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listings == nil || len(listings) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", listings)
	}
}

func TestListFilterPredicatesUseBoundParameters(t *testing.T) {
	hostile := "x' OR 1=1 --"
	predicates := ListFilter{Query: hostile, Category: "books"}.predicates()
	if len(predicates) != 2 {
		t.Fatalf("expected two predicates, got %d", len(predicates))
	}
	for _, predicate := range predicates {
		expr, ok := predicate.(clause.Expr)
		if !ok {
			t.Fatalf("unexpected predicate type %T", predicate)
		}
		if strings.Contains(expr.SQL, hostile) || strings.Contains(expr.SQL, "books") {
			t.Fatalf("filter value interpolated into SQL: %s", expr.SQL)
		}
	}
	text := predicates[0].(clause.Expr)
	if len(text.Vars) != 2 || text.Vars[0] != "%x' OR 1=1 --%" {
		t.Fatalf("unexpected text vars %v", text.Vars)
	}
}
