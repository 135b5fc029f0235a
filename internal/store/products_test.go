package store

import (
	"errors"
	"regexp"
	"testing"

	"genzfits/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateProductRequiresImages(t *testing.T) {
	db, mock := setupMockDB(t)

	_, err := CreateProduct(ctx(), db, models.Product{Name: "Tee", Category: "tshirts", Images: []string{"  "}})
	if !errors.Is(err, ErrImagesRequired) {
		t.Fatalf("expected ErrImagesRequired, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestCreateProductAssignsServerFields(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Tee", 499.0, "tshirts", "Cotton", sqlmock.AnyArg(), 5, nil, nil, nil, nil, sqlmock.AnyArg(), 0.0, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), testNow, testNow))

	product, err := CreateProduct(ctx(), db, models.Product{
		Name:        "Tee",
		Price:       499,
		Category:    "tshirts",
		Description: "Cotton",
		Images:      []string{"/uploads/images/a.png"},
		Stock:       5,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.ID != 3 || !product.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected product %+v", product)
	}
	if product.Sizes == nil {
		t.Fatalf("expected empty sizes slice")
	}
	expectationsMet(t, mock)
}

func TestGetProductScansOptionalColumns(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(productRows().AddRow(
			int64(3), "Tee", 499.0, "tshirts", "Cotton", "{/uploads/images/a.png,/uploads/images/b.png}", 5,
			999.0, int64(50), true, "Acme", "{S,M}", 4.5, 12, testNow, testNow,
		))

	product, err := GetProduct(ctx(), db, 3)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if len(product.Images) != 2 || product.Images[1] != "/uploads/images/b.png" {
		t.Fatalf("unexpected images %v", product.Images)
	}
	if product.OriginalPrice == nil || *product.OriginalPrice != 999 {
		t.Fatalf("unexpected original price %v", product.OriginalPrice)
	}
	if product.Discount == nil || *product.Discount != 50 {
		t.Fatalf("unexpected discount %v", product.Discount)
	}
	if product.Brand == nil || *product.Brand != "Acme" {
		t.Fatalf("unexpected brand %v", product.Brand)
	}
	if len(product.Sizes) != 2 {
		t.Fatalf("unexpected sizes %v", product.Sizes)
	}
	expectationsMet(t, mock)
}

func TestGetProductNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM products WHERE id = \$1`).WillReturnRows(productRows())

	if _, err := GetProduct(ctx(), db, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductMissingReturnsNil(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(productRows())
	mock.ExpectRollback()

	name := "Renamed"
	product, err := UpdateProduct(ctx(), db, 404, models.ProductPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil product, got %+v", product)
	}
	expectationsMet(t, mock)
}

func TestUpdateProductMergesPatch(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(productRows().AddRow(
			int64(3), "Tee", 499.0, "tshirts", "Cotton", "{/uploads/images/a.png}", 5,
			nil, nil, nil, nil, "{S}", 0.0, 0, testNow, testNow,
		))
	mock.ExpectQuery(`UPDATE products`).
		WithArgs("Tee", 449.0, "tshirts", "Cotton", sqlmock.AnyArg(), 5, nil, nil, nil, nil, sqlmock.AnyArg(), 0.0, 0, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testNow))
	mock.ExpectCommit()

	price := 449.0
	product, err := UpdateProduct(ctx(), db, 3, models.ProductPatch{Price: &price})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if product == nil || product.Price != 449 || product.Name != "Tee" {
		t.Fatalf("unexpected product %+v", product)
	}
	expectationsMet(t, mock)
}

func TestUpdateProductRejectsEmptyImages(t *testing.T) {
	db, mock := setupMockDB(t)

	empty := []string{}
	if _, err := UpdateProduct(ctx(), db, 3, models.ProductPatch{Images: &empty}); !errors.Is(err, ErrImagesRequired) {
		t.Fatalf("expected ErrImagesRequired, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSearchProductsIsCaseInsensitive(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(name) LIKE $1`)).
		WithArgs("%hoodie%").
		WillReturnRows(productRows())

	products, err := SearchProducts(ctx(), db, "  HooDie ")
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", products)
	}
	expectationsMet(t, mock)
}

func TestSearchPatternEscapesWildcards(t *testing.T) {
	if got := SearchPattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Fatalf("unexpected pattern %q", got)
	}
}

func TestSearchPatternIgnoresSurroundingWhitespace(t *testing.T) {
	if got := SearchPattern("  Blue "); got != "%blue%" {
		t.Fatalf("unexpected pattern %q", got)
	}
}
