package cart

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresGetOrCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("INSERT INTO carts").WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "items", "total_price", "created_at", "updated_at"}).
		AddRow("c1", "u1", []byte(`[{"productId":"1","name":"Mascara","image":"","price":9.99,"quantity":2}]`), 19.98, now, now)
	mock.ExpectQuery("FROM carts").WithArgs("u1").WillReturnRows(rows)

	c, err := repo.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if c.ID != "c1" || len(c.Items) != 1 || c.Items[0].Quantity != 2 || c.TotalPrice != 19.98 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM carts").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	if _, err := NewPostgresRepository(db).Get(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()

	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", UnitPrice: 5, Quantity: 2})
	mock.ExpectExec("ON CONFLICT \\(owner_id\\) DO UPDATE").
		WithArgs("u1", "c1", sqlmock.AnyArg(), 10.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewPostgresRepository(db).Save(context.Background(), c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE carts SET items").WithArgs("u1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET items").WithArgs("ghost", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Clear(context.Background(), "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := repo.Clear(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
