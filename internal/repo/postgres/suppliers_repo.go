package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/supplier"
	"github.com/sportnest/sportnest/internal/observability"
)

type SuppliersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSuppliersRepo(pool *pgxpool.Pool, prom *observability.Prom) *SuppliersRepo {
	return &SuppliersRepo{pool: pool, prom: prom}
}

func (r *SuppliersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SuppliersRepo) Create(ctx context.Context, req supplier.CreateSupplierRequest) (supplier.Supplier, error) {
	s := supplier.NewFromCreateRequest(req)

	err := r.observe("suppliers.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO suppliers (id, name, contact_name, email, phone, category, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			s.ID, s.Name, s.ContactName, s.Email, s.Phone, s.Category, s.CreatedAt, s.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return supplier.Supplier{}, err
	}

	return s, nil
}

func (r *SuppliersRepo) List(ctx context.Context) ([]supplier.Supplier, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("suppliers.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, contact_name, email, phone, category, created_at, updated_at
			 FROM suppliers ORDER BY name ASC, id ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]supplier.Supplier, 0)

	for rows.Next() {
		var s supplier.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Category, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SuppliersRepo) Update(ctx context.Context, id string, req supplier.UpdateSupplierRequest) (supplier.Supplier, error) {
	var s supplier.Supplier

	err := r.observe("suppliers.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE suppliers
				SET name = $2, contact_name = $3, email = $4, phone = $5, category = $6, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, contact_name, email, phone, category, created_at, updated_at`,
			id, req.Name, req.ContactName, req.Email, req.Phone, req.Category,
		).Scan(&s.ID, &s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Category, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return supplier.Supplier{}, supplier.ErrNotFound
		}
		return supplier.Supplier{}, err
	}

	return s, nil
}

func (r *SuppliersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("suppliers.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return supplier.ErrNotFound
		}

		return nil
	})
}

// --- inventory ---

func (r *SuppliersRepo) CreateItem(ctx context.Context, req supplier.CreateItemRequest) (supplier.InventoryItem, error) {
	it := supplier.NewItemFromCreateRequest(req)

	err := r.observe("inventory.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO inventory_items (id, name, quantity, unit_price, supplier_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, it.Name, it.Quantity, it.UnitPrice, it.SupplierID, it.CreatedAt, it.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return supplier.InventoryItem{}, err
	}

	return it, nil
}

func (r *SuppliersRepo) ListItems(ctx context.Context) ([]supplier.InventoryItem, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("inventory.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, quantity, unit_price, supplier_id, created_at, updated_at
			 FROM inventory_items ORDER BY name ASC, id ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]supplier.InventoryItem, 0)

	for rows.Next() {
		var it supplier.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.UnitPrice, &it.SupplierID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	return out, rows.Err()
}

// AdjustItem changes the stock count by delta. The guard rides in the SQL so
// concurrent adjustments cannot drive the count negative.
func (r *SuppliersRepo) AdjustItem(ctx context.Context, id string, delta int) (supplier.InventoryItem, error) {
	var it supplier.InventoryItem

	err := r.observe("inventory.adjust", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE inventory_items
				SET quantity = quantity + $2, updated_at = NOW()
			 WHERE id = $1 AND quantity + $2 >= 0
			 RETURNING id, name, quantity, unit_price, supplier_id, created_at, updated_at`,
			id, delta,
		).Scan(&it.ID, &it.Name, &it.Quantity, &it.UnitPrice, &it.SupplierID, &it.CreatedAt, &it.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// row missing, or the guard refused the adjustment
			var dummy string
			checkErr := r.pool.QueryRow(ctx, `SELECT id FROM inventory_items WHERE id = $1`, id).Scan(&dummy)
			if errors.Is(checkErr, pgx.ErrNoRows) {
				return supplier.InventoryItem{}, supplier.ErrItemNotFound
			}
			return supplier.InventoryItem{}, supplier.ErrInsufficientStock
		}
		return supplier.InventoryItem{}, err
	}

	return it, nil
}

func (r *SuppliersRepo) DeleteItem(ctx context.Context, id string) error {
	return r.observe("inventory.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return supplier.ErrItemNotFound
		}

		return nil
	})
}
