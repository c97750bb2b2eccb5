// Package menu provides read access to trucks, vendors and menu items for checkout.
package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrTruckNotFound  = errors.New("truck not found")
	ErrVendorNotFound = errors.New("vendor not found")
)

type Repository interface {
	// GetMenuItems returns the items that exist among ids, each with its sizes
	// and options, read from a single consistent snapshot. Missing ids are
	// simply absent from the result.
	GetMenuItems(ctx context.Context, ids []int64) ([]Item, error)
	GetTruck(ctx context.Context, id int64) (*Truck, error)
	GetVendor(ctx context.Context, id int64) (*Vendor, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetMenuItems(ctx context.Context, ids []int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT mi.id, mi.menu_category_id, mc.truck_id, mi.name, mi.price::text
		FROM menu_items mi
		JOIN menu_categories mc ON mc.id = mi.menu_category_id
		WHERE mi.id = ANY($1)
		ORDER BY mi.id
	`, ids)
	if err != nil {
		return nil, err
	}
	var items []Item
	index := make(map[int64]int)
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.TruckID, &it.Name, &price); err != nil {
			rows.Close()
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("menu item %d price: %w", it.ID, err)
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, tx.Commit(ctx)
	}

	rows, err = tx.Query(ctx, `
		SELECT id, menu_item_id, name, price::text
		FROM menu_item_sizes
		WHERE menu_item_id = ANY($1)
		ORDER BY menu_item_id, id
	`, ids)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s Size
		var itemID int64
		var price string
		if err := rows.Scan(&s.ID, &itemID, &s.Name, &price); err != nil {
			rows.Close()
			return nil, err
		}
		if s.Price, err = decimal.NewFromString(price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("size %d price: %w", s.ID, err)
		}
		it := &items[index[itemID]]
		it.Sizes = append(it.Sizes, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT id, menu_item_id, name, section, price::text
		FROM menu_item_options
		WHERE menu_item_id = ANY($1)
		ORDER BY menu_item_id, id
	`, ids)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var o Option
		var itemID int64
		var price string
		if err := rows.Scan(&o.ID, &itemID, &o.Name, &o.Section, &price); err != nil {
			rows.Close()
			return nil, err
		}
		if o.Price, err = decimal.NewFromString(price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("option %d price: %w", o.ID, err)
		}
		it := &items[index[itemID]]
		it.Options = append(it.Options, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, tx.Commit(ctx)
}

func (r *PGRepo) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t Truck
	err := r.db.QueryRow(ctx, `
		SELECT id, vendor_id, name, is_active
		FROM trucks WHERE id=$1
	`, id).Scan(&t.ID, &t.VendorID, &t.Name, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTruckNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) GetVendor(ctx context.Context, id int64) (*Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v Vendor
	err := r.db.QueryRow(ctx, `
		SELECT id, name, stripe_account_id
		FROM vendors WHERE id=$1
	`, id).Scan(&v.ID, &v.Name, &v.PayoutAccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
