package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrDuplicateTrackingCode = errors.New("tracking code already in use")

type Repository interface {
	// Insert stores the order and its lines atomically and fills in ID and CreatedAt.
	Insert(ctx context.Context, o *Order) error
	FindByTrackingCode(ctx context.Context, code string) (*Order, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	// CompareAndSetStatus moves the order to next only if its status is
	// currently expected. It reports whether the row was updated.
	CompareAndSetStatus(ctx context.Context, id int64, expected, next Status) (bool, error)
	SetPaymentRef(ctx context.Context, id int64, ref string) error
	ListByTruck(ctx context.Context, truckID int64, limit, offset int) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Insert(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (truck_id, customer_name, customer_phone, tracking_code,
		                    total_amount, status, payment_ref, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING id, created_at
	`, o.TruckID, o.CustomerName, o.CustomerPhone, o.TrackingCode,
		o.Total.String(), o.Status, o.PaymentRef).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_tracking_code_key" {
			return ErrDuplicateTrackingCode
		}
		return err
	}

	batch := &pgx.Batch{}
	for i, l := range o.Lines {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, menu_item_id, item_name, price,
			                         quantity, selected_size, selected_options)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, o.ID, i, l.MenuItemID, l.ItemName, l.UnitPrice.String(), l.Quantity, l.SelectedSize, l.SelectedOptions)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, truck_id, customer_name, customer_phone, tracking_code,
	total_amount::text, status, payment_ref, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.TruckID, &o.CustomerName, &o.CustomerPhone, &o.TrackingCode,
		&total, &o.Status, &o.PaymentRef, &o.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %d total: %w", o.ID, err)
	}
	return &o, nil
}

func (r *PGRepo) findOne(ctx context.Context, where string, arg any) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) FindByTrackingCode(ctx context.Context, code string) (*Order, error) {
	return r.findOne(ctx, `tracking_code=$1`, code)
}

func (r *PGRepo) FindByID(ctx context.Context, id int64) (*Order, error) {
	return r.findOne(ctx, `id=$1`, id)
}

func (r *PGRepo) lines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT menu_item_id, item_name, price::text, quantity, selected_size, selected_options
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var price string
		if err := rows.Scan(&l.MenuItemID, &l.ItemName, &price, &l.Quantity, &l.SelectedSize, &l.SelectedOptions); err != nil {
			return nil, err
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order %d line price: %w", orderID, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *PGRepo) CompareAndSetStatus(ctx context.Context, id int64, expected, next Status) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) SetPaymentRef(ctx context.Context, id int64, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_ref = $2, updated_at = NOW()
		WHERE id = $1
	`, id, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByTruck(ctx context.Context, truckID int64, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE truck_id=$1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
	`, truckID, limit, offset)
	if err != nil {
		return nil, err
	}
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Lines, err = r.lines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
