package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/pkg/database"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
)

// OrderRepository persists orders and their items in PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates an order repository over the given query surface.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, organization_id, user_id, order_number, status, currency, subtotal, total_amount,
		customer_email, customer_phone, customer_full_name, shipping_address, created_at, updated_at`

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, organization_id, user_id, order_number, status, currency, subtotal, total_amount,
			customer_email, customer_phone, customer_full_name, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())`,
		order.ID, order.OrganizationID, order.UserID, order.OrderNumber, order.Status, order.Currency,
		order.Subtotal, order.TotalAmount, order.CustomerEmail, order.CustomerPhone,
		order.CustomerFullName, order.ShippingAddress,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		_, err := r.db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, variant_id, location_id, sku, name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, item.OrderID, item.VariantID, item.LocationID, item.SKU, item.Name,
			item.Quantity, item.UnitPrice, item.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND organization_id = $2`,
		orderID, organizationID,
	).Scan(
		&o.ID, &o.OrganizationID, &o.UserID, &o.OrderNumber, &o.Status, &o.Currency,
		&o.Subtotal, &o.TotalAmount, &o.CustomerEmail, &o.CustomerPhone,
		&o.CustomerFullName, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *OrderRepository) items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, variant_id, location_id, sku, name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.LocationID, &it.SKU, &it.Name,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *OrderRepository) TransitionStatus(ctx context.Context, organizationID, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND status = $3`,
		orderID, organizationID, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("transition order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) List(ctx context.Context, organizationID uuid.UUID, filter repository.OrderFilter) ([]domain.Order, int, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT ` + orderColumns + `, count(*) OVER() AS total
		FROM orders
		WHERE organization_id = $1`
	args := []any{organizationID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var total int
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrganizationID, &o.UserID, &o.OrderNumber, &o.Status, &o.Currency,
			&o.Subtotal, &o.TotalAmount, &o.CustomerEmail, &o.CustomerPhone,
			&o.CustomerFullName, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, total, nil
}
