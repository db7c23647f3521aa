package api

import (
	"context"
	"net/http"

	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
)

// CreateOrderInput carries a new order.
type CreateOrderInput struct {
	CustomerName string `json:"customerName"`
	ProductID    string `json:"productId"`
}

// ListOrders fetches one page of orders.
func (c *Client) ListOrders(ctx context.Context, q resource.Query) (resource.Page[model.Order], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/orders", listParams(q), nil, "")
	if err != nil {
		return resource.Page[model.Order]{}, err
	}
	return decodeListPage[model.Order](c.logger, body, q), nil
}

// CreateOrder creates an order.
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) error {
	_, err := c.postJSON(ctx, "/api/orders", in)
	return err
}

// UpdateOrderStatus moves an order to a new status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	_, err := c.putJSON(ctx, "/api/orders", map[string]string{
		"orderId": orderID,
		"status":  string(status),
	})
	return err
}
