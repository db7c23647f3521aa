package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
)

// ProductInput carries a product create or update. Image is optional;
// when present it is sent as a binary multipart field.
type ProductInput struct {
	ProductID   string // required for updates, empty for creates
	Name        string
	Description string
	Price       float64
	ImageName   string
	ImageData   []byte
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, q resource.Query) (resource.Page[model.Product], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/products", listParams(q), nil, "")
	if err != nil {
		return resource.Page[model.Product]{}, err
	}
	return decodeListPage[model.Product](c.logger, body, q), nil
}

// CreateProduct creates a product via a multipart request.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, "/api/products", nil, body, contentType)
	return err
}

// UpdateProduct updates a product via a multipart request.
func (c *Client) UpdateProduct(ctx context.Context, in ProductInput) error {
	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, "/api/products", nil, body, contentType)
	return err
}

// DeleteProduct deletes a product. The id travels in the request body.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	_, err := c.deleteJSON(ctx, "/api/products", map[string]string{"productId": productID})
	return err
}

// encodeProductForm builds the multipart body for product writes:
// fields name, description, price, and an optional binary image field.
func encodeProductForm(in ProductInput) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
	}
	if in.ProductID != "" {
		fields["productId"] = in.ProductID
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeAPIMalformed, "failed to encode product form", err)
		}
	}

	if len(in.ImageData) > 0 {
		name := in.ImageName
		if name == "" {
			name = "image"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeAPIMalformed, "failed to attach product image", err)
		}
		if _, err := part.Write(in.ImageData); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeAPIMalformed, "failed to write product image", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeAPIMalformed, "failed to finalize product form", err)
	}

	return &buf, w.FormDataContentType(), nil
}
