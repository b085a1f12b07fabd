package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

// ErrRemote marks any failure of the remote order collaborator. Local
// state is never mutated when it is returned.
var ErrRemote = errors.New("remote api failure")

// Client talks to the hosted order backend through its action-based
// query API. Every call carries an opaque bearer token; a non-2xx
// response or an error envelope is a failure. There is no retry and no
// partial commit: the caller re-invokes the triggering action.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type productDTO struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Price       int64  `json:"precio"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imagen_url"`
}

type orderItemDTO struct {
	ID       string `json:"id"`
	Name     string `json:"nombre"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"precio"`
}

type orderDTO struct {
	ID     string         `json:"id"`
	Date   time.Time      `json:"date"`
	Items  []orderItemDTO `json:"items"`
	Total  int64          `json:"total"`
	Status string         `json:"status"`
	Client *struct {
		Name  string `json:"nombre"`
		Email string `json:"email"`
	} `json:"cliente,omitempty"`
}

type responseEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) GetProducts(ctx context.Context) ([]*model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?action=getProducts", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build getProducts request")
	}
	var dtos []productDTO
	if err := c.do(req, &dtos); err != nil {
		return nil, err
	}
	products := make([]*model.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, &model.Product{
			ID:          model.ProductID(dto.ID),
			Name:        dto.Name,
			Description: dto.Description,
			PriceCents:  dto.Price,
			Stock:       dto.Stock,
			ImageURL:    dto.ImageURL,
		})
	}
	return products, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, lines []model.CartLine, total int64) (*model.Order, error) {
	items := make([]orderItemDTO, 0, len(lines))
	for _, line := range lines {
		items = append(items, orderItemDTO{
			ID:       string(line.Product.ID),
			Name:     line.Product.Name,
			Quantity: line.Quantity,
			Price:    line.Product.PriceCents,
		})
	}
	payload := map[string]interface{}{"token": token, "items": items, "total": total}

	var dto orderDTO
	if err := c.post(ctx, "createOrder", payload, &dto); err != nil {
		return nil, err
	}
	return dto.toModel()
}

func (c *Client) GetOrders(ctx context.Context, token string) ([]*model.Order, error) {
	return c.fetchOrders(ctx, "getOrders", token)
}

func (c *Client) GetAllOrders(ctx context.Context, token string) ([]*model.Order, error) {
	return c.fetchOrders(ctx, "getAllOrders", token)
}

func (c *Client) fetchOrders(ctx context.Context, action, token string) ([]*model.Order, error) {
	var dtos []orderDTO
	if err := c.post(ctx, action, map[string]interface{}{"token": token}, &dtos); err != nil {
		return nil, err
	}
	orders := make([]*model.Order, 0, len(dtos))
	for _, dto := range dtos {
		order, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) post(ctx context.Context, action string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s request", action)
	}
	url := fmt.Sprintf("%s?action=%s", c.baseURL, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "build %s request", action)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrRemote, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrRemote, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrRemote, "unexpected status %d", resp.StatusCode)
	}

	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Status == "" {
		// Some actions answer with the bare payload, no envelope.
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrapf(ErrRemote, "decode response: %v", err)
		}
		return nil
	}
	if env.Status == "error" {
		return errors.Wrapf(ErrRemote, "%s", env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(ErrRemote, "decode response data: %v", err)
	}
	return nil
}

func (d orderDTO) toModel() (*model.Order, error) {
	status := model.StatusPending
	if d.Status != "" {
		parsed, err := model.ParseOrderStatus(d.Status)
		if err != nil {
			return nil, errors.Wrapf(ErrRemote, "order %s: unknown status %q", d.ID, d.Status)
		}
		status = parsed
	}
	lines := make([]model.OrderLine, 0, len(d.Items))
	for _, item := range d.Items {
		lines = append(lines, model.OrderLine{
			ProductID:  model.ProductID(item.ID),
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.Price,
		})
	}
	order := &model.Order{
		ID:         model.OrderID(d.ID),
		CreatedAt:  d.Date,
		Lines:      lines,
		TotalCents: d.Total,
		Status:     status,
	}
	if d.Client != nil {
		order.Customer = &model.Customer{Name: d.Client.Name, Email: d.Client.Email}
	}
	return order, nil
}
