package storage

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
)

// MySQLStore is the durable implementation of the repositories. Orders
// keep their lines as a JSON column: lines are an immutable snapshot
// taken at order time, never queried independently.
type MySQLStore struct {
	db *sqlx.DB
}

func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Products() model.ProductRepository { return mysqlProducts{s.db} }
func (s *MySQLStore) Orders() model.OrderRepository     { return mysqlOrders{s.db} }
func (s *MySQLStore) Users() model.UserRepository       { return mysqlUsers{s.db} }

// PlaceOrder writes the order and applies the stock decrements in one
// transaction. GREATEST keeps stock floored at zero.
func (s *MySQLStore) PlaceOrder(order *model.Order, reserved map[model.ProductID]int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin place order")
	}
	defer tx.Rollback()

	if err := insertOrder(tx, order); err != nil {
		return err
	}
	for productID, quantity := range reserved {
		_, err := tx.Exec(
			`UPDATE products SET stock = GREATEST(stock - ?, 0), updated_at = NOW() WHERE id = ?`,
			quantity, string(productID),
		)
		if err != nil {
			return errors.Wrapf(err, "reserve stock for product %s", productID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit place order")
}

type productRow struct {
	ID          string       `db:"id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	PriceCents  int64        `db:"price_cents"`
	Stock       int          `db:"stock"`
	ImageURL    string       `db:"image_url"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (r productRow) toModel() *model.Product {
	return &model.Product{
		ID:          model.ProductID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type mysqlProducts struct{ db *sqlx.DB }

func (r mysqlProducts) NextID() (model.ProductID, error) {
	return model.ProductID("PROD-" + strings.ToUpper(uuid.NewString())), nil
}

func (r mysqlProducts) Store(product *model.Product) error {
	_, err := r.db.Exec(
		`INSERT INTO products (id, name, description, price_cents, stock, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   name = VALUES(name), description = VALUES(description), price_cents = VALUES(price_cents),
		   stock = VALUES(stock), image_url = VALUES(image_url), updated_at = VALUES(updated_at)`,
		string(product.ID), product.Name, product.Description, product.PriceCents,
		product.Stock, product.ImageURL, product.CreatedAt, product.UpdatedAt,
	)
	return errors.Wrapf(err, "store product %s", product.ID)
}

func (r mysqlProducts) Find(id model.ProductID) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT * FROM products WHERE id = ?`, string(id))
	if err == sql.ErrNoRows {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find product %s", id)
	}
	return row.toModel(), nil
}

func (r mysqlProducts) List() ([]*model.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `SELECT * FROM products ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	result := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

func (r mysqlProducts) Remove(id model.ProductID) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, string(id))
	if err != nil {
		return errors.Wrapf(err, "remove product %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "remove product rows affected")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r mysqlProducts) ReplaceAll(products []*model.Product) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin replace catalog")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return errors.Wrap(err, "clear catalog")
	}
	for _, product := range products {
		_, err := tx.Exec(
			`INSERT INTO products (id, name, description, price_cents, stock, image_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(product.ID), product.Name, product.Description, product.PriceCents,
			product.Stock, product.ImageURL, product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", product.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit replace catalog")
}

type orderRow struct {
	ID            string         `db:"id"`
	CreatedAt     sql.NullTime   `db:"created_at"`
	Lines         []byte         `db:"lines"`
	TotalCents    int64          `db:"total_cents"`
	Status        string         `db:"status"`
	CustomerName  sql.NullString `db:"customer_name"`
	CustomerEmail sql.NullString `db:"customer_email"`
}

func (r orderRow) toModel() (*model.Order, error) {
	status, err := model.ParseOrderStatus(r.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "order %s", r.ID)
	}
	var lines []model.OrderLine
	if err := json.Unmarshal(r.Lines, &lines); err != nil {
		return nil, errors.Wrapf(err, "decode lines of order %s", r.ID)
	}
	order := &model.Order{
		ID:         model.OrderID(r.ID),
		CreatedAt:  r.CreatedAt.Time,
		Lines:      lines,
		TotalCents: r.TotalCents,
		Status:     status,
	}
	if r.CustomerEmail.Valid {
		order.Customer = &model.Customer{Name: r.CustomerName.String, Email: r.CustomerEmail.String}
	}
	return order, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertOrder(e execer, order *model.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return errors.Wrapf(err, "encode lines of order %s", order.ID)
	}
	var customerName, customerEmail interface{}
	if order.Customer != nil {
		customerName = order.Customer.Name
		customerEmail = order.Customer.Email
	}
	_, err = e.Exec(
		`INSERT INTO orders (id, created_at, lines, total_cents, status, customer_name, customer_email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(order.ID), order.CreatedAt, lines, order.TotalCents,
		order.Status.String(), customerName, customerEmail,
	)
	return errors.Wrapf(err, "insert order %s", order.ID)
}

type mysqlOrders struct{ db *sqlx.DB }

func (r mysqlOrders) NextID() (model.OrderID, error) {
	return model.OrderID("ORD-" + strings.ToUpper(uuid.NewString())), nil
}

func (r mysqlOrders) Create(order *model.Order) error {
	return insertOrder(r.db, order)
}

func (r mysqlOrders) Find(id model.OrderID) (*model.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT * FROM orders WHERE id = ?`, string(id))
	if err == sql.ErrNoRows {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find order %s", id)
	}
	return row.toModel()
}

func (r mysqlOrders) Update(order *model.Order) error {
	res, err := r.db.Exec(
		`UPDATE orders SET status = ? WHERE id = ?`,
		order.Status.String(), string(order.ID),
	)
	if err != nil {
		return errors.Wrapf(err, "update order %s", order.ID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order rows affected")
	}
	if affected == 0 {
		// A same-status write affects zero rows on MySQL; make sure
		// the order actually exists before reporting not found.
		var exists int
		if err := r.db.Get(&exists, `SELECT COUNT(1) FROM orders WHERE id = ?`, string(order.ID)); err != nil {
			return errors.Wrapf(err, "check order %s", order.ID)
		}
		if exists == 0 {
			return model.ErrOrderNotFound
		}
	}
	return nil
}

func (r mysqlOrders) ListAll() ([]*model.Order, error) {
	return r.list(`SELECT * FROM orders ORDER BY created_at DESC, id`)
}

func (r mysqlOrders) ListByEmail(email string) ([]*model.Order, error) {
	return r.list(`SELECT * FROM orders WHERE LOWER(customer_email) = LOWER(?) ORDER BY created_at DESC, id`, email)
}

func (r mysqlOrders) list(query string, args ...interface{}) ([]*model.Order, error) {
	var rows []orderRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	result := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, nil
}

type userRow struct {
	ID        string       `db:"id"`
	Email     string       `db:"email"`
	Name      string       `db:"name"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type mysqlUsers struct{ db *sqlx.DB }

func (r mysqlUsers) NextID() (model.UserID, error) {
	return model.UserID(uuid.NewString()), nil
}

func (r mysqlUsers) FindByEmail(email string) (*model.User, error) {
	var row userRow
	err := r.db.Get(&row, `SELECT * FROM users WHERE LOWER(email) = LOWER(?)`, email)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find user %s", email)
	}
	// IsAdmin is intentionally not a column: it is derived at login,
	// never read back from storage.
	return &model.User{
		ID:        model.UserID(row.ID),
		Email:     row.Email,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func (r mysqlUsers) Store(user *model.User) error {
	_, err := r.db.Exec(
		`INSERT INTO users (id, email, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE name = VALUES(name), updated_at = VALUES(updated_at)`,
		string(user.ID), user.Email, user.Name, user.CreatedAt, user.UpdatedAt,
	)
	return errors.Wrapf(err, "store user %s", user.Email)
}
