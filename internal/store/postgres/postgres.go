package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	return &Store{db: db}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate postgres schema")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const productSelect = `
	SELECT
		b.product_id, b.name, b.category, b.stock_quantity, b.rating,
		l.product_id, l.price, l.type, l.manufacturer, l.expiry_date,
		st.product_id, st.price, st.type,
		ph.product_id, ph.single_side_price, ph.double_side_price, ph.service_type,
		pu.product_id, pu.price, pu.author, pu.publisher, pu.isbn
	FROM base_products b
	LEFT JOIN life_products l ON l.product_id = b.product_id
	LEFT JOIN stationary_products st ON st.product_id = b.product_id
	LEFT JOIN photography_services ph ON ph.product_id = b.product_id
	LEFT JOIN publications pu ON pu.product_id = b.product_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		category string
		rating   sql.NullFloat64

		lifeID, lifeType, lifeMaker sql.NullString
		lifePrice                   sql.NullFloat64
		lifeExpiry                  sql.NullTime

		statID, statType sql.NullString
		statPrice        sql.NullFloat64

		photoID, photoService    sql.NullString
		photoSingle, photoDouble sql.NullFloat64

		pubID, pubAuthor, pubPublisher, pubISBN sql.NullString
		pubPrice                                sql.NullFloat64
	)
	err := row.Scan(
		&p.ProductID, &p.Name, &category, &p.StockQuantity, &rating,
		&lifeID, &lifePrice, &lifeType, &lifeMaker, &lifeExpiry,
		&statID, &statPrice, &statType,
		&photoID, &photoSingle, &photoDouble, &photoService,
		&pubID, &pubPrice, &pubAuthor, &pubPublisher, &pubISBN,
	)
	if err != nil {
		return domain.Product{}, err
	}

	p.Category = domain.Category(category)
	if rating.Valid {
		r := rating.Float64
		p.Rating = &r
	}

	switch p.Category {
	case domain.CategoryLifeProducts:
		if lifeID.Valid {
			life := domain.LifeProduct{Price: lifePrice.Float64, Type: lifeType.String, Manufacturer: lifeMaker.String}
			if lifeExpiry.Valid {
				expiry := lifeExpiry.Time.UTC()
				life.ExpiryDate = &expiry
			}
			p.Variant = life
		}
	case domain.CategoryStationary:
		if statID.Valid {
			p.Variant = domain.StationaryProduct{Price: statPrice.Float64, Type: statType.String}
		}
	case domain.CategoryPhotography:
		if photoID.Valid {
			p.Variant = domain.PhotographyService{
				SingleSidePrice: photoSingle.Float64,
				DoubleSidePrice: photoDouble.Float64,
				ServiceType:     photoService.String,
			}
		}
	case domain.CategoryPublications:
		if pubID.Valid {
			p.Variant = domain.Publication{
				Price:     pubPrice.Float64,
				Author:    pubAuthor.String,
				Publisher: pubPublisher.String,
				ISBN:      pubISBN.String,
			}
		}
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ProductID == "" || product.Name == "" || product.StockQuantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if !product.Category.Valid() {
		return nil, store.ErrInvalidCategory
	}
	if product.Variant == nil || product.Variant.Category() != product.Category {
		return nil, errors.WithMessage(store.ErrInvalidInput, "extension does not match category")
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.Wrap(err, "begin create product")
	}
	defer func() { _ = pgTx.Rollback() }()

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO base_products (product_id, name, category, stock_quantity, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, product.ProductID, product.Name, string(product.Category), product.StockQuantity, nullFloat(product.Rating))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrDuplicateProduct, "product %s", product.ProductID)
		}
		return nil, errors.Wrap(err, "insert base product")
	}

	switch v := product.Variant.(type) {
	case domain.LifeProduct:
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO life_products (product_id, price, type, manufacturer, expiry_date)
			VALUES ($1, $2, $3, $4, $5)
		`, product.ProductID, v.Price, v.Type, v.Manufacturer, nullTime(v.ExpiryDate))
	case domain.StationaryProduct:
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO stationary_products (product_id, price, type) VALUES ($1, $2, $3)
		`, product.ProductID, v.Price, v.Type)
	case domain.PhotographyService:
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO photography_services (product_id, single_side_price, double_side_price, service_type)
			VALUES ($1, $2, $3, $4)
		`, product.ProductID, v.SingleSidePrice, v.DoubleSidePrice, v.ServiceType)
	case domain.Publication:
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO publications (product_id, price, author, publisher, isbn) VALUES ($1, $2, $3, $4, $5)
		`, product.ProductID, v.Price, v.Author, v.Publisher, v.ISBN)
	}
	if err != nil {
		return nil, errors.Wrap(err, "insert product extension")
	}

	if err := pgTx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit create product")
	}

	created := product
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, productSelect+` WHERE b.product_id = $1`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := newQuery(productSelect)
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.where("strpos(lower(b.name), lower(%s)) > 0", search)
	}
	if filter.Category != "" {
		q.where("b.category = %s", string(filter.Category))
	}
	if filter.InStockOnly {
		q.where("b.stock_quantity > 0")
	}
	if filter.OrderByStock {
		q.orderBy("b.stock_quantity DESC, b.product_id ASC")
	} else {
		q.orderBy("b.product_id ASC")
	}
	q.limit(filter.Limit)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func (s *Store) SetStock(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	if qty < 0 {
		return nil, store.ErrNegativeStock
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE base_products SET stock_quantity = $2, updated_at = now() WHERE product_id = $1
	`, productID, qty)
	if err != nil {
		return nil, errors.Wrap(err, "set stock")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "set stock")
	}
	if affected == 0 {
		return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
	}
	return s.GetProduct(ctx, productID)
}

// ProcessSale locks the base product row for the rest of the transaction.
// Concurrent sales of the same product queue on the row lock and re-read the
// committed stock, so the check below never sees a stale quantity.
func (s *Store) ProcessSale(ctx context.Context, productID string, qty int, build store.SaleFunc) (*domain.SaleReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.Wrap(err, "begin sale")
	}
	defer func() { _ = pgTx.Rollback() }()

	product, err := scanProduct(pgTx.QueryRowContext(ctx, productSelect+` WHERE b.product_id = $1 FOR UPDATE OF b`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "lock product for sale")
	}
	if product.StockQuantity < qty {
		return nil, errors.Wrapf(store.ErrInsufficientStock, "product %s has %d, requested %d", productID, product.StockQuantity, qty)
	}

	sale, entry, err := build(product)
	if err != nil {
		return nil, err
	}

	if _, err := pgTx.ExecContext(ctx, `
		UPDATE base_products SET stock_quantity = stock_quantity - $2, updated_at = now() WHERE product_id = $1
	`, productID, qty); err != nil {
		return nil, errors.Wrap(err, "decrement stock")
	}

	var singleSided any
	if sale.IsSingleSided != nil {
		singleSided = *sale.IsSingleSided
	}
	if _, err := pgTx.ExecContext(ctx, `
		INSERT INTO sales (sale_id, product_id, quantity, unit_price, total_amount, is_single_sided, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sale.SaleID, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.TotalAmount, singleSided, sale.Timestamp); err != nil {
		return nil, errors.Wrap(err, "insert sale")
	}

	if err := insertTransaction(ctx, pgTx, entry); err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit sale")
	}
	return &domain.SaleReceipt{Sale: sale, Transaction: entry}, nil
}

func (s *Store) ProcessPurchase(ctx context.Context, productID string, qty int, build store.PurchaseFunc) (*domain.PurchaseReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.Wrap(err, "begin purchase")
	}
	defer func() { _ = pgTx.Rollback() }()

	product, err := scanProduct(pgTx.QueryRowContext(ctx, productSelect+` WHERE b.product_id = $1 FOR UPDATE OF b`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "lock product for purchase")
	}

	purchase, entry, err := build(product)
	if err != nil {
		return nil, err
	}

	if _, err := pgTx.ExecContext(ctx, `
		UPDATE base_products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE product_id = $1
	`, productID, qty); err != nil {
		return nil, errors.Wrap(err, "increment stock")
	}

	if _, err := pgTx.ExecContext(ctx, `
		INSERT INTO purchases (purchase_id, product_id, quantity, unit_cost, total_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, purchase.PurchaseID, purchase.ProductID, purchase.Quantity, purchase.UnitCost, purchase.TotalCost, purchase.Timestamp); err != nil {
		return nil, errors.Wrap(err, "insert purchase")
	}

	if err := insertTransaction(ctx, pgTx, entry); err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit purchase")
	}
	return &domain.PurchaseReceipt{Purchase: purchase, Transaction: entry}, nil
}

func (s *Store) AppendTransaction(ctx context.Context, entry domain.Transaction) error {
	if entry.TransactionID == "" {
		return store.ErrInvalidInput
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin append transaction")
	}
	defer func() { _ = pgTx.Rollback() }()

	if entry.ProductID != nil {
		var exists bool
		if err := pgTx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM base_products WHERE product_id = $1)
		`, *entry.ProductID).Scan(&exists); err != nil {
			return errors.Wrap(err, "check transaction product")
		}
		if !exists {
			return errors.Wrapf(store.ErrNotFound, "product %s", *entry.ProductID)
		}
	}

	if err := insertTransaction(ctx, pgTx, entry); err != nil {
		return err
	}
	return errors.Wrap(pgTx.Commit(), "commit append transaction")
}

func insertTransaction(ctx context.Context, pgTx *sql.Tx, entry domain.Transaction) error {
	var category any
	if entry.ProductCategory != nil {
		category = string(*entry.ProductCategory)
	}
	_, err := pgTx.ExecContext(ctx, `
		INSERT INTO transactions (transaction_id, type, amount, quantity, product_id, product_category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.TransactionID, string(entry.Type), entry.Amount, entry.Quantity, nullString(entry.ProductID), category,
		entry.Description, entry.Timestamp)
	if err != nil {
		return errors.Wrap(err, "insert transaction")
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	q := newQuery(`
		SELECT t.transaction_id, t.type, t.amount, t.quantity, t.product_id, t.product_category, t.description, t.created_at,
			b.product_id, b.name, b.category, b.stock_quantity, b.rating
		FROM transactions t
		LEFT JOIN base_products b ON b.product_id = t.product_id
	`)
	if filter.Start != nil {
		q.where("t.created_at >= %s", *filter.Start)
	}
	if filter.End != nil {
		q.where("t.created_at <= %s", *filter.End)
	}
	if filter.Type != "" {
		q.where("t.type = %s", string(filter.Type))
	}
	switch {
	case filter.Category == "":
	case filter.Category == domain.CategoryUncategorized:
		q.where("t.product_category IS NULL")
	default:
		q.where("t.product_category = %s", string(filter.Category))
	}
	q.orderBy("t.created_at DESC, t.transaction_id DESC")
	q.limit(filter.Limit)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	result := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		var (
			entry                                domain.Transaction
			kind                                 string
			productID, category                  sql.NullString
			joinedID, joinedName, joinedCategory sql.NullString
			joinedStock                          sql.NullInt64
			joinedRating                         sql.NullFloat64
		)
		if err := rows.Scan(&entry.TransactionID, &kind, &entry.Amount, &entry.Quantity, &productID, &category,
			&entry.Description, &entry.Timestamp, &joinedID, &joinedName, &joinedCategory, &joinedStock, &joinedRating); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		entry.Type = domain.TransactionType(kind)
		entry.Timestamp = entry.Timestamp.UTC()
		if productID.Valid {
			id := productID.String
			entry.ProductID = &id
		}
		if category.Valid {
			c := domain.Category(category.String)
			entry.ProductCategory = &c
		}
		if joinedID.Valid {
			summary := domain.ProductSummary{
				ProductID:     joinedID.String,
				Name:          joinedName.String,
				Category:      domain.Category(joinedCategory.String),
				StockQuantity: int(joinedStock.Int64),
			}
			if joinedRating.Valid {
				r := joinedRating.Float64
				summary.Rating = &r
			}
			entry.Product = &summary
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return result, nil
}

func (s *Store) SumSales(ctx context.Context, from time.Time, to time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "sum sales")
	}
	return total, nil
}

func (s *Store) SumPurchases(ctx context.Context, from time.Time, to time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cost), 0) FROM purchases WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "sum purchases")
	}
	return total, nil
}

func (s *Store) UpsertSalesSummary(ctx context.Context, summary domain.SalesSummary) error {
	if summary.SalesSummaryID == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_summaries (sales_summary_id, total_value, change_percentage, summary_date)
		VALUES ($1, $2, $3, $4::date)
		ON CONFLICT (summary_date) DO UPDATE
		SET total_value = EXCLUDED.total_value, change_percentage = EXCLUDED.change_percentage
	`, summary.SalesSummaryID, summary.TotalValue, nullFloat(summary.ChangePercentage), dateKey(summary.Date))
	return errors.Wrap(err, "upsert sales summary")
}

func (s *Store) UpsertPurchaseSummary(ctx context.Context, summary domain.PurchaseSummary) error {
	if summary.PurchaseSummaryID == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchase_summaries (purchase_summary_id, total_purchased, change_percentage, summary_date)
		VALUES ($1, $2, $3, $4::date)
		ON CONFLICT (summary_date) DO UPDATE
		SET total_purchased = EXCLUDED.total_purchased, change_percentage = EXCLUDED.change_percentage
	`, summary.PurchaseSummaryID, summary.TotalPurchased, nullFloat(summary.ChangePercentage), dateKey(summary.Date))
	return errors.Wrap(err, "upsert purchase summary")
}

func (s *Store) ListSalesSummaries(ctx context.Context, limit int) ([]domain.SalesSummary, error) {
	q := newQuery(`SELECT sales_summary_id, total_value, change_percentage, to_char(summary_date, 'YYYY-MM-DD') FROM sales_summaries`)
	q.orderBy("summary_date DESC")
	q.limit(limit)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list sales summaries")
	}
	defer rows.Close()

	result := make([]domain.SalesSummary, 0, 8)
	for rows.Next() {
		var (
			summary domain.SalesSummary
			change  sql.NullFloat64
			date    string
		)
		if err := rows.Scan(&summary.SalesSummaryID, &summary.TotalValue, &change, &date); err != nil {
			return nil, errors.Wrap(err, "scan sales summary")
		}
		summary.ChangePercentage = floatPtr(change)
		if summary.Date, err = parseDateKey(date); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, errors.Wrap(rows.Err(), "list sales summaries")
}

func (s *Store) ListPurchaseSummaries(ctx context.Context, limit int) ([]domain.PurchaseSummary, error) {
	q := newQuery(`SELECT purchase_summary_id, total_purchased, change_percentage, to_char(summary_date, 'YYYY-MM-DD') FROM purchase_summaries`)
	q.orderBy("summary_date DESC")
	q.limit(limit)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list purchase summaries")
	}
	defer rows.Close()

	result := make([]domain.PurchaseSummary, 0, 8)
	for rows.Next() {
		var (
			summary domain.PurchaseSummary
			change  sql.NullFloat64
			date    string
		)
		if err := rows.Scan(&summary.PurchaseSummaryID, &summary.TotalPurchased, &change, &date); err != nil {
			return nil, errors.Wrap(err, "scan purchase summary")
		}
		summary.ChangePercentage = floatPtr(change)
		if summary.Date, err = parseDateKey(date); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, errors.Wrap(rows.Err(), "list purchase summaries")
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.Actor, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return errors.Wrap(err, "insert audit log")
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	q := newQuery(`SELECT id, actor, actor_role, action, entity_type, entity_id, detail, created_at FROM audit_logs`)
	q.orderBy("created_at DESC")
	q.limit(limit)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, 32)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.ActorRole, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan audit log")
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	return logs, errors.Wrap(rows.Err(), "list audit logs")
}

// query assembles a SELECT with numbered placeholders.
type query struct {
	base       string
	conditions []string
	order      string
	args       []any
}

func newQuery(base string) *query {
	return &query{base: base}
}

// where adds a condition; each %s in cond is replaced by the next placeholder.
func (q *query) where(cond string, args ...any) {
	placeholders := make([]any, len(args))
	for i, arg := range args {
		q.args = append(q.args, arg)
		placeholders[i] = fmt.Sprintf("$%d", len(q.args))
	}
	if len(placeholders) > 0 {
		cond = fmt.Sprintf(cond, placeholders...)
	}
	q.conditions = append(q.conditions, cond)
}

func (q *query) orderBy(order string) {
	q.order = order
}

func (q *query) limit(n int) {
	if n > 0 {
		q.args = append(q.args, n)
		q.order += fmt.Sprintf(" LIMIT $%d", len(q.args))
	}
}

func (q *query) String() string {
	var b strings.Builder
	b.WriteString(q.base)
	if len(q.conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conditions, " AND "))
	}
	if q.order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.order)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func parseDateKey(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse summary date %q", raw)
	}
	return t, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
