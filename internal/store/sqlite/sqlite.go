// Package sqlite is a single-file store.Repository for local runs. Every
// write transaction starts with BEGIN IMMEDIATE on the only pooled
// connection, so stock checks and decrements are serialized.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"
	"time"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func dsn(path string) string {
	params := []string{
		"_txlock=immediate",
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Migrate creates missing tables. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate sqlite schema")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const productColumns = `
	b.product_id, b.name, b.category, b.stock_quantity, b.rating,
	l.product_id, l.price, l.type, l.manufacturer, l.expiry_date,
	st.product_id, st.price, st.type,
	ph.product_id, ph.single_side_price, ph.double_side_price, ph.service_type,
	pu.product_id, pu.price, pu.author, pu.publisher, pu.isbn
`

const productJoins = `
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
		lifeExpiry                  sql.NullInt64

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

	switch {
	case p.Category == domain.CategoryLifeProducts && lifeID.Valid:
		life := domain.LifeProduct{Price: lifePrice.Float64, Type: lifeType.String, Manufacturer: lifeMaker.String}
		if lifeExpiry.Valid {
			expiry := fromNanos(lifeExpiry.Int64)
			life.ExpiryDate = &expiry
		}
		p.Variant = life
	case p.Category == domain.CategoryStationary && statID.Valid:
		p.Variant = domain.StationaryProduct{Price: statPrice.Float64, Type: statType.String}
	case p.Category == domain.CategoryPhotography && photoID.Valid:
		p.Variant = domain.PhotographyService{
			SingleSidePrice: photoSingle.Float64,
			DoubleSidePrice: photoDouble.Float64,
			ServiceType:     photoService.String,
		}
	case p.Category == domain.CategoryPublications && pubID.Valid:
		p.Variant = domain.Publication{
			Price:     pubPrice.Float64,
			Author:    pubAuthor.String,
			Publisher: pubPublisher.String,
			ISBN:      pubISBN.String,
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin create product")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO base_products (product_id, name, category, stock_quantity, rating)
		VALUES (?, ?, ?, ?, ?)
	`, product.ProductID, product.Name, string(product.Category), product.StockQuantity, nullFloat(product.Rating))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrDuplicateProduct, "product %s", product.ProductID)
		}
		return nil, errors.Wrap(err, "insert base product")
	}

	switch v := product.Variant.(type) {
	case domain.LifeProduct:
		var expiry any
		if v.ExpiryDate != nil {
			expiry = v.ExpiryDate.UnixNano()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO life_products (product_id, price, type, manufacturer, expiry_date)
			VALUES (?, ?, ?, ?, ?)
		`, product.ProductID, v.Price, v.Type, v.Manufacturer, expiry)
	case domain.StationaryProduct:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stationary_products (product_id, price, type) VALUES (?, ?, ?)
		`, product.ProductID, v.Price, v.Type)
	case domain.PhotographyService:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO photography_services (product_id, single_side_price, double_side_price, service_type)
			VALUES (?, ?, ?, ?)
		`, product.ProductID, v.SingleSidePrice, v.DoubleSidePrice, v.ServiceType)
	case domain.Publication:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO publications (product_id, price, author, publisher, isbn) VALUES (?, ?, ?, ?, ?)
		`, product.ProductID, v.Price, v.Author, v.Publisher, v.ISBN)
	}
	if err != nil {
		return nil, errors.Wrap(err, "insert product extension")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit create product")
	}

	created := product
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+productJoins+` WHERE b.product_id = ?`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "instr(lower(b.name), lower(?)) > 0")
		args = append(args, search)
	}
	if filter.Category != "" {
		where = append(where, "b.category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.InStockOnly {
		where = append(where, "b.stock_quantity > 0")
	}

	query := `SELECT ` + productColumns + productJoins
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.OrderByStock {
		query += " ORDER BY b.stock_quantity DESC, b.product_id ASC"
	} else {
		query += " ORDER BY b.product_id ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
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

	res, err := s.db.ExecContext(ctx, `UPDATE base_products SET stock_quantity = ? WHERE product_id = ?`, qty, productID)
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

func (s *Store) ProcessSale(ctx context.Context, productID string, qty int, build store.SaleFunc) (*domain.SaleReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin sale")
	}
	defer func() { _ = tx.Rollback() }()

	product, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+productJoins+` WHERE b.product_id = ?`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "load product for sale")
	}
	if product.StockQuantity < qty {
		return nil, errors.Wrapf(store.ErrInsufficientStock, "product %s has %d, requested %d", productID, product.StockQuantity, qty)
	}

	sale, entry, err := build(product)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE base_products
		SET stock_quantity = stock_quantity - ?
		WHERE product_id = ? AND stock_quantity >= ?
	`, qty, productID, qty)
	if err != nil {
		return nil, errors.Wrap(err, "decrement stock")
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, errors.Wrap(err, "decrement stock")
	} else if affected != 1 {
		return nil, errors.Wrapf(store.ErrInsufficientStock, "product %s", productID)
	}

	var singleSided any
	if sale.IsSingleSided != nil {
		singleSided = *sale.IsSingleSided
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (sale_id, product_id, quantity, unit_price, total_amount, is_single_sided, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sale.SaleID, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.TotalAmount, singleSided, sale.Timestamp.UnixNano())
	if err != nil {
		return nil, errors.Wrap(err, "insert sale")
	}

	if err := insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit sale")
	}
	return &domain.SaleReceipt{Sale: sale, Transaction: entry}, nil
}

func (s *Store) ProcessPurchase(ctx context.Context, productID string, qty int, build store.PurchaseFunc) (*domain.PurchaseReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin purchase")
	}
	defer func() { _ = tx.Rollback() }()

	product, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+productJoins+` WHERE b.product_id = ?`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
		}
		return nil, errors.Wrap(err, "load product for purchase")
	}

	purchase, entry, err := build(product)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE base_products SET stock_quantity = stock_quantity + ? WHERE product_id = ?
	`, qty, productID); err != nil {
		return nil, errors.Wrap(err, "increment stock")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (purchase_id, product_id, quantity, unit_cost, total_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, purchase.PurchaseID, purchase.ProductID, purchase.Quantity, purchase.UnitCost, purchase.TotalCost, purchase.Timestamp.UnixNano())
	if err != nil {
		return nil, errors.Wrap(err, "insert purchase")
	}

	if err := insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit purchase")
	}
	return &domain.PurchaseReceipt{Purchase: purchase, Transaction: entry}, nil
}

func (s *Store) AppendTransaction(ctx context.Context, entry domain.Transaction) error {
	if entry.TransactionID == "" {
		return store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin append transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if entry.ProductID != nil {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM base_products WHERE product_id = ?`, *entry.ProductID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(store.ErrNotFound, "product %s", *entry.ProductID)
		}
		if err != nil {
			return errors.Wrap(err, "check transaction product")
		}
	}

	if err := insertTransaction(ctx, tx, entry); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit append transaction")
}

func insertTransaction(ctx context.Context, tx *sql.Tx, entry domain.Transaction) error {
	var category any
	if entry.ProductCategory != nil {
		category = string(*entry.ProductCategory)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (transaction_id, type, amount, quantity, product_id, product_category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.TransactionID, string(entry.Type), entry.Amount, entry.Quantity, nullString(entry.ProductID), category,
		entry.Description, entry.Timestamp.UnixNano())
	if err != nil {
		return errors.Wrap(err, "insert transaction")
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.Start != nil {
		where = append(where, "t.created_at >= ?")
		args = append(args, filter.Start.UnixNano())
	}
	if filter.End != nil {
		where = append(where, "t.created_at <= ?")
		args = append(args, filter.End.UnixNano())
	}
	if filter.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, string(filter.Type))
	}
	switch {
	case filter.Category == "":
	case filter.Category == domain.CategoryUncategorized:
		where = append(where, "t.product_category IS NULL")
	default:
		where = append(where, "t.product_category = ?")
		args = append(args, string(filter.Category))
	}

	query := `
		SELECT t.transaction_id, t.type, t.amount, t.quantity, t.product_id, t.product_category, t.description, t.created_at,
			b.product_id, b.name, b.category, b.stock_quantity, b.rating
		FROM transactions t
		LEFT JOIN base_products b ON b.product_id = t.product_id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.transaction_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
			createdAt                            int64
			joinedID, joinedName, joinedCategory sql.NullString
			joinedStock                          sql.NullInt64
			joinedRating                         sql.NullFloat64
		)
		if err := rows.Scan(&entry.TransactionID, &kind, &entry.Amount, &entry.Quantity, &productID, &category,
			&entry.Description, &createdAt, &joinedID, &joinedName, &joinedCategory, &joinedStock, &joinedRating); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		entry.Type = domain.TransactionType(kind)
		entry.Timestamp = fromNanos(createdAt)
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
		SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE created_at >= ? AND created_at < ?
	`, from.UnixNano(), to.UnixNano()).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "sum sales")
	}
	return total, nil
}

func (s *Store) SumPurchases(ctx context.Context, from time.Time, to time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cost), 0) FROM purchases WHERE created_at >= ? AND created_at < ?
	`, from.UnixNano(), to.UnixNano()).Scan(&total)
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT (summary_date) DO UPDATE
		SET total_value = excluded.total_value, change_percentage = excluded.change_percentage
	`, summary.SalesSummaryID, summary.TotalValue, nullFloat(summary.ChangePercentage), dateKey(summary.Date))
	return errors.Wrap(err, "upsert sales summary")
}

func (s *Store) UpsertPurchaseSummary(ctx context.Context, summary domain.PurchaseSummary) error {
	if summary.PurchaseSummaryID == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchase_summaries (purchase_summary_id, total_purchased, change_percentage, summary_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (summary_date) DO UPDATE
		SET total_purchased = excluded.total_purchased, change_percentage = excluded.change_percentage
	`, summary.PurchaseSummaryID, summary.TotalPurchased, nullFloat(summary.ChangePercentage), dateKey(summary.Date))
	return errors.Wrap(err, "upsert purchase summary")
}

func (s *Store) ListSalesSummaries(ctx context.Context, limit int) ([]domain.SalesSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sales_summary_id, total_value, change_percentage, summary_date
		FROM sales_summaries
		ORDER BY summary_date DESC
		LIMIT ?
	`, sqlLimit(limit))
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT purchase_summary_id, total_purchased, change_percentage, summary_date
		FROM purchase_summaries
		ORDER BY summary_date DESC
		LIMIT ?
	`, sqlLimit(limit))
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Actor, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt.UnixNano())
	return errors.Wrap(err, "insert audit log")
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, 32)
	for rows.Next() {
		var (
			entry     domain.AuditLog
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.ActorRole, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Detail, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan audit log")
		}
		entry.CreatedAt = fromNanos(createdAt)
		logs = append(logs, entry)
	}
	return logs, errors.Wrap(rows.Err(), "list audit logs")
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
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

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
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

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
