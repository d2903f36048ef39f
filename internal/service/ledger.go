package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
	"inventra/backend/internal/xid"
)

// ProcessSale decrements stock and records the sale with its INCOME ledger
// entry as one atomic unit.
func (s *Service) ProcessSale(ctx context.Context, req domain.SaleRequest) (domain.SaleReceipt, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if err := s.validateStruct(req); err != nil {
		return domain.SaleReceipt{}, err
	}

	at := s.timestamp()
	receipt, err := s.repo.ProcessSale(ctx, req.ProductID, req.Quantity, func(p domain.Product) (domain.Sale, domain.Transaction, error) {
		unitPrice := domain.UnitPrice(p, req.IsSingleSided)
		total, err := s.settleTotal(unitPrice, req.Quantity, req.TotalAmount)
		if err != nil {
			return domain.Sale{}, domain.Transaction{}, err
		}

		sale := domain.Sale{
			SaleID:      xid.New("SALE"),
			ProductID:   p.ProductID,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			TotalAmount: total,
			Timestamp:   at,
		}
		if p.Category == domain.CategoryPhotography {
			sale.IsSingleSided = req.IsSingleSided
		}
		return sale, ledgerEntry(p, domain.TransactionIncome, total, req.Quantity,
			fmt.Sprintf("Sale of %d units of product %s", req.Quantity, p.ProductID), at), nil
	})
	if err != nil {
		return domain.SaleReceipt{}, err
	}

	s.logger.Info("sale recorded",
		zap.String("saleId", receipt.Sale.SaleID),
		zap.String("productId", receipt.Sale.ProductID),
		zap.Int("quantity", receipt.Sale.Quantity),
		zap.Float64("totalAmount", receipt.Sale.TotalAmount))
	s.dashboard.Invalidate(ctx)
	return *receipt, nil
}

// settleTotal decides the recorded sale total under the configured policy.
func (s *Service) settleTotal(unitPrice float64, qty int, requested float64) (float64, error) {
	if s.policy == AmountPolicyTrust || unitPrice == 0 {
		return requested, nil
	}
	expected := domain.RoundMoney(unitPrice * float64(qty))
	if requested == 0 {
		return expected, nil
	}
	if math.Abs(requested-expected) > amountTolerance {
		return 0, errors.WithMessagef(store.ErrAmountMismatch, "expected %.2f, got %.2f", expected, requested)
	}
	return requested, nil
}

// RecordPurchase restocks a product and books the cost as an EXPENSE.
func (s *Service) RecordPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseReceipt, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if err := s.validateStruct(req); err != nil {
		return domain.PurchaseReceipt{}, err
	}

	at := s.timestamp()
	receipt, err := s.repo.ProcessPurchase(ctx, req.ProductID, req.Quantity, func(p domain.Product) (domain.Purchase, domain.Transaction, error) {
		total := domain.RoundMoney(req.UnitCost * float64(req.Quantity))
		description := strings.TrimSpace(req.Description)
		if description == "" {
			description = fmt.Sprintf("Purchase of %d units of product %s", req.Quantity, p.ProductID)
		}
		purchase := domain.Purchase{
			PurchaseID: xid.New("PURCHASE"),
			ProductID:  p.ProductID,
			Quantity:   req.Quantity,
			UnitCost:   req.UnitCost,
			TotalCost:  total,
			Timestamp:  at,
		}
		return purchase, ledgerEntry(p, domain.TransactionExpense, total, req.Quantity, description, at), nil
	})
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}

	s.logAudit(ctx, "purchase_record", "product", receipt.Purchase.ProductID,
		fmt.Sprintf("qty=%d,totalCost=%.2f", receipt.Purchase.Quantity, receipt.Purchase.TotalCost))
	s.dashboard.Invalidate(ctx)
	return *receipt, nil
}

// RecordExpense books an EXPENSE that is not tied to a product, such as rent.
func (s *Service) RecordExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Transaction, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validateStruct(req); err != nil {
		return domain.Transaction{}, err
	}

	entry := domain.Transaction{
		TransactionID: xid.New("TRANS"),
		Type:          domain.TransactionExpense,
		Amount:        domain.RoundMoney(req.Amount),
		Description:   req.Description,
		Timestamp:     s.timestamp(),
	}
	if raw := strings.TrimSpace(req.Category); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return domain.Transaction{}, errors.WithMessagef(store.ErrInvalidCategory, "category %q", raw)
		}
		entry.ProductCategory = &category
	}

	if err := s.repo.AppendTransaction(ctx, entry); err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, "expense_record", "transaction", entry.TransactionID,
		fmt.Sprintf("amount=%.2f", entry.Amount))
	s.dashboard.Invalidate(ctx)
	return entry, nil
}

func ledgerEntry(p domain.Product, kind domain.TransactionType, amount float64, qty int, description string, at time.Time) domain.Transaction {
	productID := p.ProductID
	category := p.Category
	return domain.Transaction{
		TransactionID:   xid.New("TRANS"),
		Type:            kind,
		Amount:          amount,
		Quantity:        qty,
		ProductID:       &productID,
		ProductCategory: &category,
		Description:     description,
		Timestamp:       at,
	}
}
