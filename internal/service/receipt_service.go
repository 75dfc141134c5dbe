package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/calculator"
	"github.com/splitr/splitr/internal/imagestore"
	"github.com/splitr/splitr/internal/metrics"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/ocr"
	"github.com/splitr/splitr/internal/storage"
)

// centTolerance is how far the parser's subtotal may drift from the
// recomputed item sum before the receipt is flagged.
var centTolerance = decimal.New(1, -2)

// ReceiptParser is the slice of the parse client the receipt service
// needs; it is an interface so tests can stub the external service.
type ReceiptParser interface {
	Parse(ctx context.Context, filename, contentType string, image io.Reader) (*ocr.Receipt, error)
}

// ReceiptService handles receipt intake and retrieval.
type ReceiptService struct {
	store  storage.Store
	parser ReceiptParser
	images imagestore.Store
}

// NewReceiptService creates a ReceiptService.
func NewReceiptService(store storage.Store, parser ReceiptParser, images imagestore.Store) *ReceiptService {
	return &ReceiptService{store: store, parser: parser, images: images}
}

// Parse uploads a receipt image, runs it through the external parse
// service, normalizes the result, and persists the receipt for the user.
//
// Image storage is best-effort: an upload failure is logged and the
// receipt proceeds without an image URL. A parse failure aborts the whole
// operation; no partial receipt is stored.
func (s *ReceiptService) Parse(ctx context.Context, userID, filename, contentType string, image []byte) (*models.Receipt, error) {
	key := fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New().String(), path.Ext(filename))
	imageURL, err := s.images.Upload(ctx, key, contentType, bytes.NewReader(image))
	if err != nil {
		slog.Warn("Receipt image upload failed", "user_id", userID, "error", err)
		imageURL = ""
	}

	parsed, err := s.parser.Parse(ctx, filename, contentType, bytes.NewReader(image))
	if err != nil {
		metrics.ParseFailures.Inc()
		slog.Error("Receipt parse failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrParseUpstream, err)
	}

	raw := make([]calculator.RawItem, len(parsed.Items))
	for i, item := range parsed.Items {
		raw[i] = calculator.RawItem{
			Name:     item.Name,
			Price:    item.Price.Decimal,
			Quantity: int64(item.Quantity),
		}
	}
	items := calculator.NormalizeItems(raw)
	subtotal := calculator.ItemsSubtotal(items)

	// The recomputed subtotal wins over the parser's; a disagreement is
	// flagged on the receipt, not fatal.
	mismatch := !parsed.Subtotal.IsZero() &&
		parsed.Subtotal.Decimal.Sub(subtotal).Abs().GreaterThan(centTolerance)

	receipt := &models.Receipt{
		UserID:           userID,
		StoreName:        parsed.StoreName,
		Date:             parsed.Date,
		ImageURL:         imageURL,
		Items:            items,
		Subtotal:         subtotal,
		Tax:              parsed.Tax.Decimal,
		Total:            parsed.Total.Decimal,
		SubtotalMismatch: mismatch,
	}

	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	metrics.ReceiptsParsed.Inc()
	slog.Info("Receipt parsed",
		"receipt_id", receipt.ID,
		"user_id", userID,
		"items", len(items),
		"subtotal", subtotal,
		"subtotal_mismatch", mismatch,
	)
	return receipt, nil
}

// Get retrieves a receipt; only its owner may read it.
func (s *ReceiptService) Get(ctx context.Context, userID, receiptID string) (*models.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != userID {
		return nil, ErrForbidden
	}
	return receipt, nil
}

// List retrieves the caller's receipts, newest first.
func (s *ReceiptService) List(ctx context.Context, userID string) ([]models.Receipt, error) {
	return s.store.ListReceiptsByUser(ctx, userID)
}
