package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MahmoudHooda2019/alswaife/internal/clock"
	ledgerdomain "github.com/MahmoudHooda2019/alswaife/internal/ledger/domain"
	"github.com/MahmoudHooda2019/alswaife/internal/ledger/repository"
	pricingdomain "github.com/MahmoudHooda2019/alswaife/internal/pricing/domain"
	sequencedomain "github.com/MahmoudHooda2019/alswaife/internal/sequence/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	seq   sequencedomain.Service
	clock clock.Clock
	repo  ledgerdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Seq   sequencedomain.Service
	Clock clock.Clock
}

func NewService(p ServiceParam) ledgerdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("ledger.service"),

		genID: p.GenID,
		seq:   p.Seq,
		clock: p.Clock,
		repo:  repository.Provide(),
	}
}

func (s *Service) Commit(ctx context.Context, draft ledgerdomain.Draft) (*ledgerdomain.Invoice, error) {
	if err := validateDraft(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ledgerdomain.ErrCommitAborted, err)
	}

	// Summed in entry order so the exporter's cross-check formula walks the
	// same sequence.
	grandTotal := decimal.Zero
	for _, item := range draft.Items {
		grandTotal = grandTotal.Add(item.LineTotal)
	}

	series := draft.Series
	if strings.TrimSpace(series) == "" {
		series = sequencedomain.DefaultSeries
	}

	// The number is allocated in its own transaction. If anything below
	// fails, the number stays consumed: a gap in the book is acceptable, a
	// duplicate never is.
	number, err := s.seq.AllocateSeries(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgerdomain.ErrCommitAborted, err)
	}

	now := s.clock.Now(ctx)
	invoice := &ledgerdomain.Invoice{
		ID:         s.genID.Generate(),
		Series:     series,
		Number:     number,
		ClientName: draft.ClientName,
		Header:     datatypes.JSONMap(draft.Header),
		GrandTotal: grandTotal,
		Status:     ledgerdomain.InvoiceStatusCommitted,
		IssuedAt:   now,
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.GetLedgerEntry(ctx, tx, draft.ClientName)
		if err != nil {
			return err
		}
		previous := decimal.Zero
		if entry != nil {
			previous = entry.RunningBalance
		}
		invoice.PreviousBalance = previous

		if err := s.repo.InsertInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		items := make([]ledgerdomain.InvoiceItem, len(draft.Items))
		for i, li := range draft.Items {
			items[i] = ledgerdomain.InvoiceItem{
				ID:          s.genID.Generate(),
				InvoiceID:   invoice.ID,
				Position:    i,
				ProductCode: li.ProductCode,
				Thickness:   li.Thickness,
				Description: li.Description,
				Length:      li.Length,
				Height:      li.Height,
				Count:       li.Count,
				UnitPrice:   li.UnitPrice,
				Area:        li.Area,
				LineTotal:   li.LineTotal,
			}
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		invoice.Items = items

		return s.repo.UpsertLedgerEntry(ctx, tx, &ledgerdomain.ClientLedgerEntry{
			ClientName:     draft.ClientName,
			RunningBalance: previous.Add(grandTotal),
			UpdatedAt:      now,
		})
	})
	if err != nil {
		s.log.Warn("invoice commit rolled back",
			zap.String("client", draft.ClientName),
			zap.Int64("skipped_number", number),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ledgerdomain.ErrCommitAborted, err)
	}

	s.log.Info("invoice committed",
		zap.String("series", series),
		zap.Int64("number", number),
		zap.String("client", draft.ClientName),
		zap.String("grand_total", grandTotal.String()))
	return invoice, nil
}

func (s *Service) Reverse(ctx context.Context, series string, number int64) (*ledgerdomain.Invoice, error) {
	original, err := s.GetInvoice(ctx, series, number)
	if err != nil {
		return nil, err
	}

	draft := ledgerdomain.Draft{
		Series:     original.Series,
		ClientName: original.ClientName,
		Header: map[string]any{
			"reverses": original.Number,
		},
	}
	for _, item := range original.Items {
		li := pricingdomain.LineItem{
			ProductCode: item.ProductCode,
			Thickness:   item.Thickness,
			Description: item.Description,
			Length:      item.Length,
			Height:      item.Height,
			Count:       item.Count.Neg(),
			UnitPrice:   item.UnitPrice,
			Area:        item.Area.Neg(),
			LineTotal:   item.LineTotal.Neg(),
		}
		// Already-rounded totals are negated exactly; re-pricing would
		// risk a second rounding.
		li.MarkPriced()
		draft.Items = append(draft.Items, li)
	}

	return s.Commit(ctx, draft)
}

func (s *Service) AddPayment(ctx context.Context, clientName string, amount decimal.Decimal, notes string) (*ledgerdomain.Payment, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, ledgerdomain.ErrInvalidClient
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount %s: %w", amount, ledgerdomain.ErrInvalidPayment)
	}

	now := s.clock.Now(ctx)
	payment := &ledgerdomain.Payment{
		ID:         s.genID.Generate(),
		Reference:  uuid.NewString(),
		ClientName: clientName,
		Amount:     amount,
		PaidAt:     now,
		Notes:      notes,
		CreatedAt:  now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}

		entry, err := s.repo.GetLedgerEntry(ctx, tx, clientName)
		if err != nil {
			return err
		}
		previous := decimal.Zero
		if entry != nil {
			previous = entry.RunningBalance
		}

		return s.repo.UpsertLedgerEntry(ctx, tx, &ledgerdomain.ClientLedgerEntry{
			ClientName:     clientName,
			RunningBalance: previous.Sub(amount),
			UpdatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("client", clientName),
		zap.String("amount", amount.String()))
	return payment, nil
}

func (s *Service) Balance(ctx context.Context, clientName string) (decimal.Decimal, error) {
	entry, err := s.repo.GetLedgerEntry(ctx, s.db, clientName)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if entry == nil {
		return decimal.Zero, nil
	}
	return entry.RunningBalance, nil
}

func (s *Service) GetInvoice(ctx context.Context, series string, number int64) (*ledgerdomain.Invoice, error) {
	if strings.TrimSpace(series) == "" {
		series = sequencedomain.DefaultSeries
	}
	invoice, err := s.repo.FindInvoice(ctx, s.db, series, number)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%s/%d: %w", series, number, ledgerdomain.ErrInvoiceNotFound)
	}
	return invoice, nil
}

func (s *Service) Statement(ctx context.Context, clientName string) (*ledgerdomain.StatementData, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, ledgerdomain.ErrInvalidClient
	}

	invoices, err := s.repo.ListInvoices(ctx, s.db, clientName)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, s.db, clientName)
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance(ctx, clientName)
	if err != nil {
		return nil, err
	}

	// The stored running balance must replay from history before a statement
	// goes out the door.
	paid, err := s.repo.SumPayments(ctx, s.db, clientName)
	if err != nil {
		return nil, err
	}
	invoiced := decimal.Zero
	for _, inv := range invoices {
		invoiced = invoiced.Add(inv.GrandTotal)
	}
	if expected := invoiced.Sub(paid); !balance.Equal(expected) {
		return nil, fmt.Errorf("client %q: stored %s, history %s: %w",
			clientName, balance, expected, ledgerdomain.ErrBalanceDrift)
	}

	return &ledgerdomain.StatementData{
		ClientName: clientName,
		Invoices:   invoices,
		Payments:   payments,
		Balance:    balance,
	}, nil
}

func validateDraft(draft ledgerdomain.Draft) error {
	if strings.TrimSpace(draft.ClientName) == "" {
		return ledgerdomain.ErrInvalidClient
	}
	if len(draft.Items) == 0 {
		return ledgerdomain.ErrEmptyDraft
	}
	for i, item := range draft.Items {
		if !item.Priced() {
			return fmt.Errorf("item %d: %w", i, ledgerdomain.ErrUnpricedItem)
		}
	}
	return nil
}
