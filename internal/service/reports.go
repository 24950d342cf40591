package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/cache"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/export"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/ledger"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/sheetsync"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
)

// Statement builds the period statement, served from cache while no order changed.
func (s *Service) Statement(ctx context.Context, from string, to string, customerID string) (domain.Statement, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.Statement{}, err
	}
	from, to, err = ledger.ParseRange(from, to)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	customerID = strings.TrimSpace(customerID)
	key := cache.StatementKey(from, to, customerID)

	cached, gen, ok, cacheErr := s.cache.Get(ctx, owner, key)
	if cacheErr != nil {
		s.log.WithField("owner", owner).WithError(cacheErr).Warn("statement cache read failed")
	} else if ok {
		return *cached, nil
	}

	orders, err := s.repo.ListOrders(ctx, owner, domain.OrderFilter{From: from, To: to, CustomerID: customerID})
	if err != nil {
		return domain.Statement{}, err
	}
	statement, err := ledger.BuildStatement(orders, from, to, customerID)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	statement.GeneratedAt = s.now().UTC()

	if cacheErr != nil {
		return statement, nil
	}
	if err := s.cache.Set(ctx, owner, key, gen, &statement, s.cacheTTL); err != nil {
		s.log.WithField("owner", owner).WithError(err).Warn("statement cache write failed")
	}
	return statement, nil
}

// ExportWorkbook renders the statement of the range as XLSX.
func (s *Service) ExportWorkbook(ctx context.Context, from string, to string, customerID string) ([]byte, error) {
	return s.exportStatement(ctx, from, to, customerID, export.WriteWorkbook)
}

// ExportPDF renders the statement of the range as PDF.
func (s *Service) ExportPDF(ctx context.Context, from string, to string, customerID string) ([]byte, error) {
	return s.exportStatement(ctx, from, to, customerID, export.WritePDF)
}

func (s *Service) exportStatement(ctx context.Context, from string, to string, customerID string, write func(w io.Writer, statement domain.Statement) error) ([]byte, error) {
	if err := export.CheckRange(from, to); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	statement, err := s.Statement(ctx, from, to, customerID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := write(&buf, statement); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BoxRequirements sizes the day's sold quantities into boxes. An empty day means today.
func (s *Service) BoxRequirements(ctx context.Context, day string) (domain.BoxRequirementResponse, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.BoxRequirementResponse{}, err
	}
	if strings.TrimSpace(day) == "" {
		day = s.today()
	}
	day, err = ledger.ParseDay(day)
	if err != nil {
		return domain.BoxRequirementResponse{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	orders, err := s.repo.ListOrders(ctx, owner, domain.OrderFilter{From: day, To: day})
	if err != nil {
		return domain.BoxRequirementResponse{}, err
	}
	sizes, err := s.repo.GetUnitsPerBox(ctx, owner)
	if err != nil {
		return domain.BoxRequirementResponse{}, err
	}

	return domain.BoxRequirementResponse{
		Date:     day,
		Products: ledger.BoxRequirements(orders, day, sizes),
	}, nil
}

// SyncSheet pushes one row per (date, customer) of the range to the external sheet.
func (s *Service) SyncSheet(ctx context.Context, req domain.SheetSyncRequest) (domain.SheetSyncResponse, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return domain.SheetSyncResponse{}, err
	}
	if s.sheets == nil {
		return domain.SheetSyncResponse{}, sheetsync.ErrNotConfigured
	}
	if err := s.check(req); err != nil {
		return domain.SheetSyncResponse{}, err
	}
	if err := export.CheckRange(req.From, req.To); err != nil {
		return domain.SheetSyncResponse{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	orders, err := s.repo.ListOrders(ctx, owner, domain.OrderFilter{From: req.From, To: req.To})
	if err != nil {
		return domain.SheetSyncResponse{}, err
	}
	rows := SheetRows(orders)

	if err := s.sheets.Push(ctx, rows); err != nil {
		entry := s.log.WithFields(logrus.Fields{"owner": owner, "rows": len(rows)}).WithError(err)
		var syncErr *sheetsync.SyncError
		if errors.As(err, &syncErr) {
			entry = entry.WithFields(logrus.Fields{"status": syncErr.StatusCode, "kind": syncErr.Kind})
		}
		entry.Warn("sheet sync failed")
		return domain.SheetSyncResponse{}, err
	}

	syncedAt := s.now().UTC()
	s.logAudit(ctx, owner, "sheet_sync", "sheet", req.From+".."+req.To, fmt.Sprintf("rows=%d", len(rows)))
	return domain.SheetSyncResponse{
		From:     req.From,
		To:       req.To,
		Rows:     len(rows),
		SyncedAt: syncedAt.Format(time.RFC3339),
	}, nil
}

// SheetRows flattens orders into one row per (date, customer).
func SheetRows(orders []domain.DailyOrder) []domain.SheetRow {
	summaries := ledger.GroupByCustomerAndDate(orders)
	rows := make([]domain.SheetRow, 0, len(summaries))
	for _, summary := range summaries {
		parts := make([]string, 0, len(summary.Items))
		for _, item := range summary.Items {
			parts = append(parts, fmt.Sprintf("%s x %s %s", item.ProductName, item.Quantity, item.Unit))
		}
		rows = append(rows, domain.SheetRow{
			Key:          sheetsync.RowKey(summary.Date, summary.CustomerID),
			Date:         summary.Date,
			CustomerID:   summary.CustomerID,
			CustomerName: summary.CustomerName,
			Items:        strings.Join(parts, ", "),
			TotalAmount:  summary.TotalAmount,
			AmountPaid:   summary.TotalPaid,
			Balance:      summary.Balance,
		})
	}
	return rows
}
