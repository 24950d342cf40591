package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

var ErrInvalidRange = errors.New("invalid date range")

// ParseDay validates a YYYY-MM-DD calendar day and returns it in canonical form.
func ParseDay(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.Parse(domain.DateLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidRange, raw)
	}
	return parsed.Format(domain.DateLayout), nil
}

// ParseRange validates an inclusive [from, to] day range.
func ParseRange(from string, to string) (string, string, error) {
	start, err := ParseDay(from)
	if err != nil {
		return "", "", err
	}
	end, err := ParseDay(to)
	if err != nil {
		return "", "", err
	}
	if start > end {
		return "", "", fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	return start, end, nil
}

// DaysBetween lists every calendar day in the inclusive range.
func DaysBetween(from string, to string) ([]string, error) {
	start, end, err := ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	day, _ := time.Parse(domain.DateLayout, start)
	last, _ := time.Parse(domain.DateLayout, end)
	days := make([]string, 0, int(last.Sub(day).Hours()/24)+1)
	for !day.After(last) {
		days = append(days, day.Format(domain.DateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return days, nil
}

// InRange reports whether day lies in [from, to]. All three are canonical days,
// so lexical order is calendar order.
func InRange(day string, from string, to string) bool {
	return day >= from && day <= to
}

// BuildStatement summarises the orders of a period per customer, with grand totals and a
// per-day breakdown. customerID narrows it to one customer when set.
func BuildStatement(orders []domain.DailyOrder, from string, to string, customerID string) (domain.Statement, error) {
	start, end, err := ParseRange(from, to)
	if err != nil {
		return domain.Statement{}, err
	}
	customerID = strings.TrimSpace(customerID)

	selected := make([]domain.DailyOrder, 0, len(orders))
	for _, order := range orders {
		day, err := ParseDay(order.OrderDate)
		if err != nil || !InRange(day, start, end) {
			continue
		}
		if customerID != "" && order.CustomerID != customerID {
			continue
		}
		order.OrderDate = day
		selected = append(selected, order)
	}

	statement := domain.Statement{
		From:         start,
		To:           end,
		CustomerID:   customerID,
		Customers:    []domain.CustomerStatement{},
		GrandTotal:   decimal.Zero,
		GrandPaid:    decimal.Zero,
		GrandPending: decimal.Zero,
	}

	days := GroupByCustomerAndDate(selected)
	daysByCustomer := make(map[string][]domain.DailySummary)
	for _, day := range days {
		daysByCustomer[day.CustomerID] = append(daysByCustomer[day.CustomerID], day)
	}

	counts := make(map[string]int)
	for _, order := range selected {
		counts[order.CustomerID]++
	}

	for _, summary := range GroupByCustomer(selected) {
		statement.Customers = append(statement.Customers, domain.CustomerStatement{
			CustomerID:   summary.CustomerID,
			CustomerName: summary.CustomerName,
			OrderCount:   counts[summary.CustomerID],
			TotalAmount:  summary.TotalAmount,
			TotalPaid:    summary.TotalPaid,
			Pending:      summary.Balance,
			Days:         daysByCustomer[summary.CustomerID],
		})
		statement.GrandTotal = statement.GrandTotal.Add(summary.TotalAmount)
		statement.GrandPaid = statement.GrandPaid.Add(summary.TotalPaid)
	}
	statement.GrandPending = statement.GrandTotal.Sub(statement.GrandPaid)

	return statement, nil
}
