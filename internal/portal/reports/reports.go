// Package reports assembles read-only account views for advisors.
package reports

import (
	"context"
	"fmt"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	gw *gateway.Gateways
}

func NewService(gw *gateway.Gateways) *Service {
	return &Service{gw: gw}
}

// AccountOverview reads the advisor's accounts, their client tickets and the
// NAV report in parallel and overlays client name, alias, NAV and status.
// The first failed read cancels the others.
func (s *Service) AccountOverview(ctx context.Context, advisorID string) ([]models.AccountView, error) {
	var (
		accounts []models.Account
		tickets  []models.Ticket
		nav      []models.NAVReport
	)
	filter := store.Filter{}
	if advisorID != "" {
		filter["advisorId"] = advisorID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = s.gw.Accounts.Read(gctx, filter)
		return wrap("accounts", err)
	})
	g.Go(func() (err error) {
		tickets, err = s.gw.Tickets.Read(gctx, filter)
		return wrap("clients", err)
	})
	g.Go(func() (err error) {
		nav, err = s.gw.NAVReports.Read(gctx, store.Filter{})
		return wrap("nav report", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(tickets))
	for i := range tickets {
		names[tickets[i].ID] = tickets[i].ApplicantName()
	}
	byNumber := make(map[string]models.NAVReport, len(nav))
	for _, r := range nav {
		if prev, ok := byNumber[r.AccountNumber]; ok && prev.AsOf.After(r.AsOf) {
			continue
		}
		byNumber[r.AccountNumber] = r
	}

	out := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		v := models.AccountView{Account: a, ContactName: names[a.TicketID]}
		if r, ok := byNumber[a.AccountNumber]; ok {
			nav := r.NAV
			v.Alias = r.Alias
			v.NAV = &nav
			v.Status = r.Status
		}
		out = append(out, v)
	}
	return out, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("read %s: %w", what, err)
}
