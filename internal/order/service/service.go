package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/order/format"
	"github.com/smallbiznis/orderdesk/internal/providers/pdf"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	taxdomain "github.com/smallbiznis/orderdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Sessions sessiondomain.Reader
	Backend  domain.Backend
	Tax      taxdomain.Service
	PDF      pdf.Provider
	Config   *config.OrderConfigHolder
	Metrics  *metrics.OrderMetrics `optional:"true"`
	Clock    clock.Clock
	Log      *zap.Logger
}

type Service struct {
	sessions sessiondomain.Reader
	backend  domain.Backend
	tax      taxdomain.Service
	pdf      pdf.Provider
	cfg      *config.OrderConfigHolder
	metrics  *metrics.OrderMetrics
	clock    clock.Clock
	log      *zap.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func New(p Params) domain.Service {
	return &Service{
		sessions: p.Sessions,
		backend:  p.Backend,
		tax:      p.Tax,
		pdf:      p.PDF,
		cfg:      p.Config,
		metrics:  p.Metrics,
		clock:    p.Clock,
		log:      p.Log.Named("order.service"),
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewDraft initializes an order header. The backend issues the number; when
// it cannot, a local number is generated instead.
func (s *Service) NewDraft(ctx context.Context, clientID string) (domain.Draft, error) {
	sess, token, err := s.session(ctx, clientID)
	if err != nil {
		return domain.Draft{}, err
	}
	cfg := s.cfg.Get()
	now := s.clock.Now()

	draft := domain.Draft{
		Order: domain.Order{
			Header: domain.Header{
				OrderDate:   now.Format("02-01-2006"),
				VoucherType: cfg.VoucherType,
				Status:      domain.StatusPending,
				Executive:   sess.Profile.String("username"),
			},
			Lines: []domain.Line{},
		},
	}
	if sess.Role == sessiondomain.RoleDirect || sess.Role == sessiondomain.RoleDistributor {
		draft.CustomerCode = firstNonEmpty(sess.Profile.String("customer_code"), sess.Profile.String("code"))
		draft.CustomerName = firstNonEmpty(sess.Profile.String("customer_name"), sess.Profile.String("username"))
		draft.CustomerState = sess.Profile.State()
	}

	number, err := s.backend.NextOrderNumber(ctx, token)
	if err == nil && strings.TrimSpace(number) != "" {
		draft.OrderNumber = strings.TrimSpace(number)
		draft.NumberIssued = true
		s.metrics.RecordDraft("server")
	} else {
		s.log.Warn("order number unavailable, using local fallback", zap.Error(err))
		fallback, ferr := s.fallbackNumber(cfg.NumberTemplate)
		if ferr != nil {
			return domain.Draft{}, ferr
		}
		draft.OrderNumber = fallback
		s.metrics.RecordDraft("fallback")
	}

	draft.Jurisdiction = s.jurisdiction(sess, draft.CustomerState)
	return draft, nil
}

// Compute recomputes every line and the totals for the caller's role.
func (s *Service) Compute(ctx context.Context, clientID string, order domain.Order) (domain.Order, error) {
	sess, err := s.sessions.Current(ctx, clientID)
	if err != nil {
		return domain.Order{}, err
	}
	if sess.State != sessiondomain.StateResolved {
		return domain.Order{}, sessiondomain.ErrNoSession
	}
	return s.compute(sess, order), nil
}

// Submit validates locally, recomputes, and posts the order. Nothing is sent
// when validation fails.
func (s *Service) Submit(ctx context.Context, clientID string, order domain.Order) (domain.SubmitResult, error) {
	if err := s.validate(order); err != nil {
		s.metrics.RecordSubmission("invalid")
		return domain.SubmitResult{}, err
	}
	sess, token, err := s.session(ctx, clientID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	computed := s.compute(sess, order)
	if computed.Status == "" {
		computed.Status = domain.StatusPending
	}
	if computed.VoucherType == "" {
		computed.VoucherType = s.cfg.Get().VoucherType
	}
	if computed.OrderDate == "" {
		computed.OrderDate = s.clock.Now().Format("02-01-2006")
	}

	res, err := s.backend.SubmitOrder(ctx, token, toPayload(computed))
	if err != nil {
		s.metrics.RecordSubmission("failed")
		s.log.Warn("order submission failed", zap.String("order_number", computed.OrderNumber), zap.Error(err))
		return domain.SubmitResult{Success: false, OrderNumber: computed.OrderNumber, Message: submitMessage(err)}, nil
	}

	s.metrics.RecordSubmission("success")
	s.log.Info("order submitted",
		zap.String("order_number", computed.OrderNumber),
		zap.Int("lines", len(computed.Lines)),
	)
	message := res.Message
	if message == "" {
		message = "Order submitted successfully"
	}
	return domain.SubmitResult{Success: true, OrderNumber: computed.OrderNumber, Message: message}, nil
}

// Get fetches a stored order and rebuilds it from the backend's row set.
func (s *Service) Get(ctx context.Context, clientID, orderNumber string) (domain.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return domain.Order{}, domain.ErrInvalidOrderNumber
	}
	_, token, err := s.session(ctx, clientID)
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := s.backend.OrderByNumber(ctx, token, orderNumber)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	if len(rows) == 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	order := FromRows(rows)
	if order.OrderNumber == "" {
		order.OrderNumber = orderNumber
	}
	order.Jurisdiction = taxdomain.Jurisdiction{
		Home:  order.Totals.IGST == 0 && (order.Totals.SGST > 0 || order.Totals.CGST > 0),
		Known: order.Totals.IGST > 0 || order.Totals.SGST > 0 || order.Totals.CGST > 0,
	}
	return order, nil
}

func (s *Service) session(ctx context.Context, clientID string) (sessiondomain.Session, string, error) {
	sess, err := s.sessions.Current(ctx, clientID)
	if err != nil {
		return sessiondomain.Session{}, "", err
	}
	if sess.State != sessiondomain.StateResolved {
		return sessiondomain.Session{}, "", sessiondomain.ErrNoSession
	}
	token, err := s.sessions.Token(ctx, clientID)
	if err != nil {
		return sessiondomain.Session{}, "", err
	}
	return sess, token, nil
}

func (s *Service) compute(sess sessiondomain.Session, order domain.Order) domain.Order {
	order.Jurisdiction = s.jurisdiction(sess, order.CustomerState)

	taxLines := make([]taxdomain.Line, len(order.Lines))
	for i, l := range order.Lines {
		taxLines[i] = l.Line
	}
	computed, totals := s.tax.Compute(taxLines, order.Jurisdiction)

	lines := make([]domain.Line, len(order.Lines))
	for i, l := range order.Lines {
		l.Line = computed[i]
		lines[i] = l
	}
	order.Lines = lines
	order.Totals = totals
	return order
}

func (s *Service) jurisdiction(sess sessiondomain.Session, customerState string) taxdomain.Jurisdiction {
	return s.tax.Jurisdiction(sess.Role, sess.Profile.State(), customerState)
}

func (s *Service) validate(order domain.Order) error {
	if len(order.Lines) == 0 {
		return domain.NoItems()
	}
	now := s.clock.Now()
	for i, l := range order.Lines {
		if strings.TrimSpace(l.ItemCode) == "" && strings.TrimSpace(l.ItemName) == "" {
			return domain.MissingItem(i + 1)
		}
		if l.DeliveryDate != "" && !format.IsFutureOrToday(l.DeliveryDate, now) {
			return domain.PastDeliveryDate(firstNonEmpty(l.ItemName, l.ItemCode))
		}
	}
	if strings.TrimSpace(order.OrderNumber) == "" {
		return domain.MissingOrderNumber()
	}
	return nil
}

func (s *Service) fallbackNumber(template string) (string, error) {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return format.GenerateOrderNumber(template, s.clock.Now(), s.rnd)
}

func submitMessage(err error) string {
	var berr *backend.Error
	if errors.As(err, &berr) && berr.Message != "" {
		return berr.Message
	}
	return "Failed to submit order. Try again."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
