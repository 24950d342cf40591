package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/cache"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/lock"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/logging"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/xid"
)

// ErrUnauthenticated is returned when the context carries no owner.
var ErrUnauthenticated = errors.New("authentication required")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// SheetPusher sends rows to the external sheet.
type SheetPusher interface {
	Push(ctx context.Context, rows []domain.SheetRow) error
}

type Options struct {
	Cache    cache.StatementCache
	CacheTTL time.Duration
	Locker   lock.Locker
	// Sheets is nil when sheet sync is not configured.
	Sheets SheetPusher
	Logger logrus.FieldLogger
	Now    func() time.Time
}

type Service struct {
	repo     store.Repository
	cache    cache.StatementCache
	cacheTTL time.Duration
	locker   lock.Locker
	sheets   SheetPusher
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.NoopStatementCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewLocalLocker()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:     repo,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		locker:   opts.Locker,
		sheets:   opts.Sheets,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      opts.Logger.WithField("component", "service"),
		now:      opts.Now,
	}
}

func (s *Service) ownerID(ctx context.Context) (string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || strings.TrimSpace(actor.Username) == "" {
		return "", ErrUnauthenticated
	}
	return actor.Username, nil
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", store.ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	return nil
}

// checkMoney rejects negative amounts and amounts with fractions of a cent. Stored money
// columns hold two decimal places.
func checkMoney(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", store.ErrInvalidInput, field)
	}
	if !v.Equal(v.Round(2)) {
		return fmt.Errorf("%w: %s must have at most 2 decimal places", store.ErrInvalidInput, field)
	}
	return nil
}

func (s *Service) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	owner, err := s.ownerID(ctx)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = s.now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse(domain.DateLayout, strings.TrimSpace(date))
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, owner, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, owner string, action string, entityType string, entityID string, detail string) {
	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:         xid.New("audit"),
		OwnerID:    owner,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  s.now().UTC(),
	}); err != nil {
		s.log.WithFields(logrus.Fields{
			"owner":  owner,
			"action": action,
			"entity": entityType + "/" + entityID,
		}).WithError(err).Warn("failed to write audit log")
	}
}

// invalidateStatements drops cached statements after a write that changes orders.
func (s *Service) invalidateStatements(ctx context.Context, owner string) {
	if err := s.cache.Invalidate(ctx, owner); err != nil {
		s.log.WithField("owner", owner).WithError(err).Warn("failed to invalidate statement cache")
	}
}
