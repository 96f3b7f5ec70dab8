package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
	"github.com/Skotchmaster/plant_shop/pkg/metrics"
)

const (
	GuestIDPrefix   = "guest_"
	DefaultGuestTTL = 30 * 24 * time.Hour
)

type SessionCache interface {
	Get(ctx context.Context, guestID string) (time.Time, bool, error)
	Set(ctx context.Context, guestID string, expiresAt time.Time) error
	Delete(ctx context.Context, guestID string) error
}

type GuestService struct {
	Repo    *repo.GormRepo
	Cache   SessionCache
	TTL     time.Duration
	Events  events.Publisher
	Metrics *metrics.ServerMetrics
	Now     func() time.Time
}

type MigrationResult struct {
	MovedLines       int `json:"moved_lines"`
	MergedLines      int `json:"merged_lines"`
	MovedFavorites   int `json:"moved_favorites"`
	DroppedFavorites int `json:"dropped_favorites"`
}

func (s *GuestService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *GuestService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultGuestTTL
}

// GenerateGuestID returns an opaque token: the prefix plus 128 random bits in hex.
func GenerateGuestID() string {
	return GuestIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *GuestService) CreateSession(ctx context.Context, ip, userAgent string) (*models.GuestSession, error) {
	now := s.now()
	sess := &models.GuestSession{
		ID:        GenerateGuestID(),
		IPAddress: ip,
		UserAgent: truncate(userAgent, 512),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Repo.CreateGuestSession(ctx, sess); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, sess.ID, sess.ExpiresAt)

	logging.FromContext(ctx).Info("guest_session_created", "guest_id", sess.ID)
	return sess, nil
}

// ExtendSession resets expiry to now + TTL. Expired or unknown sessions are
// not revived.
func (s *GuestService) ExtendSession(ctx context.Context, guestID string) (time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl())
	ok, err := s.Repo.ExtendGuestSession(ctx, guestID, now, exp)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		s.cacheDelete(ctx, guestID)
		return time.Time{}, fmt.Errorf("%w: guest session expired or unknown", ErrNotFound)
	}
	s.cacheSet(ctx, guestID, exp)
	return exp, nil
}

func (s *GuestService) IsValid(ctx context.Context, guestID string) (bool, error) {
	if !strings.HasPrefix(guestID, GuestIDPrefix) {
		return false, nil
	}
	now := s.now()

	if s.Cache != nil {
		exp, ok, err := s.Cache.Get(ctx, guestID)
		if err != nil {
			logging.FromContext(ctx).Warn("guest_cache_get_failed", "error", err)
		} else if ok && exp.After(now) {
			return true, nil
		}
	}

	sess, err := s.Repo.GuestSession(ctx, guestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !sess.ValidAt(now) {
		return false, nil
	}
	s.cacheSet(ctx, guestID, sess.ExpiresAt)
	return true, nil
}

// Touch validates a presented guest token and slides its expiry window.
func (s *GuestService) Touch(ctx context.Context, guestID string) (bool, error) {
	ok, err := s.IsValid(ctx, guestID)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.ExtendSession(ctx, guestID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Migrate merges the guest's cart and favorites into the user's account in
// one transaction and removes the guest session.
func (s *GuestService) Migrate(ctx context.Context, guestID string, userID uuid.UUID) (*MigrationResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user required", ErrValidation)
	}
	if !strings.HasPrefix(guestID, GuestIDPrefix) {
		return nil, fmt.Errorf("%w: guest session expired or unknown", ErrValidation)
	}

	guest := models.GuestOwner(guestID)
	user := models.UserOwner(userID)
	res := &MigrationResult{}
	now := s.now()

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		// the session row is checked under lock; a cached expiry may be stale
		sess, err := tx.GuestSessionForUpdate(ctx, guestID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !sess.ValidAt(now)) {
			return fmt.Errorf("%w: guest session expired or unknown", ErrValidation)
		}
		if err != nil {
			return err
		}

		lines, err := tx.CartLinesForUpdate(ctx, guest)
		if err != nil {
			return err
		}
		for _, l := range lines {
			existing, err := tx.CartLineFor(ctx, user, l.ProductID, l.Variant)
			switch {
			case err == nil:
				if err := tx.IncrementCartLine(ctx, existing.ID, l.Quantity); err != nil {
					return err
				}
				res.MergedLines++
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.ReownCartLine(ctx, l.ID, user); err != nil {
					return err
				}
				res.MovedLines++
			default:
				return err
			}
		}
		if _, err := tx.ClearCart(ctx, guest); err != nil {
			return err
		}

		guestFavs, err := tx.AllFavorites(ctx, guest)
		if err != nil {
			return err
		}
		userFavs, err := tx.AllFavorites(ctx, user)
		if err != nil {
			return err
		}
		have := make(map[uuid.UUID]bool, len(userFavs))
		for _, f := range userFavs {
			have[f.ProductID] = true
		}
		for _, f := range guestFavs {
			if have[f.ProductID] {
				res.DroppedFavorites++
				continue
			}
			if err := tx.ReownFavorite(ctx, f.ID, user); err != nil {
				return err
			}
			have[f.ProductID] = true
			res.MovedFavorites++
		}
		if err := tx.DeleteAllFavorites(ctx, guest); err != nil {
			return err
		}

		return tx.DeleteGuestSession(ctx, guestID)
	})
	if errors.Is(err, ErrValidation) {
		s.cacheDelete(ctx, guestID)
	}
	if err != nil {
		return nil, err
	}

	s.cacheDelete(ctx, guestID)
	if s.Metrics != nil {
		s.Metrics.CartMigrations.Inc()
	}
	logging.FromContext(ctx).Info("guest_migrated", "guest_id", guestID, "user_id", userID,
		"moved_lines", res.MovedLines, "merged_lines", res.MergedLines)
	audit(ctx, s.Repo, user, "cart_migrated", map[string]any{
		"guest_id": guestID, "moved_lines": res.MovedLines, "merged_lines": res.MergedLines,
		"moved_favorites": res.MovedFavorites, "dropped_favorites": res.DroppedFavorites,
	})
	publish(ctx, s.Events, events.TopicCarts, user.String(), map[string]any{
		"type": "cart_migrated", "guest_id": guestID, "user_id": userID,
	})
	return res, nil
}

func (s *GuestService) CleanExpired(ctx context.Context) (int, error) {
	ids, err := s.Repo.DeleteExpiredGuestSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.cacheDelete(ctx, id)
	}
	return len(ids), nil
}

// RunJanitor deletes expired sessions every interval until ctx is done.
func (s *GuestService) RunJanitor(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("component", "guest_janitor")
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.CleanExpired(ctx)
			if err != nil {
				l.Error("guest_cleanup_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("guest_cleanup_done", "deleted", n)
			}
		}
	}
}

func (s *GuestService) cacheSet(ctx context.Context, id string, exp time.Time) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, id, exp); err != nil {
		logging.FromContext(ctx).Warn("guest_cache_set_failed", "error", err)
	}
}

func (s *GuestService) cacheDelete(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("guest_cache_delete_failed", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
