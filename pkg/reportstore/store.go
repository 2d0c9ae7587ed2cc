package reportstore

import (
	"context"
	"log"
	"sync"
)

// Persistence is the system of record for reports and profiles, as used by the
// store: list everything newest first, insert returning the stored row, and a
// batched profile lookup.
type Persistence interface {
	ListReports(ctx context.Context) ([]Row, error)
	InsertReport(ctx context.Context, userID string, draft Draft) (Row, error)
	ProfilesByUserIDs(ctx context.Context, userIDs []string) ([]Profile, error)
}

// User is the currently authenticated identity.
type User struct {
	ID    string
	Email string
}

// Identity supplies the current authenticated identity, or none.
type Identity interface {
	Current() (User, bool)
}

// IdentityEvents is implemented by identity providers that expose login
// transitions.
type IdentityEvents interface {
	OnLogin(fn func(ctx context.Context, u User))
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a fire-and-forget user-facing message.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// Notifier receives notices. No acknowledgement or queueing guarantees are
// required of it.
type Notifier interface {
	Notify(n Notice)
}

// Store maintains the client-local, read-mostly cache of incident reports.
//
// The cache may be stale relative to the persistence service; it is only as
// fresh as the last Refresh or successful AddReport. Concurrent Refresh and
// AddReport calls are not coordinated against each other: the last write by
// call-completion order wins.
type Store struct {
	persistence Persistence
	identity    Identity
	notifier    Notifier

	mu      sync.RWMutex
	reports []Report
	loading bool
	subs    map[chan struct{}]struct{}
}

func New(p Persistence, id Identity, n Notifier) *Store {
	return &Store{
		persistence: p,
		identity:    id,
		notifier:    n,
		subs:        make(map[chan struct{}]struct{}),
	}
}

// BindIdentityEvents registers the refresh-on-login reaction: whenever the
// identity becomes present, the cache is refreshed.
func (s *Store) BindIdentityEvents(ev IdentityEvents) {
	ev.OnLogin(func(ctx context.Context, _ User) {
		if err := s.Refresh(ctx); err != nil {
			log.Printf("[WARN] Refresh after login failed: %v", err)
		}
	})
}

// Reports returns a snapshot of the cache, newest first.
func (s *Store) Reports() []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Loading reports whether a Refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe returns a channel that receives a tick after every cache or
// loading-flag change, and a cancel function that releases the subscription.
// Ticks are coalesced; a slow subscriber sees at least one tick per burst of
// changes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Store) publish() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.publish()
}

// Refresh replaces the cache with the full report list from the persistence
// service, newest first, with reporter names joined from a single batched
// profile lookup. On any failure the cache keeps its last-known-good contents,
// the loading flag is cleared, and an error notice is raised. Failures are not
// retried.
func (s *Store) Refresh(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	rows, err := s.persistence.ListReports(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to fetch reports: %v", err)
		s.notifier.Notify(Notice{
			Kind:    NoticeError,
			Title:   "Error",
			Message: "Failed to fetch reports. Please try again.",
		})
		return err
	}

	profiles := make(map[string]Profile)
	if ids := distinctUserIDs(rows); len(ids) > 0 {
		fetched, err := s.persistence.ProfilesByUserIDs(ctx, ids)
		if err != nil {
			log.Printf("[ERROR] Failed to fetch reporter profiles: %v", err)
			s.notifier.Notify(Notice{
				Kind:    NoticeError,
				Title:   "Error",
				Message: "Failed to fetch reports. Please try again.",
			})
			return err
		}
		for _, p := range fetched {
			profiles[p.UserID] = p
		}
	}

	formatted := make([]Report, 0, len(rows))
	for _, row := range rows {
		name := UnknownUserName
		if p, ok := profiles[row.UserID]; ok {
			name = displayName(&p, "")
		}
		formatted = append(formatted, row.toReport(name))
	}

	s.mu.Lock()
	s.reports = formatted
	s.mu.Unlock()
	s.publish()
	return nil
}

// AddReport submits the draft as the current identity and, on success,
// prepends the stored report to the cache. It reports whether the submission
// succeeded; callers use the result to decide whether to reset their input
// state. Without an authenticated identity the persistence service is never
// contacted.
func (s *Store) AddReport(ctx context.Context, draft Draft) bool {
	user, ok := s.identity.Current()
	if !ok {
		s.notifier.Notify(Notice{
			Kind:    NoticeError,
			Title:   "Authentication required",
			Message: "Please log in to submit a report.",
		})
		return false
	}

	row, err := s.persistence.InsertReport(ctx, user.ID, draft.withDefaults())
	if err != nil {
		log.Printf("[ERROR] Failed to submit report: %v", err)
		s.notifier.Notify(Notice{
			Kind:    NoticeError,
			Title:   "Error",
			Message: "Failed to submit report. Please try again.",
		})
		return false
	}

	// Best effort: the reporter's email still identifies them when no profile
	// row exists yet.
	var profile *Profile
	if fetched, err := s.persistence.ProfilesByUserIDs(ctx, []string{user.ID}); err == nil {
		for i := range fetched {
			if fetched[i].UserID == user.ID {
				profile = &fetched[i]
				break
			}
		}
	} else {
		log.Printf("[WARN] Failed to fetch reporter profile: %v", err)
	}

	report := row.toReport(displayName(profile, user.Email))

	s.mu.Lock()
	s.reports = append([]Report{report}, s.reports...)
	s.mu.Unlock()
	s.publish()

	s.notifier.Notify(Notice{
		Kind:    NoticeSuccess,
		Title:   "Report submitted!",
		Message: "Your incident report has been submitted successfully. You earned 10 points!",
	})
	return true
}

func distinctUserIDs(rows []Row) []string {
	seen := make(map[string]struct{}, len(rows))
	var ids []string
	for _, r := range rows {
		if r.UserID == "" {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	return ids
}
