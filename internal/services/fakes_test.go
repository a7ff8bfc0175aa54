package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventscape/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
	getErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) add(email string, setting domain.NotificationSetting) *domain.User {
	u := domain.NewUser(email, "hashed:password123", nil, time.Now())
	u.NotificationSetting = setting
	_ = f.Create(context.Background(), u)
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ListRecent(ctx context.Context, limit int) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		if len(users) == limit {
			break
		}
		cp := *u
		users = append(users, &cp)
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = upd.DisplayName
	}
	if upd.NotificationSetting != nil {
		u.NotificationSetting = *upd.NotificationSetting
	}
	cp := *u
	return &cp, nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	nextID int
	getErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) add(hostID string, start time.Time) *domain.Event {
	e := domain.NewEvent(hostID, "Event", start, time.Now())
	_ = f.Create(context.Background(), e)
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = fmt.Sprintf("event-%d", f.nextID)
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetSummary(ctx context.Context, id string) (*domain.EventSummary, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.EventSummary{Event: *e}, nil
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*domain.EventSummary, 0, len(f.events))
	for _, e := range f.events {
		list = append(list, &domain.EventSummary{Event: *e})
	}
	return list, len(list), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Location != nil {
		e.Location = upd.Location
	}
	if upd.Content != nil {
		e.Content = upd.Content
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = upd.EndTime
	}
	if upd.Visibility != nil {
		e.Visibility = *upd.Visibility
	}
	if upd.Capacity != nil {
		e.Capacity = upd.Capacity
	}
	if upd.Waitlist != nil {
		e.Waitlist = *upd.Waitlist
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

// fakeRSVPRepo implements domain.RSVPRepository for tests.
type fakeRSVPRepo struct {
	mu        sync.Mutex
	rows      map[string]*domain.RSVP
	nextID    int
	upsertErr error
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rows: make(map[string]*domain.RSVP)}
}

func rsvpKey(eventID, userID string) string { return eventID + "|" + userID }

func (f *fakeRSVPRepo) Upsert(ctx context.Context, r *domain.RSVP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := rsvpKey(r.EventID, r.UserID)
	if existing, ok := f.rows[key]; ok {
		existing.Status = r.Status
		existing.WaitlistPosition = r.WaitlistPosition
		*r = *existing
		return nil
	}
	f.nextID++
	r.ID = fmt.Sprintf("rsvp-%d", f.nextID)
	r.CreatedAt = time.Now()
	cp := *r
	f.rows[key] = &cp
	return nil
}

func (f *fakeRSVPRepo) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus) ([]*domain.RSVPWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []*domain.RSVPWithUser{}
	for _, r := range f.rows {
		if r.EventID != eventID || (status != nil && r.Status != *status) {
			continue
		}
		list = append(list, &domain.RSVPWithUser{RSVP: *r})
	}
	return list, nil
}

func (f *fakeRSVPRepo) CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.EventID == eventID && r.UserID != excludeUserID && r.Status == domain.RSVPGoing {
			n++
		}
	}
	return n, nil
}

func (f *fakeRSVPRepo) NextWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	highest := 0
	for _, r := range f.rows {
		if r.EventID == eventID && r.Status == domain.RSVPWaitlisted && r.WaitlistPosition != nil && *r.WaitlistPosition > highest {
			highest = *r.WaitlistPosition
		}
	}
	return highest + 1, nil
}

func (f *fakeRSVPRepo) get(eventID, userID string) *domain.RSVP {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[rsvpKey(eventID, userID)]
}

// fakeAnnouncementRepo implements domain.AnnouncementRepository for tests.
type fakeAnnouncementRepo struct {
	mu     sync.Mutex
	list   []*domain.Announcement
	nextID int
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, a *domain.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = fmt.Sprintf("announcement-%d", f.nextID)
	a.CreatedAt = time.Now()
	cp := *a
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeAnnouncementRepo) ListByEvent(ctx context.Context, eventID string, includeScheduled bool) ([]*domain.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Announcement{}
	for _, a := range f.list {
		if a.EventID == eventID && (includeScheduled || a.ReleasedAt != nil) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Announcement{}
	for _, a := range f.list {
		if a.ReleasedAt == nil && a.ScheduledRelease != nil && !a.ScheduledRelease.After(now) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) MarkReleased(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.list {
		if a.ID == id && a.ReleasedAt == nil {
			a.ReleasedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeInvitationRepo implements domain.InvitationRepository for tests.
type fakeInvitationRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Invitation
	nextID int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*domain.Invitation)}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	inv.ID = fmt.Sprintf("invitation-%d", f.nextID)
	inv.CreatedAt = time.Now()
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.byID[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Invitation{}
	for _, inv := range f.byID {
		if inv.EventID == eventID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus, acceptedAt *time.Time) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrInvitationClosed
	}
	inv.Status = status
	inv.AcceptedAt = acceptedAt
	cp := *inv
	return &cp, nil
}

// fakeNotificationRepo implements domain.NotificationRepository for tests.
type fakeNotificationRepo struct {
	mu          sync.Mutex
	fannedOut   []string
	invitations map[string][]string
	recipients  []*domain.Recipient
	read        map[string]string
	fanOutErr   error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		invitations: make(map[string][]string),
		read:        make(map[string]string),
	}
}

func (f *fakeNotificationRepo) FanOutAnnouncement(ctx context.Context, announcementID, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fanOutErr != nil {
		return 0, f.fanOutErr
	}
	f.fannedOut = append(f.fannedOut, announcementID)
	return 1, nil
}

func (f *fakeNotificationRepo) CreateForInvitation(ctx context.Context, userID, invitationID string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations[userID] = append(f.invitations[userID], invitationID)
	return &domain.Notification{ID: "n-" + invitationID, UserID: userID, Type: domain.NotificationInvitation, InvitationID: &invitationID}, nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Notification{}
	for _, id := range f.invitations[userID] {
		invID := id
		out = append(out, &domain.Notification{ID: "n-" + id, UserID: userID, Type: domain.NotificationInvitation, InvitationID: &invID})
	}
	return out, len(out), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, invID := range f.invitations[userID] {
		if "n-"+invID == id {
			f.read[id] = userID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotificationRepo) EmailRecipients(ctx context.Context, eventID string) ([]*domain.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipients, nil
}

// fakeEmailService implements domain.EmailService for tests.
type fakeEmailService struct {
	mu            sync.Mutex
	invitations   []*domain.InvitationEmailData
	announcements []*domain.AnnouncementEmailData
	err           error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.announcements = append(f.announcements, data)
	return nil
}

// memStatsRepo implements domain.StatsRepository over the event and RSVP fakes.
type memStatsRepo struct {
	events *fakeEventRepo
	rsvps  *fakeRSVPRepo
	unread map[string]int

	hostedErr error
	goingErr  error
	unreadErr error
}

func newMemStatsRepo(events *fakeEventRepo, rsvps *fakeRSVPRepo) *memStatsRepo {
	return &memStatsRepo{events: events, rsvps: rsvps, unread: make(map[string]int)}
}

func inBucket(start time.Time, bucket domain.EventBucket, at time.Time) bool {
	if bucket == domain.BucketPast {
		return start.Before(at)
	}
	return !start.Before(at)
}

func (m *memStatsRepo) HostedEventIDs(ctx context.Context, userID string, bucket domain.EventBucket, at time.Time) ([]string, error) {
	if m.hostedErr != nil {
		return nil, m.hostedErr
	}
	m.events.mu.Lock()
	defer m.events.mu.Unlock()
	var ids []string
	for _, e := range m.events.events {
		if e.HostID == userID && inBucket(e.StartTime, bucket, at) {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (m *memStatsRepo) GoingEventIDs(ctx context.Context, userID string, bucket domain.EventBucket, at time.Time) ([]string, error) {
	if m.goingErr != nil {
		return nil, m.goingErr
	}
	m.rsvps.mu.Lock()
	var eventIDs []string
	for _, r := range m.rsvps.rows {
		if r.UserID == userID && r.Status == domain.RSVPGoing {
			eventIDs = append(eventIDs, r.EventID)
		}
	}
	m.rsvps.mu.Unlock()

	m.events.mu.Lock()
	defer m.events.mu.Unlock()
	var ids []string
	for _, id := range eventIDs {
		if e, ok := m.events.events[id]; ok && inBucket(e.StartTime, bucket, at) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStatsRepo) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	if m.unreadErr != nil {
		return 0, m.unreadErr
	}
	return m.unread[userID], nil
}
