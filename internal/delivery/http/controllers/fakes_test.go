package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testUserID  = "6b1e0f4e-8a3c-4f7e-9d2a-1c5b7e9f0a11"
	testEventID = "0d9c8b7a-6e5f-4a3b-8c2d-1e0f9a8b7c6d"
	testOtherID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
)

type testRequest struct {
	method string
	target string
	body   any
	userID string
	path   map[string]string
}

// serve runs handler against the request and decodes the response envelope.
func serve(t *testing.T, handler http.HandlerFunc, tr testRequest) (*httptest.ResponseRecorder, helpers.APIResponse) {
	t.Helper()
	var body io.Reader
	switch b := tr.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(tr.method, tr.target, body)
	for k, v := range tr.path {
		req.SetPathValue(k, v)
	}
	if tr.userID != "" {
		identity := &domain.Identity{UserID: tr.userID, Email: "me@example.com", NotificationSetting: domain.NotifyInApp}
		req = req.WithContext(middleware.SetIdentity(req.Context(), identity))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)

	var envelope helpers.APIResponse
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	}
	return rr, envelope
}

// decodeData re-decodes envelope.Data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

type fakeAuthService struct {
	user      *domain.User
	token     string
	err       error
	lastEmail string
}

func (f *fakeAuthService) Register(ctx context.Context, email, password string, displayName *string) (*domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Resolve(ctx context.Context, userID string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user.Identity(), nil
}

type fakeUserService struct {
	users      []*domain.User
	user       *domain.User
	err        error
	lastID     string
	lastUpdate domain.ProfileUpdate
}

func (f *fakeUserService) ListRecent(ctx context.Context) ([]*domain.User, error) {
	return f.users, f.err
}

func (f *fakeUserService) Create(ctx context.Context, email, password string, displayName *string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	f.lastID = id
	f.lastUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeEventService struct {
	err         error
	summary     *domain.EventSummary
	summaries   []*domain.EventSummary
	total       int
	updated     *domain.Event
	lastCreate  *domain.Event
	lastParams  domain.PaginationParams
	lastEventID string
	lastHostID  string
	lastUpdate  domain.EventUpdate
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = testEventID
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.EventSummary, error) {
	f.lastEventID = eventID
	return f.summary, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	f.lastParams = params
	return f.summaries, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, hostID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastEventID, f.lastHostID, f.lastUpdate = eventID, hostID, upd
	return f.updated, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, hostID string) error {
	f.lastEventID, f.lastHostID = eventID, hostID
	return f.err
}

type fakeRSVPService struct {
	err        error
	list       []*domain.RSVPWithUser
	lastStatus domain.RSVPStatus
	lastFilter *domain.RSVPStatus
	lastUserID string
}

func (f *fakeRSVPService) Respond(ctx context.Context, eventID, userID string, status domain.RSVPStatus, waitlistPosition *int) (*domain.RSVP, error) {
	f.lastUserID, f.lastStatus = userID, status
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewRSVP(eventID, userID, status, waitlistPosition), nil
}

func (f *fakeRSVPService) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus) ([]*domain.RSVPWithUser, error) {
	f.lastFilter = status
	return f.list, f.err
}

type fakeAnnouncementService struct {
	err           error
	list          []*domain.Announcement
	lastHostID    string
	lastContent   string
	lastScheduled *time.Time
	lastViewerID  string
}

func (f *fakeAnnouncementService) Create(ctx context.Context, eventID, hostID, content string, scheduledRelease *time.Time) (*domain.Announcement, error) {
	f.lastHostID, f.lastContent, f.lastScheduled = hostID, content, scheduledRelease
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Announcement{ID: testOtherID, EventID: eventID, HostID: hostID, Content: content, ScheduledRelease: scheduledRelease}, nil
}

func (f *fakeAnnouncementService) ListByEvent(ctx context.Context, eventID, viewerID string) ([]*domain.Announcement, error) {
	f.lastViewerID = viewerID
	return f.list, f.err
}

func (f *fakeAnnouncementService) ReleaseDue(ctx context.Context, now time.Time) (int, error) {
	return 0, f.err
}

type fakeInvitationService struct {
	err           error
	list          []*domain.Invitation
	lastNew       domain.NewInvitation
	lastHostID    string
	lastResponder *domain.Identity
	lastAccept    bool
}

func (f *fakeInvitationService) Create(ctx context.Context, in domain.NewInvitation) (*domain.Invitation, error) {
	f.lastNew = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Invitation{ID: testOtherID, EventID: in.EventID, InvitedBy: in.InvitedBy, Mode: in.Mode,
		Status: domain.InvitationPending, Link: "https://app.example.com/invitations/" + testOtherID}, nil
}

func (f *fakeInvitationService) ListByEvent(ctx context.Context, eventID, hostID string) ([]*domain.Invitation, error) {
	f.lastHostID = hostID
	return f.list, f.err
}

func (f *fakeInvitationService) Respond(ctx context.Context, invitationID string, responder *domain.Identity, accept bool) (*domain.Invitation, error) {
	f.lastResponder, f.lastAccept = responder, accept
	if f.err != nil {
		return nil, f.err
	}
	status := domain.InvitationDeclined
	if accept {
		status = domain.InvitationAccepted
	}
	return &domain.Invitation{ID: invitationID, Status: status}, nil
}

type fakeNotificationService struct {
	err        error
	list       []*domain.Notification
	total      int
	lastParams domain.PaginationParams
	lastUserID string
}

func (f *fakeNotificationService) ListMine(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	f.lastUserID, f.lastParams = userID, params
	return f.list, f.total, f.err
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	f.lastUserID = userID
	return f.err
}
