package commands_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memState is the committed content of the in-memory database. Aggregates are kept
// as restore parameters so that callers never share pointers with the store.
type memState struct {
	deliveries    map[kernel.UUID]delivery.RestoreParams
	history       []*delivery.StatusHistoryEntry
	positions     []*delivery.TrackingPosition
	etas          map[kernel.UUID]*delivery.ETA
	checkpoints   []*delivery.Checkpoint
	codes         map[kernel.UUID]codeRow
	ratings       []*delivery.Rating
	deliverers    map[kernel.UUID]deliverer.RestoreParams
	announcements map[kernel.UUID]announcementRow
	candidates    map[kernel.UUID]candidateRow
}

type codeRow struct {
	code     string
	issuedAt time.Time
	expires  time.Time
	usedAt   *time.Time
}

type announcementRow struct {
	params    announcement.Params
	status    announcement.Status
	createdAt time.Time
}

type candidateRow struct {
	params      matching.Params
	status      matching.Status
	respondedAt *time.Time
}

func (s memState) clone() memState {
	c := memState{
		deliveries:    make(map[kernel.UUID]delivery.RestoreParams, len(s.deliveries)),
		history:       slices.Clone(s.history),
		positions:     slices.Clone(s.positions),
		etas:          make(map[kernel.UUID]*delivery.ETA, len(s.etas)),
		checkpoints:   slices.Clone(s.checkpoints),
		codes:         make(map[kernel.UUID]codeRow, len(s.codes)),
		ratings:       slices.Clone(s.ratings),
		deliverers:    make(map[kernel.UUID]deliverer.RestoreParams, len(s.deliverers)),
		announcements: make(map[kernel.UUID]announcementRow, len(s.announcements)),
		candidates:    make(map[kernel.UUID]candidateRow, len(s.candidates)),
	}
	for k, v := range s.deliveries {
		c.deliveries[k] = v
	}
	for k, v := range s.etas {
		c.etas[k] = v
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.deliverers {
		c.deliverers[k] = v
	}
	for k, v := range s.announcements {
		c.announcements[k] = v
	}
	for k, v := range s.candidates {
		c.candidates[k] = v
	}
	return c
}

// memDB is an in-memory implementation of every repository and unit of work used by
// the command handlers. A transaction works on a copy of the state which replaces the
// committed state on Commit.
type memDB struct {
	mu        sync.Mutex
	committed memState
	// locked lists the deliverers read through GetForUpdate, in call order.
	locked []kernel.UUID

	// beforeSaveResponse runs inside SaveResponse before the PENDING check.
	beforeSaveResponse func(db *memDB)
}

func newMemDB() *memDB {
	return &memDB{committed: memState{}.clone()}
}

func (db *memDB) uow() *memUoW {
	return &memUoW{db: db}
}

func (db *memDB) TrackingFactory() commands.TrackingUoWFactory {
	return trackingFactory{db}
}

func (db *memDB) Factory() commands.UoWFactory {
	return fullFactory{db}
}

func (db *memDB) DelivererFactory() commands.DelivererUoWFactory {
	return delivererFactory{db}
}

func (db *memDB) AnnouncementFactory() commands.AnnouncementUoWFactory {
	return announcementFactory{db}
}

type trackingFactory struct{ db *memDB }

func (f trackingFactory) Create() commands.TrackingUoW { return f.db.uow() }

type fullFactory struct{ db *memDB }

func (f fullFactory) Create() commands.UoW { return f.db.uow() }

type delivererFactory struct{ db *memDB }

func (f delivererFactory) Create() commands.DelivererUoW { return f.db.uow() }

type announcementFactory struct{ db *memDB }

func (f announcementFactory) Create() commands.AnnouncementUoW { return f.db.uow() }

// state returns a snapshot of the committed state.
func (db *memDB) state() memState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.committed.clone()
}

type memUoW struct {
	db *memDB
	tx *memState
}

func (u *memUoW) Begin(context.Context) error {
	if u.tx != nil {
		return nil
	}
	s := u.db.state()
	u.tx = &s
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	u.db.mu.Lock()
	u.db.committed = *u.tx
	u.db.mu.Unlock()
	u.tx = nil
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	u.tx = nil
	return nil
}

// current returns the transaction state, or a fresh snapshot outside a transaction.
func (u *memUoW) current() *memState {
	if u.tx != nil {
		return u.tx
	}
	s := u.db.state()
	return &s
}

func (u *memUoW) DeliveryRepository() ports.DeliveryRepository         { return memDeliveries{u} }
func (u *memUoW) TrackingRepository() ports.TrackingRepository         { return memTracking{u} }
func (u *memUoW) ProofRepository() ports.ProofRepository               { return memProofs{u} }
func (u *memUoW) DelivererRepository() ports.DelivererRepository       { return memDeliverers{u} }
func (u *memUoW) AnnouncementRepository() ports.AnnouncementRepository { return memAnnouncements{u} }
func (u *memUoW) MatchRepository() ports.MatchRepository               { return memMatches{u} }

func deliverySnapshot(d *delivery.Delivery) delivery.RestoreParams {
	return delivery.RestoreParams{
		ID:                 d.ID(),
		AnnouncementID:     d.AnnouncementID(),
		ClientID:           d.ClientID(),
		DelivererID:        d.DelivererID(),
		Status:             d.Status(),
		Pickup:             d.Pickup(),
		Dropoff:            d.Dropoff(),
		CurrentLocation:    d.CurrentLocation(),
		LastLocationUpdate: d.LastLocationUpdate(),
		EstimatedArrival:   d.EstimatedArrival(),
		ActualArrival:      d.ActualArrival(),
		ScheduledDate:      d.ScheduledDate(),
		TrackingEnabled:    d.TrackingEnabled(),
		TrackingStartedAt:  d.TrackingStartedAt(),
		TrackingEndedAt:    d.TrackingEndedAt(),
		Price:              d.Price(),
		TrackingCode:       d.TrackingCode(),
		CreatedAt:          d.CreatedAt(),
		Version:            d.Version(),
	}
}

type memDeliveries struct{ u *memUoW }

func (r memDeliveries) Add(_ context.Context, d *delivery.Delivery) error {
	s := r.u.current()
	for _, rows := range []map[kernel.UUID]delivery.RestoreParams{s.deliveries, r.u.db.state().deliveries} {
		for _, row := range rows {
			if row.AnnouncementID == d.AnnouncementID() {
				return errs.NewConcurrentModificationError("delivery", d.AnnouncementID().String())
			}
		}
	}
	s.deliveries[d.ID()] = deliverySnapshot(d)
	return nil
}

func (r memDeliveries) Update(_ context.Context, d *delivery.Delivery) error {
	s := r.u.current()
	row, ok := s.deliveries[d.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("delivery", d.ID())
	}
	committed, stored := r.u.db.state().deliveries[d.ID()]
	if row.Version != d.Version() || (stored && committed.Version > d.Version()) {
		return errs.NewConcurrentModificationError("delivery", d.ID().String())
	}
	next := deliverySnapshot(d)
	next.Version++
	s.deliveries[d.ID()] = next
	d.CommitVersion()
	return nil
}

func (r memDeliveries) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	row, ok := r.u.current().deliveries[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery", id)
	}
	return delivery.RestoreDelivery(row)
}

func (r memDeliveries) GetAllInFlight(context.Context) ([]*delivery.Delivery, error) {
	var out []*delivery.Delivery
	for _, row := range r.u.current().deliveries {
		if row.Status.IsInFlight() && row.TrackingEnabled {
			d, err := delivery.RestoreDelivery(row)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (r memDeliveries) CountActiveByDeliverer(_ context.Context, delivererID kernel.UUID) (int, error) {
	n := 0
	for _, row := range r.u.current().deliveries {
		if row.DelivererID != nil && *row.DelivererID == delivererID && !row.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

type memTracking struct{ u *memUoW }

func (r memTracking) AppendStatus(_ context.Context, e *delivery.StatusHistoryEntry) error {
	s := r.u.current()
	s.history = append(s.history, e)
	return nil
}

func (r memTracking) AppendPosition(_ context.Context, p *delivery.TrackingPosition) error {
	s := r.u.current()
	s.positions = append(s.positions, p)
	return nil
}

func (r memTracking) GetPositionsSince(
	_ context.Context, deliveryID kernel.UUID, since time.Time,
) ([]*delivery.TrackingPosition, error) {
	var out []*delivery.TrackingPosition
	for _, p := range r.u.current().positions {
		if p.DeliveryID() == deliveryID && !p.Timestamp().Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memTracking) GetETA(_ context.Context, deliveryID kernel.UUID) (*delivery.ETA, error) {
	eta, ok := r.u.current().etas[deliveryID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("eta", deliveryID)
	}
	return eta, nil
}

func (r memTracking) SaveETA(_ context.Context, eta *delivery.ETA) error {
	r.u.current().etas[eta.DeliveryID()] = eta
	return nil
}

type memProofs struct{ u *memUoW }

func (r memProofs) AddCheckpoint(_ context.Context, c *delivery.Checkpoint) error {
	s := r.u.current()
	s.checkpoints = append(s.checkpoints, c)
	return nil
}

func (r memProofs) HasCheckpoint(_ context.Context, deliveryID kernel.UUID, t delivery.CheckpointType) (bool, error) {
	for _, c := range r.u.current().checkpoints {
		if c.DeliveryID() == deliveryID && c.Type() == t {
			return true, nil
		}
	}
	return false, nil
}

func (r memProofs) GetConfirmationCode(_ context.Context, deliveryID kernel.UUID) (*delivery.ConfirmationCode, error) {
	row, ok := r.u.current().codes[deliveryID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("confirmationCode", deliveryID)
	}
	return delivery.RestoreConfirmationCode(deliveryID, row.code, row.issuedAt, row.expires, row.usedAt)
}

func (r memProofs) SaveConfirmationCode(_ context.Context, c *delivery.ConfirmationCode) error {
	r.u.current().codes[c.DeliveryID()] = codeRow{
		code: c.Code(), issuedAt: c.IssuedAt(), expires: c.ExpiresAt(), usedAt: c.UsedAt(),
	}
	return nil
}

func (r memProofs) AddRating(_ context.Context, rating *delivery.Rating) error {
	s := r.u.current()
	for _, existing := range s.ratings {
		if existing.DeliveryID() == rating.DeliveryID() && existing.RaterID() == rating.RaterID() {
			return errs.NewValueIsInvalidErrorWithCause("rating", errors.New("already rated"))
		}
	}
	s.ratings = append(s.ratings, rating)
	return nil
}

func delivererSnapshot(d *deliverer.Deliverer) deliverer.RestoreParams {
	return deliverer.RestoreParams{
		ID:                  d.ID(),
		Name:                d.Name(),
		Active:              d.IsActive(),
		Verified:            d.IsVerified(),
		Location:            d.Location(),
		PreferredCategories: d.PreferredCategories(),
		AverageRating:       d.AverageRating(),
		RatingsCount:        d.RatingsCount(),
		Availability:        d.Availability(),
		RouteZones:          d.RouteZones(),
	}
}

type memDeliverers struct{ u *memUoW }

func (r memDeliverers) Add(_ context.Context, d *deliverer.Deliverer) error {
	s := r.u.current()
	if _, ok := s.deliverers[d.ID()]; ok {
		return errs.NewValueIsInvalidErrorWithCause("delivererId", errors.New("already registered"))
	}
	s.deliverers[d.ID()] = delivererSnapshot(d)
	return nil
}

func (r memDeliverers) Update(_ context.Context, d *deliverer.Deliverer) error {
	s := r.u.current()
	if _, ok := s.deliverers[d.ID()]; !ok {
		return errs.NewObjectNotFoundError("deliverer", d.ID())
	}
	s.deliverers[d.ID()] = delivererSnapshot(d)
	return nil
}

func (r memDeliverers) Get(_ context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	row, ok := r.u.current().deliverers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("deliverer", id)
	}
	return deliverer.RestoreDeliverer(row)
}

func (r memDeliverers) GetForUpdate(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	r.u.db.mu.Lock()
	r.u.db.locked = append(r.u.db.locked, id)
	r.u.db.mu.Unlock()
	return r.Get(ctx, id)
}

func (r memDeliverers) GetAllEligible(context.Context) ([]*deliverer.Deliverer, error) {
	var out []*deliverer.Deliverer
	for _, row := range r.u.current().deliverers {
		if row.Active && row.Verified {
			d, err := deliverer.RestoreDeliverer(row)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func announcementSnapshot(a *announcement.Announcement) announcementRow {
	return announcementRow{
		params: announcement.Params{
			ID:             a.ID(),
			ClientID:       a.ClientID(),
			Title:          a.Title(),
			Category:       a.Category(),
			Pickup:         a.Pickup(),
			Dropoff:        a.Dropoff(),
			SuggestedPrice: a.SuggestedPrice(),
			ScheduledDate:  a.ScheduledDate(),
		},
		status:    a.Status(),
		createdAt: a.CreatedAt(),
	}
}

type memAnnouncements struct{ u *memUoW }

func (r memAnnouncements) Add(_ context.Context, a *announcement.Announcement) error {
	r.u.current().announcements[a.ID()] = announcementSnapshot(a)
	return nil
}

func (r memAnnouncements) Update(_ context.Context, a *announcement.Announcement) error {
	s := r.u.current()
	if _, ok := s.announcements[a.ID()]; !ok {
		return errs.NewObjectNotFoundError("announcement", a.ID())
	}
	s.announcements[a.ID()] = announcementSnapshot(a)
	return nil
}

func (r memAnnouncements) Get(_ context.Context, id kernel.UUID) (*announcement.Announcement, error) {
	row, ok := r.u.current().announcements[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("announcement", id)
	}
	return announcement.RestoreAnnouncement(row.params, row.status, row.createdAt)
}

func (r memAnnouncements) GetAllOpen(_ context.Context, limit int) ([]*announcement.Announcement, error) {
	var out []*announcement.Announcement
	for _, row := range r.u.current().announcements {
		if row.status == announcement.Open && len(out) < limit {
			a, err := announcement.RestoreAnnouncement(row.params, row.status, row.createdAt)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func candidateSnapshot(c *matching.Candidate) candidateRow {
	return candidateRow{
		params: matching.Params{
			ID:             c.ID(),
			AnnouncementID: c.AnnouncementID(),
			DelivererID:    c.DelivererID(),
			Scores:         c.Scores(),
			DistanceKm:     c.DistanceKm(),
			IsInRoute:      c.IsInRoute(),
			IsAvailable:    c.IsAvailable(),
			CalculatedAt:   c.CalculatedAt(),
		},
		status:      c.Status(),
		respondedAt: c.RespondedAt(),
	}
}

func (row candidateRow) restore() (*matching.Candidate, error) {
	return matching.RestoreCandidate(row.params, row.status, row.respondedAt)
}

type memMatches struct{ u *memUoW }

func (r memMatches) Upsert(_ context.Context, c *matching.Candidate) (*matching.Candidate, error) {
	s := r.u.current()
	next := candidateSnapshot(c)
	for id, row := range s.candidates {
		if row.params.AnnouncementID == c.AnnouncementID() && row.params.DelivererID == c.DelivererID() {
			next.params.ID, next.status, next.respondedAt = id, row.status, row.respondedAt
			break
		}
	}
	s.candidates[next.params.ID] = next
	return next.restore()
}

func (r memMatches) Get(_ context.Context, id kernel.UUID) (*matching.Candidate, error) {
	row, ok := r.u.current().candidates[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("match", id)
	}
	return row.restore()
}

func (r memMatches) SaveResponse(_ context.Context, c *matching.Candidate) error {
	if hook := r.u.db.beforeSaveResponse; hook != nil {
		r.u.db.beforeSaveResponse = nil
		hook(r.u.db)
	}

	s := r.u.current()
	committed := r.u.db.state()
	if row, ok := committed.candidates[c.ID()]; ok && row.status != matching.Pending {
		return errs.NewConcurrentModificationError("match", c.ID().String())
	}
	if row, ok := s.candidates[c.ID()]; !ok || row.status != matching.Pending {
		return errs.NewConcurrentModificationError("match", c.ID().String())
	}
	s.candidates[c.ID()] = candidateSnapshot(c)
	return nil
}

func (r memMatches) ListByAnnouncement(_ context.Context, announcementID kernel.UUID) ([]*matching.Candidate, error) {
	var out []*matching.Candidate
	for _, row := range r.u.current().candidates {
		if row.params.AnnouncementID == announcementID {
			c, err := row.restore()
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// recordingPublisher keeps every flushed side effect.
type recordingPublisher struct {
	events        []delivery.Event
	notifications []ports.Notification
	degradations  []string
	flushes       int
}

func (p *recordingPublisher) Flush(_ context.Context, outbox *events.Outbox) {
	p.flushes++
	p.events = append(p.events, outbox.Events()...)
	p.notifications = append(p.notifications, outbox.Notifications()...)
	p.degradations = append(p.degradations, outbox.Degradations()...)
}

func (p *recordingPublisher) eventTypes() []delivery.EventType {
	out := make([]delivery.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Location), args.Error(1)
}

// seed stores aggregates directly in the committed state.
type seed struct {
	t  *testing.T
	db *memDB
}

func (s seed) delivery(d *delivery.Delivery) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.deliveries[d.ID()] = deliverySnapshot(d)
}

func (s seed) deliverer(d *deliverer.Deliverer) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.deliverers[d.ID()] = delivererSnapshot(d)
}

func (s seed) announcement(a *announcement.Announcement) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.announcements[a.ID()] = announcementSnapshot(a)
}

func (s seed) candidate(c *matching.Candidate) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.candidates[c.ID()] = candidateSnapshot(c)
}

func (s seed) code(c *delivery.ConfirmationCode) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.codes[c.DeliveryID()] = codeRow{
		code: c.Code(), issuedAt: c.IssuedAt(), expires: c.ExpiresAt(), usedAt: c.UsedAt(),
	}
}

func (s seed) checkpoint(c *delivery.Checkpoint) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.checkpoints = append(s.db.committed.checkpoints, c)
}

func (s seed) position(p *delivery.TrackingPosition) {
	s.t.Helper()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.committed.positions = append(s.db.committed.positions, p)
}

func (db *memDB) delivery(t *testing.T, id kernel.UUID) *delivery.Delivery {
	t.Helper()
	row, ok := db.state().deliveries[id]
	require.True(t, ok, "delivery %s not stored", id)
	d, err := delivery.RestoreDelivery(row)
	require.NoError(t, err)
	return d
}
