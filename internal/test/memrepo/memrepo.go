// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrepo is an internal helper for the use cases test
// packages. It implements the repo.Pool and all entity repositories
// in memory, so the use cases may be tested without a PostgreSQL
// server. A transaction holds a store-wide mutex until it ends, hence,
// transactions are fully serialized (which is stricter than the row
// locks of the postgres adapter). The store state is restored if the
// transaction handler returns an error.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods.
var ErrRawSQL = errors.New("raw sql is not supported by memrepo")

// Store keeps all entities in memory.
type Store struct {
	mu sync.Mutex
	st *state

	// Commits counts the committed transactions.
	Commits int
	// Rollbacks counts the rolled back transactions.
	Rollbacks int
}

type state struct {
	users         map[uuid.UUID]model.User
	parkings      map[uuid.UUID]model.Parking
	reservations  map[uuid.UUID]model.Reservation
	sessions      map[uuid.UUID]model.ParkingSession
	subscriptions map[uuid.UUID]model.Subscription
}

func newState() *state {
	return &state{
		users:         make(map[uuid.UUID]model.User),
		parkings:      make(map[uuid.UUID]model.Parking),
		reservations:  make(map[uuid.UUID]model.Reservation),
		sessions:      make(map[uuid.UUID]model.ParkingSession),
		subscriptions: make(map[uuid.UUID]model.Subscription),
	}
}

// clone is shallow per entity because entities are copied on every
// write and read by the queryers.
func (s *state) clone() *state {
	return &state{
		users:         maps.Clone(s.users),
		parkings:      maps.Clone(s.parkings),
		reservations:  maps.Clone(s.reservations),
		sessions:      maps.Clone(s.sessions),
		subscriptions: maps.Clone(s.subscriptions),
	}
}

// New creates an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

// Pool returns a repo.Pool which works on s.
func (s *Store) Pool() repo.Pool {
	return pool{s: s}
}

// Repos returns all entity repositories of s.
func (s *Store) Users() repo.Users                 { return users{s} }
func (s *Store) Parkings() repo.Parkings           { return parkings{s} }
func (s *Store) Reservations() repo.Reservations   { return reservations{s} }
func (s *Store) Sessions() repo.Sessions           { return sessions{s} }
func (s *Store) Subscriptions() repo.Subscriptions { return subscriptions{s} }

// view runs f with the store state, locking it unless the caller
// is in a transaction which holds the lock already.
func (s *Store) view(locked bool, f func(st *state) error) error {
	if !locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return f(s.st)
}

type pool struct {
	s *Store
}

func (p pool) Conn(ctx context.Context, handler repo.ConnHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return handler(ctx, conn{s: p.s})
}

func (p pool) Close() error {
	return nil
}

type conn struct {
	s *Store
}

func (c conn) Tx(ctx context.Context, handler repo.TxHandler) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	snapshot := c.s.st.clone()
	if err := handler(ctx, tx{s: c.s}); err != nil {
		c.s.st = snapshot
		c.s.Rollbacks++
		return err
	}
	c.s.Commits++
	return nil
}

func (conn) IsConn() {}

func (conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

type tx struct {
	s *Store
}

func (tx) IsTx() {}

func (tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func notFound(entity string, id any) error {
	return cerr.NotFound(fmt.Errorf("%s %v: expected one row, but got 0", entity, id))
}

type users struct{ s *Store }

func (r users) Conn(repo.Conn) repo.UsersConnQueryer {
	return usersQueryer{s: r.s}
}

func (r users) Tx(repo.Tx) repo.UsersTxQueryer {
	return usersQueryer{s: r.s, locked: true}
}

type usersQueryer struct {
	s      *Store
	locked bool
}

func (q usersQueryer) Create(_ context.Context, u *model.User) error {
	return q.s.view(q.locked, func(st *state) error {
		for _, o := range st.users {
			if strings.EqualFold(o.Email, u.Email) {
				return cerr.AlreadyExists(fmt.Errorf(
					"email %q is taken", u.Email,
				))
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (q usersQueryer) Get(
	_ context.Context, uid uuid.UUID,
) (u *model.User, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		v, ok := st.users[uid]
		if !ok {
			return notFound("user", uid)
		}
		u = &v
		return nil
	})
	return
}

func (q usersQueryer) GetByEmail(
	_ context.Context, email string,
) (u *model.User, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		for _, v := range st.users {
			if strings.EqualFold(v.Email, email) {
				u = &v
				return nil
			}
		}
		return notFound("user", email)
	})
	return
}

type parkings struct{ s *Store }

func (r parkings) Conn(repo.Conn) repo.ParkingsConnQueryer {
	return parkingsQueryer{s: r.s}
}

func (r parkings) Tx(repo.Tx) repo.ParkingsTxQueryer {
	return parkingsQueryer{s: r.s, locked: true}
}

type parkingsQueryer struct {
	s      *Store
	locked bool
}

func copyParking(p model.Parking) model.Parking {
	p.OpeningHours = maps.Clone(p.OpeningHours)
	return p
}

func (q parkingsQueryer) Create(_ context.Context, p *model.Parking) error {
	return q.s.view(q.locked, func(st *state) error {
		if _, ok := st.parkings[p.ID]; ok {
			return cerr.AlreadyExists(fmt.Errorf("parking %v", p.ID))
		}
		st.parkings[p.ID] = copyParking(*p)
		return nil
	})
}

func (q parkingsQueryer) Get(
	_ context.Context, pid uuid.UUID,
) (p *model.Parking, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		v, ok := st.parkings[pid]
		if !ok {
			return notFound("parking", pid)
		}
		v = copyParking(v)
		p = &v
		return nil
	})
	return
}

// Lock is the same as Get because the transaction holds the store lock.
func (q parkingsQueryer) Lock(
	ctx context.Context, pid uuid.UUID,
) (*model.Parking, error) {
	return q.Get(ctx, pid)
}

func (q parkingsQueryer) List(
	_ context.Context,
) (pp []model.Parking, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		for _, v := range st.parkings {
			pp = append(pp, copyParking(v))
		}
		slices.SortFunc(pp, func(a, b model.Parking) int {
			return strings.Compare(a.Name, b.Name)
		})
		return nil
	})
	return
}

func (q parkingsQueryer) SetAvailableSpots(
	_ context.Context, pid uuid.UUID, n int,
) error {
	return q.s.view(q.locked, func(st *state) error {
		v, ok := st.parkings[pid]
		if !ok {
			return notFound("parking", pid)
		}
		if n < 0 || n > v.TotalSpaces {
			return fmt.Errorf("available spots (%d) is out of range", n)
		}
		v.AvailableSpots = n
		st.parkings[pid] = v
		return nil
	})
}

type reservations struct{ s *Store }

func (r reservations) Conn(repo.Conn) repo.ReservationsConnQueryer {
	return reservationsQueryer{s: r.s}
}

func (r reservations) Tx(repo.Tx) repo.ReservationsTxQueryer {
	return reservationsQueryer{s: r.s, locked: true}
}

type reservationsQueryer struct {
	s      *Store
	locked bool
}

func (q reservationsQueryer) Create(
	_ context.Context, r *model.Reservation,
) error {
	return q.s.view(q.locked, func(st *state) error {
		if _, ok := st.parkings[r.ParkingID]; !ok {
			return notFound("parking", r.ParkingID)
		}
		st.reservations[r.ID] = *r
		return nil
	})
}

func (q reservationsQueryer) SetStatus(
	_ context.Context, rid uuid.UUID, s model.ReservationStatus,
) error {
	return q.s.view(q.locked, func(st *state) error {
		v, ok := st.reservations[rid]
		if !ok {
			return notFound("reservation", rid)
		}
		v.Status = s
		st.reservations[rid] = v
		return nil
	})
}

func (q reservationsQueryer) Get(
	_ context.Context, rid uuid.UUID,
) (r *model.Reservation, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		v, ok := st.reservations[rid]
		if !ok {
			return notFound("reservation", rid)
		}
		r = &v
		return nil
	})
	return
}

func (q reservationsQueryer) filter(
	keep func(r *model.Reservation) bool,
) (rr []model.Reservation, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		for _, v := range st.reservations {
			if keep(&v) {
				rr = append(rr, v)
			}
		}
		slices.SortFunc(rr, func(a, b model.Reservation) int {
			return a.StartTime.Compare(b.StartTime)
		})
		return nil
	})
	return
}

func (q reservationsQueryer) ListByUser(
	_ context.Context, uid uuid.UUID,
) ([]model.Reservation, error) {
	return q.filter(func(r *model.Reservation) bool {
		return r.UserID == uid
	})
}

func (q reservationsQueryer) CountOverlapping(
	_ context.Context,
	pid uuid.UUID,
	start, end time.Time,
	exclude *uuid.UUID,
) (int, error) {
	rr, err := q.filter(func(r *model.Reservation) bool {
		return r.ParkingID == pid && r.Status.HoldsSpace() &&
			(exclude == nil || *exclude != r.ID) &&
			model.Overlaps(r.StartTime, r.EndTime, start, end)
	})
	return len(rr), err
}

func (q reservationsQueryer) CountCovering(
	_ context.Context, pid uuid.UUID, t time.Time,
) (int, error) {
	rr, err := q.filter(func(r *model.Reservation) bool {
		return r.ParkingID == pid && r.Covers(t)
	})
	return len(rr), err
}

func (q reservationsQueryer) FindCovering(
	_ context.Context, uid, pid uuid.UUID, t time.Time,
) (*model.Reservation, error) {
	rr, err := q.filter(func(r *model.Reservation) bool {
		return r.UserID == uid && r.ParkingID == pid &&
			r.Status == model.ReservationConfirmed && r.Covers(t)
	})
	if err != nil || len(rr) == 0 {
		return nil, err
	}
	return &rr[0], nil
}

func (q reservationsQueryer) ListElapsed(
	_ context.Context, now time.Time,
) ([]model.Reservation, error) {
	return q.filter(func(r *model.Reservation) bool {
		return r.Status == model.ReservationConfirmed &&
			!r.EndTime.After(now)
	})
}

type sessions struct{ s *Store }

func (r sessions) Conn(repo.Conn) repo.SessionsConnQueryer {
	return sessionsQueryer{s: r.s}
}

func (r sessions) Tx(repo.Tx) repo.SessionsTxQueryer {
	return sessionsQueryer{s: r.s, locked: true}
}

type sessionsQueryer struct {
	s      *Store
	locked bool
}

func copySession(s model.ParkingSession) model.ParkingSession {
	if s.ReservationID != nil {
		rid := *s.ReservationID
		s.ReservationID = &rid
	}
	if s.EndTime != nil {
		t := *s.EndTime
		s.EndTime = &t
	}
	if s.TotalAmount != nil {
		m := *s.TotalAmount
		s.TotalAmount = &m
	}
	return s
}

func (q sessionsQueryer) Create(
	_ context.Context, s *model.ParkingSession,
) error {
	return q.s.view(q.locked, func(st *state) error {
		st.sessions[s.ID] = copySession(*s)
		return nil
	})
}

func (q sessionsQueryer) Finish(
	_ context.Context, s *model.ParkingSession,
) error {
	return q.s.view(q.locked, func(st *state) error {
		v, ok := st.sessions[s.ID]
		if !ok {
			return notFound("session", s.ID)
		}
		n := copySession(*s)
		v.EndTime, v.TotalAmount, v.Status = n.EndTime, n.TotalAmount, n.Status
		st.sessions[s.ID] = v
		return nil
	})
}

func (q sessionsQueryer) Get(
	_ context.Context, sid uuid.UUID,
) (s *model.ParkingSession, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		v, ok := st.sessions[sid]
		if !ok {
			return notFound("session", sid)
		}
		v = copySession(v)
		s = &v
		return nil
	})
	return
}

func (q sessionsQueryer) find(
	keep func(s *model.ParkingSession) bool,
) (s *model.ParkingSession, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		for _, v := range st.sessions {
			if keep(&v) && (s == nil || v.StartTime.After(s.StartTime)) {
				v = copySession(v)
				s = &v
			}
		}
		return nil
	})
	return
}

func (q sessionsQueryer) FindActive(
	_ context.Context, uid, pid uuid.UUID,
) (*model.ParkingSession, error) {
	return q.find(func(s *model.ParkingSession) bool {
		return s.UserID == uid && s.ParkingID == pid &&
			s.Status == model.SessionActive
	})
}

func (q sessionsQueryer) FindByReservation(
	_ context.Context, rid uuid.UUID,
) (*model.ParkingSession, error) {
	return q.find(func(s *model.ParkingSession) bool {
		return s.ReservationID != nil && *s.ReservationID == rid
	})
}

type subscriptions struct{ s *Store }

func (r subscriptions) Conn(repo.Conn) repo.SubscriptionsConnQueryer {
	return subscriptionsQueryer{s: r.s}
}

func (r subscriptions) Tx(repo.Tx) repo.SubscriptionsTxQueryer {
	return subscriptionsQueryer{s: r.s, locked: true}
}

type subscriptionsQueryer struct {
	s      *Store
	locked bool
}

func copySubscription(s model.Subscription) model.Subscription {
	ws := make(model.WeeklySlots, len(s.WeeklySlots))
	for d, slots := range s.WeeklySlots {
		ws[d] = slices.Clone(slots)
	}
	s.WeeklySlots = ws
	return s
}

func (q subscriptionsQueryer) Create(
	_ context.Context, s *model.Subscription,
) error {
	return q.s.view(q.locked, func(st *state) error {
		st.subscriptions[s.ID] = copySubscription(*s)
		return nil
	})
}

func (q subscriptionsQueryer) Get(
	_ context.Context, sid uuid.UUID,
) (s *model.Subscription, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		v, ok := st.subscriptions[sid]
		if !ok {
			return notFound("subscription", sid)
		}
		v = copySubscription(v)
		s = &v
		return nil
	})
	return
}

func (q subscriptionsQueryer) filter(
	keep func(s *model.Subscription) bool,
) (ss []model.Subscription, err error) {
	err = q.s.view(q.locked, func(st *state) error {
		for _, v := range st.subscriptions {
			if v.Status == model.SubscriptionActive && keep(&v) {
				ss = append(ss, copySubscription(v))
			}
		}
		slices.SortFunc(ss, func(a, b model.Subscription) int {
			return a.StartDate.Compare(b.StartDate)
		})
		return nil
	})
	return
}

func (q subscriptionsQueryer) ListActive(
	_ context.Context, pid uuid.UUID,
) ([]model.Subscription, error) {
	return q.filter(func(s *model.Subscription) bool {
		return s.ParkingID == pid
	})
}

func (q subscriptionsQueryer) ListActiveOfUser(
	_ context.Context, uid, pid uuid.UUID,
) ([]model.Subscription, error) {
	return q.filter(func(s *model.Subscription) bool {
		return s.UserID == uid && s.ParkingID == pid
	})
}
