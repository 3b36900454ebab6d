// Package memory is an in-process store with the same semantics as the
// postgres repositories. Every method holds one mutex, so check-then-write
// sequences are serialized the way advisory locks serialize them in postgres.
package memory

import (
	"sort"
	"sync"
	"time"

	"estatedeal_backend/internal/model"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq map[string]uint

	users        map[uint]model.User
	sellers      map[uint]model.Seller
	buyers       map[uint]model.Buyer
	brokers      map[uint]model.Broker
	properties   map[uint]model.Property
	leads        map[uint]model.Lead
	associations map[uint]model.AgentBuyerAssociation
	transactions map[uint]model.Transaction
	payouts      map[uint]model.CommissionPayout
	otps         map[uint]model.OTPRecord
	progress     map[uint]model.TransactionProgress
	availability map[uint]model.VisitAvailability
	visits       map[uint]model.VisitRequest
	tickets      map[uint]model.SupportTicket
	messages     map[uint]model.SupportMessage
}

type Option func(*Store)

// WithClock sets the clock used for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		seq:          map[string]uint{},
		users:        map[uint]model.User{},
		sellers:      map[uint]model.Seller{},
		buyers:       map[uint]model.Buyer{},
		brokers:      map[uint]model.Broker{},
		properties:   map[uint]model.Property{},
		leads:        map[uint]model.Lead{},
		associations: map[uint]model.AgentBuyerAssociation{},
		transactions: map[uint]model.Transaction{},
		payouts:      map[uint]model.CommissionPayout{},
		otps:         map[uint]model.OTPRecord{},
		progress:     map[uint]model.TransactionProgress{},
		availability: map[uint]model.VisitAvailability{},
		visits:       map[uint]model.VisitRequest{},
		tickets:      map[uint]model.SupportTicket{},
		messages:     map[uint]model.SupportMessage{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// stamp assigns an ID and timestamps to a new row's gorm.Model fields.
func (s *Store) stamp(table string, id *uint, createdAt, updatedAt *time.Time) {
	*id = s.nextID(table)
	now := s.now()
	*createdAt = now
	*updatedAt = now
}

func newestFirst[T any](rows []T, key func(T) (time.Time, uint)) []T {
	sort.Slice(rows, func(i, j int) bool {
		ti, ii := key(rows[i])
		tj, ij := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	})
	return rows
}

func ptrUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sortByID(rows []model.CommissionPayout) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
}
