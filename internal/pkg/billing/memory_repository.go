package billing

import (
	"sort"
	"sync"
	"time"

	"github.com/ManuelReschke/SaaSFox/app/models"
)

// MemoryRepository is an in-memory Repository used by unit tests and local
// runs without MySQL. It mirrors the unique constraints of the SQL schema.
type MemoryRepository struct {
	mu           sync.Mutex
	users        map[uint]*models.User
	events       map[string]*models.BillingWebhookEvent
	transactions []models.CreditTransaction
	nextEventID  uint
	nextTxID     uint
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  map[uint]*models.User{},
		events: map[string]*models.BillingWebhookEvent{},
	}
}

// AddUser seeds a user. A copy is stored.
func (m *MemoryRepository) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
}

// User returns a copy of the stored user.
func (m *MemoryRepository) User(id uint) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// Transactions returns a copy of the whole ledger in insertion order.
func (m *MemoryRepository) Transactions() []models.CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CreditTransaction(nil), m.transactions...)
}

// WebhookEvents returns copies of all recorded webhook events.
func (m *MemoryRepository) WebhookEvents() []models.BillingWebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BillingWebhookEvent, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := event.Provider + "\x00" + event.ProviderEventID
	if stored, ok := m.events[key]; ok {
		cp := *stored
		return false, &cp, nil
	}
	m.nextEventID++
	stored := *event
	stored.ID = m.nextEventID
	stored.CreatedAt = time.Now()
	m.events[key] = &stored
	cp := stored
	return true, &cp, nil
}

func (m *MemoryRepository) MarkWebhookProcessed(id uint, processingError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) ApplyCreditPurchase(userRef string, entry *models.CreditTransaction) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var user *models.User
	for _, u := range m.users {
		if u.UUID == userRef {
			user = u
			break
		}
	}
	if user == nil {
		return nil, false, ErrUserNotFound
	}
	for _, tx := range m.transactions {
		if tx.EventID == entry.EventID {
			cp := *user
			return &cp, false, nil
		}
	}

	user.CreditsTotal += entry.Amount
	m.nextTxID++
	entry.ID = m.nextTxID
	entry.UserID = user.ID
	entry.CreatedAt = time.Now()
	m.transactions = append(m.transactions, *entry)
	cp := *user
	return &cp, true, nil
}

func (m *MemoryRepository) ConsumeCredits(userID uint, amount int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if user.CreditsTotal-user.CreditsUsed < amount {
		cp := *user
		return &cp, ErrInsufficientCredits
	}
	user.CreditsUsed += amount
	cp := *user
	return &cp, nil
}

func (m *MemoryRepository) ListTransactions(userID uint, limit int) ([]models.CreditTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CreditTransaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].UserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}
