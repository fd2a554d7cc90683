package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type menuRepo struct{ db *DB }

func (r menuRepo) List(_ context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.MenuItem, 0, len(r.db.menu))
	for _, item := range r.db.menu {
		if onlyAvailable && !item.Available {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r menuRepo) Get(_ context.Context, id string) (models.MenuItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.menu[id]
	if !ok {
		return models.MenuItem{}, store.ErrNotFound
	}
	return item, nil
}

func (r menuRepo) Insert(_ context.Context, item models.MenuItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.menu[item.ID]; ok {
		return store.ErrDuplicate
	}
	r.db.menu[item.ID] = item
	return nil
}

func (r menuRepo) Update(_ context.Context, id string, p store.MenuPatch) (models.MenuItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.menu[id]
	if !ok {
		return models.MenuItem{}, store.ErrNotFound
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if !p.UpdatedAt.IsZero() {
		item.UpdatedAt = p.UpdatedAt
	}
	r.db.menu[id] = item
	return item, nil
}

func (r menuRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.menu[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.menu, id)
	return nil
}

type studentRepo struct{ db *DB }

func (r studentRepo) Get(_ context.Context, pid string) (models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[pid]
	if !ok {
		return models.Student{}, store.ErrNotFound
	}
	return s, nil
}

func (r studentRepo) Ensure(_ context.Context, pid string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[pid]
	if !ok {
		s = models.Student{PID: pid, CreatedAt: now}
	}
	s.UpdatedAt = now
	r.db.students[pid] = s
	return nil
}

func (r studentRepo) SetBlocked(_ context.Context, pid string, blocked bool, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[pid]
	if !ok {
		s = models.Student{PID: pid, CreatedAt: now}
	}
	s.Blocked = blocked
	s.UpdatedAt = now
	r.db.students[pid] = s
	return nil
}

type cartRepo struct{ db *DB }

func (r cartRepo) Get(_ context.Context, pid string) (map[string]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneItems(r.db.carts[pid]), nil
}

func (r cartRepo) Put(_ context.Context, pid string, items map[string]int, _ time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.carts[pid] = cloneItems(items)
	return nil
}

type codeRepo struct{ db *DB }

func (r codeRepo) Reserve(_ context.Context, code string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.codes[code]; ok {
		return store.ErrDuplicate
	}
	r.db.codes[code] = models.PaymentCodeReservation{Code: code, CreatedAt: now}
	return nil
}

func (r codeRepo) Attach(_ context.Context, code, orderID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res, ok := r.db.codes[code]
	if !ok {
		return store.ErrNotFound
	}
	res.OrderID = orderID
	r.db.codes[code] = res
	return nil
}

type staffRepo struct{ db *DB }

func (r staffRepo) GetByEmail(_ context.Context, email string) (models.StaffAccount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.staff {
		if a.Email == email {
			return a, nil
		}
	}
	return models.StaffAccount{}, store.ErrNotFound
}

func (r staffRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.StaffAccount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.staff[id.Hex()]
	if !ok {
		return models.StaffAccount{}, store.ErrNotFound
	}
	return a, nil
}

func (r staffRepo) Ensure(_ context.Context, account models.StaffAccount) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.staff {
		if a.Email == account.Email {
			return nil
		}
	}
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	r.db.staff[account.ID.Hex()] = account
	return nil
}

type tokenRepo struct{ db *DB }

func (r tokenRepo) Insert(_ context.Context, token models.RefreshToken) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	r.db.tokens[token.ID.Hex()] = token
	return token.ID, nil
}

func (r tokenRepo) FindActive(_ context.Context, tokenHash string) (models.RefreshToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tokens {
		if t.TokenHash == tokenHash && !t.Revoked {
			return t, nil
		}
	}
	return models.RefreshToken{}, store.ErrNotFound
}

func (r tokenRepo) Revoke(_ context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tokens[id.Hex()]
	if !ok {
		return store.ErrNotFound
	}
	t.Revoked = true
	t.ReplacedByToken = replacedBy
	r.db.tokens[id.Hex()] = t
	return nil
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key, t := range r.db.tokens {
		if t.TokenHash == tokenHash && !t.Revoked {
			t.Revoked = true
			r.db.tokens[key] = t
			return true, nil
		}
	}
	return false, nil
}
