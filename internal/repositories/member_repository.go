package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"teamjoin/internal/models"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
)

type MemberRepository interface {
	Get(ctx context.Context, userID string) (*models.Member, error)
	// Create stores the record only when the user has none yet.
	Create(ctx context.Context, userID string, m models.Member) error
	List(ctx context.Context) ([]models.MemberRecord, error)
}

// fileMemberRepository хранит users.json: один JSON-объект user_id -> запись,
// переписывается целиком при каждом изменении.
type fileMemberRepository struct {
	path    string
	mu      sync.RWMutex
	members map[string]models.Member
}

func NewFileMemberRepository(path string) (MemberRepository, error) {
	r := &fileMemberRepository{path: path, members: map[string]models.Member{}}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("read members file: %w", err)
	}
	if len(b) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(b, &r.members); err != nil {
		return nil, fmt.Errorf("parse members file %s: %w", path, err)
	}
	return r, nil
}

func (r *fileMemberRepository) Get(_ context.Context, userID string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return &m, nil
}

func (r *fileMemberRepository) Create(_ context.Context, userID string, m models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[userID]; ok {
		return ErrMemberExists
	}
	r.members[userID] = m
	if err := r.flushLocked(); err != nil {
		delete(r.members, userID)
		return err
	}
	return nil
}

func (r *fileMemberRepository) List(_ context.Context) ([]models.MemberRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.MemberRecord, 0, len(r.members))
	for id, m := range r.members {
		out = append(out, models.MemberRecord{UserID: id, Member: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fileMemberRepository) flushLocked() error {
	b, err := json.MarshalIndent(r.members, "", "  ")
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create members dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp members file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write members: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close members: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace members file: %w", err)
	}
	return nil
}
