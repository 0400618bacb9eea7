package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"teamjoin/internal/models"
)

const inviteBlockSeparator = "---"

var (
	inviteLinkRe   = regexp.MustCompile(`Link:\s*(https?://\S+)`)
	inviteExpiryRe = regexp.MustCompile(`Expiry:\s*(\d{2}-\d{2}-\d{2})`)
)

type InviteRepository interface {
	List(ctx context.Context) ([]models.Invite, error)
	Append(ctx context.Context, inv models.Invite) error
}

// fileInviteRepository читает invites.txt заново при каждом List,
// чтобы свежие ссылки подхватывались без перезапуска.
type fileInviteRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileInviteRepository(path string) InviteRepository {
	return &fileInviteRepository{path: path}
}

func (r *fileInviteRepository) List(_ context.Context) ([]models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read invites file: %w", err)
	}
	return ParseInvites(string(b)), nil
}

func (r *fileInviteRepository) Append(_ context.Context, inv models.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create invites dir: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open invites file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	block := FormatInvite(inv)
	if info.Size() > 0 {
		block = "\n" + inviteBlockSeparator + "\n" + block
	}
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append invite: %w", err)
	}
	return nil
}

// ParseInvites extracts invites from "---"-separated text blocks. Blocks
// without both a Link and an Expiry line are skipped.
func ParseInvites(text string) []models.Invite {
	var invites []models.Invite
	for _, block := range strings.Split(strings.TrimSpace(text), inviteBlockSeparator) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		link := inviteLinkRe.FindStringSubmatch(block)
		expiry := inviteExpiryRe.FindStringSubmatch(block)
		if link == nil || expiry == nil {
			continue
		}
		invites = append(invites, models.Invite{
			Link:   strings.TrimSpace(link[1]),
			Expiry: strings.TrimSpace(expiry[1]),
		})
	}
	return invites
}

func FormatInvite(inv models.Invite) string {
	return fmt.Sprintf("Link: %s\nExpiry: %s\n", inv.Link, inv.Expiry)
}
