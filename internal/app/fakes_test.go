package app

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"regiss_network_bot/internal/domain/invite"
	"regiss_network_bot/internal/domain/job"
	"regiss_network_bot/internal/domain/profile"
	idb "regiss_network_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type memProfileRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*profile.Profile
}

func newMemProfileRepo(profiles ...*profile.Profile) *memProfileRepo {
	r := &memProfileRepo{byID: make(map[int64]*profile.Profile)}
	for _, p := range profiles {
		if err := r.Create(context.Background(), p); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *memProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.TelegramID == p.TelegramID {
			return idb.ErrDuplicateTelegramID
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfileRepo) GetByID(_ context.Context, id int64) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, idb.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) GetByTelegramID(_ context.Context, telegramID int64) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.TelegramID == telegramID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, idb.ErrProfileNotFound
}

func (r *memProfileRepo) Update(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return idb.ErrProfileNotFound
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfileRepo) ListActive(context.Context) ([]*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*profile.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs []*job.Job
}

func (r *memJobRepo) Create(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.ID = int64(len(r.jobs) + 1)
	cp := *j
	r.jobs = append(r.jobs, &cp)
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id int64) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || int(id) > len(r.jobs) {
		return nil, idb.ErrJobNotFound
	}
	cp := *r.jobs[id-1]
	return &cp, nil
}

func (r *memJobRepo) ListOpen(context.Context) ([]*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*job.Job
	for _, j := range r.jobs {
		if j.IsOpen {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJobRepo) Close(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || int(id) > len(r.jobs) {
		return idb.ErrJobNotFound
	}
	r.jobs[id-1].IsOpen = false
	return nil
}

type memInviteRepo struct {
	mu      sync.Mutex
	invites []*invite.Invite
}

func (r *memInviteRepo) Create(_ context.Context, inv *invite.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invites {
		if existing.JobID == inv.JobID && existing.ProfileID == inv.ProfileID {
			return idb.ErrDuplicateInvite
		}
	}
	inv.ID = int64(len(r.invites) + 1)
	cp := *inv
	r.invites = append(r.invites, &cp)
	return nil
}

func (r *memInviteRepo) GetByID(_ context.Context, id int64) (*invite.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || int(id) > len(r.invites) {
		return nil, idb.ErrInviteNotFound
	}
	cp := *r.invites[id-1]
	return &cp, nil
}

func (r *memInviteRepo) GetByJobAndProfile(_ context.Context, jobID, profileID int64) (*invite.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.JobID == jobID && inv.ProfileID == profileID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, idb.ErrInviteNotFound
}

// get returns the stored invite; callers hold mu.
func (r *memInviteRepo) get(id int64) (*invite.Invite, error) {
	if id < 1 || int(id) > len(r.invites) {
		return nil, idb.ErrInviteNotFound
	}
	return r.invites[id-1], nil
}

func (r *memInviteRepo) ClaimDelivery(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, err := r.get(id)
	if err != nil {
		return err
	}
	if inv.Status != invite.StatusPending || inv.SentAt.Valid {
		return idb.ErrInviteAlreadySent
	}
	inv.SentAt = sql.NullTime{Time: at, Valid: true}
	return nil
}

func (r *memInviteRepo) ReleaseDelivery(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, err := r.get(id)
	if err != nil {
		return err
	}
	if inv.Status != invite.StatusPending {
		return idb.ErrInviteNotPending
	}
	inv.SentAt = sql.NullTime{}
	return nil
}

func (r *memInviteRepo) Answer(_ context.Context, id int64, status invite.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, err := r.get(id)
	if err != nil {
		return err
	}
	if inv.Status != invite.StatusPending {
		return idb.ErrInviteNotPending
	}
	inv.Status = status
	inv.RespondedAt = sql.NullTime{Time: at, Valid: true}
	return nil
}

func (r *memInviteRepo) ListByJob(_ context.Context, jobID int64) ([]*invite.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*invite.Invite
	for _, inv := range r.invites {
		if inv.JobID == jobID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type sentMessage struct {
	ChatID  int64
	Text    string
	Options *telebot.SendOptions
}

type fakeTelegram struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[int64]bool
}

func (f *fakeTelegram) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[chatID] {
		return fmt.Errorf("chat %d blocked the bot", chatID)
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Options: options})
	return nil
}

func (f *fakeTelegram) to(t *testing.T, chatID int64) []sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
