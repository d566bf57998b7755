package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"regiss_network_bot/internal/domain/cohort"
	"regiss_network_bot/internal/domain/invite"
	"regiss_network_bot/internal/domain/job"
	"regiss_network_bot/internal/domain/matching"
	"regiss_network_bot/internal/domain/profile"
	domainTelegram "regiss_network_bot/internal/domain/telegram"
	idb "regiss_network_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var (
	ErrJobClosed             = fmt.Errorf("job is closed")
	ErrEmptyJobTitle         = fmt.Errorf("job title must not be empty")
	ErrInviteAlreadyAnswered = fmt.Errorf("invite was already answered")
)

// CandidateMatch is a profile scored against a job or a viewer.
type CandidateMatch struct {
	Profile *profile.Profile
	Status  cohort.Status
	Score   int
}

// InviteReport summarizes a SendInvites run.
type InviteReport struct {
	Sent    int
	Skipped int // already invited
	Failed  int
}

// MatchmakingService ranks members by interest overlap for jobs and peers.
type MatchmakingService struct {
	profileRepo           profile.Repository
	jobRepo               job.Repository
	inviteRepo            invite.Repository
	telegramClient        domainTelegram.Client
	guard                 staffGuard
	coordinatorTelegramID int64
	now                   func() time.Time
	logger                *logrus.Entry
}

func NewMatchmakingService(
	pr profile.Repository,
	jr job.Repository,
	ir invite.Repository,
	tc domainTelegram.Client,
	adminID int64,
	coordinatorID int64,
	now func() time.Time,
	logger *logrus.Entry,
) *MatchmakingService {
	return &MatchmakingService{
		profileRepo:           pr,
		jobRepo:               jr,
		inviteRepo:            ir,
		telegramClient:        tc,
		guard:                 staffGuard{profileRepo: pr, adminTelegramID: adminID},
		coordinatorTelegramID: coordinatorID,
		now:                   now,
		logger:                logger,
	}
}

// PostJob publishes a job opening. Staff only.
func (s *MatchmakingService) PostJob(ctx context.Context, performerTelegramID int64, title, institution string, tags []string) (*job.Job, error) {
	performer, err := s.guard.authorize(ctx, performerTelegramID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyJobTitle
	}

	j := &job.Job{
		PostedBy:    performer.ID,
		Title:       title,
		Institution: strings.TrimSpace(institution),
		JobTags:     matching.Normalize(tags),
		IsOpen:      true,
	}
	if err := s.jobRepo.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"job_id": j.ID, "posted_by": performer.ID, "tags": len(j.JobTags)}).Info("Job posted")
	return j, nil
}

// ListOpenJobs returns every open job.
func (s *MatchmakingService) ListOpenJobs(ctx context.Context) ([]*job.Job, error) {
	return s.jobRepo.ListOpen(ctx)
}

// CloseJob takes a job off the board. A closed job gets no new invites and
// its pending invites can no longer be answered. Staff only.
func (s *MatchmakingService) CloseJob(ctx context.Context, performerTelegramID, jobID int64) (*job.Job, error) {
	performer, err := s.guard.authorize(ctx, performerTelegramID)
	if err != nil {
		return nil, err
	}
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.IsOpen {
		return j, ErrJobClosed
	}
	if err := s.jobRepo.Close(ctx, j.ID); err != nil {
		return nil, fmt.Errorf("failed to close job: %w", err)
	}
	j.IsOpen = false
	s.logger.WithFields(logrus.Fields{"job_id": j.ID, "closed_by": performer.ID}).Info("Job closed")
	return j, nil
}

// InviteLine is an invite together with the invited member.
type InviteLine struct {
	Invite  *invite.Invite
	Profile *profile.Profile
}

// JobInvites lists the invites of a job, best fit first. Staff only.
func (s *MatchmakingService) JobInvites(ctx context.Context, performerTelegramID, jobID int64) (*job.Job, []InviteLine, error) {
	if _, err := s.guard.authorize(ctx, performerTelegramID); err != nil {
		return nil, nil, err
	}
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	invites, err := s.inviteRepo.ListByJob(ctx, j.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list job invites: %w", err)
	}

	lines := make([]InviteLine, 0, len(invites))
	for _, inv := range invites {
		p, err := s.profileRepo.GetByID(ctx, inv.ProfileID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load invited profile %d: %w", inv.ProfileID, err)
		}
		lines = append(lines, InviteLine{Invite: inv, Profile: p})
	}
	return j, lines, nil
}

// RankCandidates scores every active non-admin profile against the job's tags.
// Staff only.
func (s *MatchmakingService) RankCandidates(ctx context.Context, performerTelegramID, jobID int64) (*job.Job, []CandidateMatch, error) {
	if _, err := s.guard.authorize(ctx, performerTelegramID); err != nil {
		return nil, nil, err
	}
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	matches, err := s.rankCandidates(ctx, j)
	if err != nil {
		return nil, nil, err
	}
	return j, matches, nil
}

func (s *MatchmakingService) rankCandidates(ctx context.Context, j *job.Job) ([]CandidateMatch, error) {
	profiles, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active profiles: %w", err)
	}

	byID := make(map[int64]*profile.Profile, len(profiles))
	candidates := make([]matching.Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p.CohortRole() == cohort.RoleAdmin {
			continue
		}
		byID[p.ID] = p
		candidates = append(candidates, matching.Candidate{ID: p.ID, Tags: p.Interests})
	}

	now := s.now()
	ranked := matching.Rank(candidates, j.JobTags)
	out := make([]CandidateMatch, 0, len(ranked))
	for _, r := range ranked {
		p := byID[r.ID]
		out = append(out, CandidateMatch{Profile: p, Status: p.Status(now), Score: r.Score})
	}
	return out, nil
}

// SendInvites walks the ranking from the top and pushes up to topN new invites
// to members scoring at least minScore. Members already invited to the job are
// skipped and do not count towards topN. Members without any overlap are never
// invited, whatever minScore is. Staff only.
func (s *MatchmakingService) SendInvites(ctx context.Context, performerTelegramID, jobID int64, topN, minScore int) (*InviteReport, error) {
	if _, err := s.guard.authorize(ctx, performerTelegramID); err != nil {
		return nil, err
	}
	if minScore < 1 {
		minScore = 1
	}
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.IsOpen {
		return nil, ErrJobClosed
	}

	matches, err := s.rankCandidates(ctx, j)
	if err != nil {
		return nil, err
	}

	report := &InviteReport{}
	sent := 0
	for _, m := range matches {
		if sent == topN || m.Score < minScore {
			break
		}
		log := s.logger.WithFields(logrus.Fields{"job_id": j.ID, "profile_id": m.Profile.ID, "score": m.Score})

		inv, err := s.inviteRepo.GetByJobAndProfile(ctx, j.ID, m.Profile.ID)
		switch {
		case err == nil && (inv.SentAt.Valid || inv.Status != invite.StatusPending):
			report.Skipped++
			continue
		case err == nil:
			// A previous delivery failed; retry with the same invite.
		case errors.Is(err, idb.ErrInviteNotFound):
			inv = &invite.Invite{JobID: j.ID, ProfileID: m.Profile.ID, Score: m.Score, Status: invite.StatusPending}
			if err := s.inviteRepo.Create(ctx, inv); err != nil {
				if errors.Is(err, idb.ErrDuplicateInvite) {
					report.Skipped++
					continue
				}
				log.WithError(err).Error("Failed to create invite")
				report.Failed++
				continue
			}
		default:
			log.WithError(err).Error("Failed to check existing invite")
			report.Failed++
			continue
		}

		// Claim before sending so a concurrent run skips this invite.
		if err := s.inviteRepo.ClaimDelivery(ctx, inv.ID, s.now()); err != nil {
			if errors.Is(err, idb.ErrInviteAlreadySent) {
				report.Skipped++
				continue
			}
			log.WithError(err).Error("Failed to claim invite delivery")
			report.Failed++
			continue
		}

		if err := s.telegramClient.SendMessage(m.Profile.TelegramID, inviteMessage(m.Profile, j, m.Score), inviteOptions(inv.ID)); err != nil {
			log.WithError(err).Error("Failed to send invite")
			if err := s.inviteRepo.ReleaseDelivery(ctx, inv.ID); err != nil {
				log.WithError(err).Error("Failed to release invite delivery")
			}
			report.Failed++
			continue
		}
		log.Info("Invite sent")
		report.Sent++
		sent++
	}
	return report, nil
}

func inviteMessage(p *profile.Profile, j *job.Job, score int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s! Seu perfil tem %d%% de afinidade com a vaga \"%s\"", p.FullName, score, j.Title)
	if j.Institution != "" {
		fmt.Fprintf(&b, " (%s)", j.Institution)
	}
	b.WriteString(". Tem interesse em participar do processo?")
	return b.String()
}

// Callback uniques of the invite buttons. The button payload is the invite ID.
const (
	InviteAcceptUnique  = "inv_yes"
	InviteDeclineUnique = "inv_no"
)

func inviteOptions(inviteID int64) *telebot.SendOptions {
	markup := &telebot.ReplyMarkup{}
	id := strconv.FormatInt(inviteID, 10)
	btnYes := markup.Data("Tenho interesse", InviteAcceptUnique, id)
	btnNo := markup.Data("Não, obrigado(a)", InviteDeclineUnique, id)
	markup.Inline(markup.Row(btnYes, btnNo))
	return &telebot.SendOptions{ReplyMarkup: markup}
}

// RespondToInvite records the member's answer and, on acceptance, notifies the
// coordinator. An invite is answered once; a concurrent second answer gets
// ErrInviteAlreadyAnswered.
func (s *MatchmakingService) RespondToInvite(ctx context.Context, responderTelegramID, inviteID int64, accepted bool) (*invite.Invite, error) {
	inv, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	p, err := s.profileRepo.GetByID(ctx, inv.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invited profile: %w", err)
	}
	if p.TelegramID != responderTelegramID {
		return nil, ErrNotAuthorized
	}
	if inv.Status != invite.StatusPending {
		return inv, ErrInviteAlreadyAnswered
	}
	j, err := s.jobRepo.GetByID(ctx, inv.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invite job: %w", err)
	}
	if !j.IsOpen {
		return nil, ErrJobClosed
	}

	status := invite.StatusDeclined
	if accepted {
		status = invite.StatusAccepted
	}
	at := s.now()
	if err := s.inviteRepo.Answer(ctx, inv.ID, status, at); err != nil {
		if errors.Is(err, idb.ErrInviteNotPending) {
			return nil, ErrInviteAlreadyAnswered
		}
		return nil, fmt.Errorf("failed to answer invite: %w", err)
	}
	inv.Status = status
	inv.RespondedAt = sql.NullTime{Time: at, Valid: true}

	log := s.logger.WithFields(logrus.Fields{"invite_id": inv.ID, "job_id": inv.JobID, "status": inv.Status})
	log.Info("Invite answered")

	if accepted {
		msg := fmt.Sprintf("%s (afinidade %d%%) tem interesse na vaga \"%s\".", p.FullName, inv.Score, j.Title)
		if err := s.telegramClient.SendMessage(s.coordinatorTelegramID, msg, nil); err != nil {
			log.WithError(err).Error("Failed to notify coordinator")
		}
	}
	return inv, nil
}

// SuggestConnections ranks the viewer's peers by overlap with the viewer's own
// interests. The viewer and peers with no overlap are left out.
func (s *MatchmakingService) SuggestConnections(ctx context.Context, viewerTelegramID int64, limit int) ([]CandidateMatch, error) {
	viewer, err := s.profileRepo.GetByTelegramID(ctx, viewerTelegramID)
	if err != nil {
		return nil, err
	}
	if len(viewer.Interests) == 0 {
		return []CandidateMatch{}, nil
	}

	peers, err := s.profileRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active profiles: %w", err)
	}

	byID := make(map[int64]*profile.Profile, len(peers))
	candidates := make([]matching.Candidate, 0, len(peers))
	for _, p := range peers {
		if p.ID == viewer.ID {
			continue
		}
		byID[p.ID] = p
		candidates = append(candidates, matching.Candidate{ID: p.ID, Tags: p.Interests})
	}

	now := s.now()
	top := matching.Top(matching.Rank(candidates, viewer.Interests), limit, 1)
	out := make([]CandidateMatch, 0, len(top))
	for _, r := range top {
		p := byID[r.ID]
		out = append(out, CandidateMatch{Profile: p, Status: p.Status(now), Score: r.Score})
	}
	return out, nil
}
