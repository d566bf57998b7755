package app

import (
	"context"
	"sync"
	"testing"

	"regiss_network_bot/internal/domain/invite"
	idb "regiss_network_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchmakingFixture struct {
	profiles *memProfileRepo
	jobs     *memJobRepo
	invites  *memInviteRepo
	tg       *fakeTelegram
	svc      *MatchmakingService
}

func newMatchmakingFixture() *matchmakingFixture {
	f := &matchmakingFixture{
		profiles: newMemProfileRepo(
			member(adminTG, "Root", 0, "admin", "gestão", "sus"),
			member(coordinatorTG, "Coord", 0, "coordination", "gestão"),
			member(11, "Ana", 2024, "", "Gestão", "Qualidade"),
			member(12, "Bruno", 2025, "", "sus"),
			member(13, "Carla", 2019, "", "gestão", "sus", "auditoria"),
			member(14, "Davi", 2020, "", "finanças"),
		),
		jobs:    &memJobRepo{},
		invites: &memInviteRepo{},
		tg:      &fakeTelegram{failTo: map[int64]bool{}},
	}
	f.svc = NewMatchmakingService(f.profiles, f.jobs, f.invites, f.tg, adminTG, coordinatorTG, fixedClock(april2025), testLogger())
	return f
}

func (f *matchmakingFixture) postJob(t *testing.T, tags ...string) int64 {
	t.Helper()
	j, err := f.svc.PostJob(context.Background(), coordinatorTG, "Analista de Qualidade", "Hospital X", tags)
	require.NoError(t, err)
	return j.ID
}

func names(matches []CandidateMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Profile.FullName)
	}
	return out
}

func TestPostJob(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()

	j, err := f.svc.PostJob(ctx, coordinatorTG, " Gestor ", "HC", []string{"Gestão", "gestão", "SUS"})
	require.NoError(t, err)
	assert.Equal(t, "Gestor", j.Title)
	assert.Equal(t, []string{"gestão", "sus"}, j.JobTags)
	assert.True(t, j.IsOpen)

	_, err = f.svc.PostJob(ctx, coordinatorTG, "  ", "HC", nil)
	assert.ErrorIs(t, err, ErrEmptyJobTitle)

	_, err = f.svc.PostJob(ctx, 11, "Gestor", "HC", nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = f.svc.PostJob(ctx, 999, "Gestor", "HC", nil)
	assert.ErrorIs(t, err, idb.ErrProfileNotFound)
}

func TestRankCandidates_ExcludesAdminsAndOrdersByScore(t *testing.T) {
	f := newMatchmakingFixture()
	jobID := f.postJob(t, "gestão", "sus")

	_, matches, err := f.svc.RankCandidates(context.Background(), coordinatorTG, jobID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Carla", "Coord", "Ana", "Bruno", "Davi"}, names(matches))
	scores := make([]int, 0, len(matches))
	for _, m := range matches {
		scores = append(scores, m.Score)
	}
	assert.Equal(t, []int{100, 50, 50, 50, 0}, scores)
	assert.Equal(t, "Alumni '2019", matches[0].Status.Label)
}

func TestRankCandidates_JobWithoutTagsScoresZero(t *testing.T) {
	f := newMatchmakingFixture()
	jobID := f.postJob(t)

	_, matches, err := f.svc.RankCandidates(context.Background(), coordinatorTG, jobID)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Zero(t, m.Score)
	}
}

func TestRankCandidates_UnknownJob(t *testing.T) {
	f := newMatchmakingFixture()
	_, _, err := f.svc.RankCandidates(context.Background(), coordinatorTG, 77)
	assert.ErrorIs(t, err, idb.ErrJobNotFound)
}

func TestSendInvites_TopMatchesOnceEach(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")

	report, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Sent: 2}, report)

	carla := f.tg.to(t, 13)
	require.Len(t, carla, 1)
	assert.Contains(t, carla[0].Text, "100%")
	require.NotNil(t, carla[0].Options)
	require.NotNil(t, carla[0].Options.ReplyMarkup)
	yes := carla[0].Options.ReplyMarkup.InlineKeyboard[0][0]
	assert.Equal(t, InviteAcceptUnique, yes.Unique)
	assert.Equal(t, "1", yes.Data)

	invites, _ := f.invites.ListByJob(ctx, jobID)
	require.Len(t, invites, 2)
	for _, inv := range invites {
		assert.Equal(t, invite.StatusPending, inv.Status)
		assert.True(t, inv.SentAt.Valid)
	}

	// Second run skips the two already invited and reaches the next ones.
	report, err = f.svc.SendInvites(ctx, coordinatorTG, jobID, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Sent: 2, Skipped: 2}, report)

	// Davi scores 0 and is never invited.
	report, err = f.svc.SendInvites(ctx, coordinatorTG, jobID, 5, 50)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Skipped: 4}, report)
	assert.Empty(t, f.tg.to(t, 14))
}

func TestSendInvites_DeliveryFailureIsReported(t *testing.T) {
	f := newMatchmakingFixture()
	f.tg.failTo[13] = true
	jobID := f.postJob(t, "gestão", "sus")

	ctx := context.Background()

	report, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Failed: 1}, report)

	// The undelivered invite is retried on the next run.
	f.tg.failTo[13] = false
	report, err = f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Sent: 1}, report)

	invites, _ := f.invites.ListByJob(ctx, jobID)
	require.Len(t, invites, 1)
	assert.True(t, invites[0].SentAt.Valid)
}

func TestSendInvites_ClosedJob(t *testing.T) {
	f := newMatchmakingFixture()
	jobID := f.postJob(t, "gestão")
	_, err := f.svc.CloseJob(context.Background(), coordinatorTG, jobID)
	require.NoError(t, err)

	_, err = f.svc.SendInvites(context.Background(), coordinatorTG, jobID, 5, 0)
	assert.ErrorIs(t, err, ErrJobClosed)
}

func TestSendInvites_NoOverlapIsNeverInvited(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()

	untagged := f.postJob(t)
	report, err := f.svc.SendInvites(ctx, coordinatorTG, untagged, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{}, report)
	assert.Empty(t, f.tg.sent)

	tagged := f.postJob(t, "gestão", "sus")
	report, err = f.svc.SendInvites(ctx, coordinatorTG, tagged, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Sent)
	assert.Empty(t, f.tg.to(t, 14))
}

func TestSendInvites_InviteClaimedElsewhereIsSkipped(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")

	// Another run created Carla's invite and is delivering it right now.
	inv := &invite.Invite{JobID: jobID, ProfileID: 5, Score: 100, Status: invite.StatusPending}
	require.NoError(t, f.invites.Create(ctx, inv))
	require.NoError(t, f.invites.ClaimDelivery(ctx, inv.ID, april2025))

	report, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, &InviteReport{Skipped: 1}, report)
	assert.Empty(t, f.tg.to(t, 13))
}

func TestSendInvites_ConcurrentRunsDeliverOnce(t *testing.T) {
	f := newMatchmakingFixture()
	jobID := f.postJob(t, "gestão", "sus")

	var wg sync.WaitGroup
	reports := make([]*InviteReport, 2)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report, err := f.svc.SendInvites(context.Background(), coordinatorTG, jobID, 10, 50)
			assert.NoError(t, err)
			reports[i] = report
		}(i)
	}
	wg.Wait()

	require.NotNil(t, reports[0])
	require.NotNil(t, reports[1])
	assert.Equal(t, 4, reports[0].Sent+reports[1].Sent)
	for _, tg := range []int64{coordinatorTG, 11, 12, 13} {
		assert.Len(t, f.tg.to(t, tg), 1, "telegram id %d", tg)
	}
}

func TestCloseJob(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão")

	_, err := f.svc.CloseJob(ctx, 11, jobID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	j, err := f.svc.CloseJob(ctx, coordinatorTG, jobID)
	require.NoError(t, err)
	assert.False(t, j.IsOpen)

	open, err := f.svc.ListOpenJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = f.svc.CloseJob(ctx, coordinatorTG, jobID)
	assert.ErrorIs(t, err, ErrJobClosed)

	_, err = f.svc.CloseJob(ctx, coordinatorTG, 99)
	assert.ErrorIs(t, err, idb.ErrJobNotFound)
}

func TestJobInvites(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")
	_, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 2, 50)
	require.NoError(t, err)
	_, err = f.svc.RespondToInvite(ctx, 13, 1, false)
	require.NoError(t, err)

	j, lines, err := f.svc.JobInvites(ctx, coordinatorTG, jobID)
	require.NoError(t, err)
	assert.Equal(t, "Analista de Qualidade", j.Title)
	require.Len(t, lines, 2)
	assert.Equal(t, "Carla", lines[0].Profile.FullName)
	assert.Equal(t, invite.StatusDeclined, lines[0].Invite.Status)
	assert.Equal(t, "Coord", lines[1].Profile.FullName)
	assert.Equal(t, invite.StatusPending, lines[1].Invite.Status)

	_, _, err = f.svc.JobInvites(ctx, 11, jobID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRespondToInvite(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")
	_, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)

	_, err = f.svc.RespondToInvite(ctx, 11, 1, true)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	inv, err := f.svc.RespondToInvite(ctx, 13, 1, true)
	require.NoError(t, err)
	assert.Equal(t, invite.StatusAccepted, inv.Status)
	assert.True(t, inv.RespondedAt.Valid)

	toCoord := f.tg.to(t, coordinatorTG)
	require.Len(t, toCoord, 1)
	assert.Contains(t, toCoord[0].Text, "Carla")
	assert.Contains(t, toCoord[0].Text, "Analista de Qualidade")

	_, err = f.svc.RespondToInvite(ctx, 13, 1, false)
	assert.ErrorIs(t, err, ErrInviteAlreadyAnswered)

	_, err = f.svc.RespondToInvite(ctx, 13, 99, false)
	assert.ErrorIs(t, err, idb.ErrInviteNotFound)
}

func TestRespondToInvite_ClosedJob(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")
	_, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)
	_, err = f.svc.CloseJob(ctx, coordinatorTG, jobID)
	require.NoError(t, err)

	_, err = f.svc.RespondToInvite(ctx, 13, 1, true)
	assert.ErrorIs(t, err, ErrJobClosed)
	assert.Empty(t, f.tg.to(t, coordinatorTG))
}

// readBarrierInviteRepo holds every GetByID caller until all expected readers
// have loaded the invite, so they all see it pending.
type readBarrierInviteRepo struct {
	*memInviteRepo
	reads sync.WaitGroup
}

func (r *readBarrierInviteRepo) GetByID(ctx context.Context, id int64) (*invite.Invite, error) {
	inv, err := r.memInviteRepo.GetByID(ctx, id)
	r.reads.Done()
	r.reads.Wait()
	return inv, err
}

func TestRespondToInvite_ConcurrentAnswersOnlyOneWins(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()
	jobID := f.postJob(t, "gestão", "sus")
	_, err := f.svc.SendInvites(ctx, coordinatorTG, jobID, 1, 100)
	require.NoError(t, err)

	repo := &readBarrierInviteRepo{memInviteRepo: f.invites}
	repo.reads.Add(2)
	svc := NewMatchmakingService(f.profiles, f.jobs, repo, f.tg, adminTG, coordinatorTG, fixedClock(april2025), testLogger())

	answers := []bool{true, false}
	errs := make([]error, len(answers))
	var wg sync.WaitGroup
	for i, accepted := range answers {
		wg.Add(1)
		go func(i int, accepted bool) {
			defer wg.Done()
			_, errs[i] = svc.RespondToInvite(ctx, 13, 1, accepted)
		}(i, accepted)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "both answers were recorded")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, ErrInviteAlreadyAnswered)
	}
	require.NotEqual(t, -1, winner)

	stored, err := f.invites.GetByID(ctx, 1)
	require.NoError(t, err)
	if answers[winner] {
		assert.Equal(t, invite.StatusAccepted, stored.Status)
		assert.Len(t, f.tg.to(t, coordinatorTG), 1)
	} else {
		assert.Equal(t, invite.StatusDeclined, stored.Status)
		assert.Empty(t, f.tg.to(t, coordinatorTG))
	}
}

func TestSuggestConnections(t *testing.T) {
	f := newMatchmakingFixture()
	ctx := context.Background()

	suggestions, err := f.svc.SuggestConnections(ctx, 13, 3)
	require.NoError(t, err)
	// Carla's tags: gestão, sus, auditoria. Root shares two, the rest one each.
	assert.Equal(t, []string{"Root", "Coord", "Ana"}, names(suggestions))
	assert.Equal(t, 67, suggestions[0].Score)

	suggestions, err = f.svc.SuggestConnections(ctx, 14, 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestConnections_ViewerWithoutInterests(t *testing.T) {
	f := newMatchmakingFixture()
	require.NoError(t, f.profiles.Create(context.Background(), member(15, "Eva", 2024, "")))

	suggestions, err := f.svc.SuggestConnections(context.Background(), 15, 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
