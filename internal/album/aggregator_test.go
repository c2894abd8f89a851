package album_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"shiftbot/internal/album"
	"shiftbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var owner = domain.Sender{ID: 10, Username: "mario"}

func arrival(gid string, msgID int, caption string) album.Arrival {
	a := album.Arrival{
		GroupID: gid,
		Item:    album.Item{Source: domain.Location{ChatID: -100, MessageID: msgID}, MediaRef: "file-" + string(rune('a'+msgID))},
		Caption: caption,
		Owner:   owner,
		Org:     "ER",
	}
	if d, ok := domain.ParseDate(caption); ok {
		a.Date, a.HasDate = d, true
	}
	return a
}

func TestAggregator_SinglePromptForUndatedAlbum(t *testing.T) {
	g := album.NewAggregator(0, nil)

	first := g.Add(arrival("g1", 1, ""))
	assert.True(t, first.NeedPrompt)
	assert.False(t, first.NeedDecision)

	for i := 2; i <= 4; i++ {
		obs := g.Add(arrival("g1", i, ""))
		assert.False(t, obs.NeedPrompt, "item %d must not prompt again", i)
		assert.False(t, obs.NeedDecision)
		assert.Empty(t, obs.Commit)
	}

	snap, ok := g.Get("g1")
	require.True(t, ok)
	assert.Len(t, snap.Items, 4)
	assert.Equal(t, album.Undecided, snap.Decision)
	assert.Equal(t, "@mario", snap.OwnerDisplay)
}

func TestAggregator_ResolveThenDecideCommitsAll(t *testing.T) {
	g := album.NewAggregator(0, nil)
	for i := 1; i <= 3; i++ {
		g.Add(arrival("g1", i, ""))
	}

	obs, err := g.Resolve("g1", time.Date(2025, 12, 10, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, obs.NeedDecision)
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), obs.Aggregate.Date)

	items, err := g.Decide("g1", album.Allowed)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	assert.True(t, g.MarkNotified("g1"))
	assert.False(t, g.MarkNotified("g1"))

	late := g.Add(arrival("g1", 4, ""))
	require.Len(t, late.Commit, 1)
	assert.Equal(t, 4, late.Commit[0].Source.MessageID)

	_, err = g.Resolve("g1", time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestAggregator_DateFromLaterItem(t *testing.T) {
	g := album.NewAggregator(0, nil)

	first := g.Add(arrival("g1", 1, ""))
	assert.True(t, first.NeedPrompt)

	second := g.Add(arrival("g1", 2, "Cambio 10/12/2025"))
	assert.False(t, second.NeedPrompt)
	assert.True(t, second.NeedDecision)
	assert.Equal(t, "Cambio 10/12/2025", second.Aggregate.Caption)

	third := g.Add(arrival("g1", 3, "11/12/2025"))
	assert.False(t, third.NeedDecision, "decision already claimed")
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), third.Aggregate.Date)

	items, err := g.Decide("g1", album.Allowed)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestAggregator_BlockedAbsorbsLateItems(t *testing.T) {
	g := album.NewAggregator(0, nil)

	obs := g.Add(arrival("g1", 1, "10/12/2025"))
	require.True(t, obs.NeedDecision)

	items, err := g.Decide("g1", album.Blocked)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	late := g.Add(arrival("g1", 2, ""))
	assert.True(t, late.Blocked)
	assert.Empty(t, late.Commit)
	assert.False(t, late.NeedDecision)
	assert.False(t, late.NeedPrompt)
}

func TestAggregator_ReleaseAllowsRetry(t *testing.T) {
	g := album.NewAggregator(0, nil)

	obs := g.Add(arrival("g1", 1, "10/12/2025"))
	require.True(t, obs.NeedDecision)
	g.Release("g1")

	obs = g.Add(arrival("g1", 2, ""))
	assert.True(t, obs.NeedDecision)
}

func TestAggregator_RedeliveredItemIsNotAppended(t *testing.T) {
	g := album.NewAggregator(0, nil)

	obs := g.Add(arrival("g1", 1, "10/12/2025"))
	require.True(t, obs.NeedDecision)
	_, err := g.Decide("g1", album.Allowed)
	require.NoError(t, err)

	again := g.Add(arrival("g1", 1, "10/12/2025"))
	assert.True(t, again.Redelivered)
	assert.Empty(t, again.Commit)
	assert.False(t, again.NeedDecision)
	assert.Len(t, again.Aggregate.Items, 1)
}

func TestAggregator_RollbackReopensDecision(t *testing.T) {
	g := album.NewAggregator(0, nil)
	g.Add(arrival("g1", 1, ""))
	g.Add(arrival("g1", 2, ""))

	obs, err := g.Resolve("g1", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, obs.NeedDecision)
	items, err := g.Decide("g1", album.Allowed)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// запись не удалась
	g.Rollback("g1", items)

	snap, ok := g.Get("g1")
	require.True(t, ok)
	assert.Equal(t, album.Undecided, snap.Decision)

	obs, err = g.Resolve("g1", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, obs.NeedDecision)
	items, err = g.Decide("g1", album.Allowed)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAggregator_AnyOrderCommitsEveryItemOnce(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		g := album.NewAggregator(0, nil)
		ids := []int{1, 2, 3, 4, 5}
		rand.New(rand.NewSource(seed)).Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		prompts := 0
		committed := map[int]int{}
		split := 1 + int(seed%int64(len(ids)))

		for i := 0; i <= len(ids); i++ {
			if i == split {
				obs, err := g.Resolve("g", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
				require.NoError(t, err)
				require.True(t, obs.NeedDecision)
				items, err := g.Decide("g", album.Allowed)
				require.NoError(t, err)
				for _, it := range items {
					committed[it.Source.MessageID]++
				}
			}
			if i == len(ids) {
				break
			}
			obs := g.Add(arrival("g", ids[i], ""))
			if obs.NeedPrompt {
				prompts++
			}
			for _, it := range obs.Commit {
				committed[it.Source.MessageID]++
			}
		}

		assert.Equal(t, 1, prompts, "seed %d", seed)
		assert.Len(t, committed, 5, "seed %d", seed)
		for id, n := range committed {
			assert.Equal(t, 1, n, "seed %d item %d", seed, id)
		}
	}
}

func TestAggregator_ConcurrentArrivalsClaimOnce(t *testing.T) {
	g := album.NewAggregator(0, nil)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			obs := g.Add(arrival("g", id, "10/12/2025"))
			if obs.NeedDecision {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, claims)
	items, err := g.Decide("g", album.Allowed)
	require.NoError(t, err)
	assert.Len(t, items, 16)
}

func TestAggregator_SweepExpired(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	g := album.NewAggregator(time.Hour, func() time.Time { return now })

	g.Add(arrival("old", 1, ""))
	now = now.Add(30 * time.Minute)
	g.Add(arrival("fresh", 2, ""))
	now = now.Add(31 * time.Minute)

	assert.Equal(t, 1, g.Sweep())
	_, ok := g.Get("old")
	assert.False(t, ok)
	_, ok = g.Get("fresh")
	assert.True(t, ok)
}

func TestAggregator_SweepSettledAfterGrace(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	g := album.NewAggregator(time.Hour, func() time.Time { return now })

	g.Add(arrival("done", 1, "10/12/2025"))
	_, err := g.Decide("done", album.Allowed)
	require.NoError(t, err)
	g.Add(arrival("waiting", 2, ""))

	now = now.Add(album.SettledGrace)
	assert.Equal(t, 1, g.Sweep())
	_, ok := g.Get("done")
	assert.False(t, ok)
	_, ok = g.Get("waiting")
	assert.True(t, ok)
}

func TestAggregator_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := album.NewAggregator(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, time.Millisecond) }()

	cancel()
	assert.NoError(t, <-done)
}
