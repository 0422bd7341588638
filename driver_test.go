package goldbach

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store that records every save.
type memStore struct {
	cp      Checkpoint
	saves   []Checkpoint
	loadErr error
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (Checkpoint, error) {
	if m.loadErr != nil {
		return Checkpoint{}, m.loadErr
	}
	if m.cp.Cache == nil {
		return FreshCheckpoint(), nil
	}
	return m.cp, nil
}

func (m *memStore) Save(ctx context.Context, cp Checkpoint) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c, err := NewPrimeCacheFrom(cp.Cache.Primes())
	if err != nil {
		return err
	}
	m.saves = append(m.saves, Checkpoint{LastTarget: cp.LastTarget, Cache: c})
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) last(t *testing.T) Checkpoint {
	t.Helper()
	require.NotEmpty(t, m.saves, "nothing was saved")
	return m.saves[len(m.saves)-1]
}

type recordingReporter struct {
	found    []int
	notFound []int
	onFound  func(n int)
}

func (r *recordingReporter) Found(n int, p Pair) {
	r.found = append(r.found, n)
	if r.onFound != nil {
		r.onFound(n)
	}
}

func (r *recordingReporter) NotFound(n int) { r.notFound = append(r.notFound, n) }

func testOptions() Options {
	opts := DefaultOptions()
	opts.CheckpointEvery = 0
	return opts
}

func TestRunUpToBound(t *testing.T) {
	s, _ := newTestStore(t)
	var out bytes.Buffer
	opts := testOptions()
	opts.UpperBound = 100
	opts.ReportEvery = 10

	err := Run(context.Background(), RunConfig{
		Options:  opts,
		Store:    s,
		Reporter: LineReporter{W: &out, Every: opts.ReportEvery},
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "10 = 3 + 7\n")
	assert.Contains(t, out.String(), "50 = 3 + 47\n")
	assert.Contains(t, out.String(), "100 = 3 + 97\n")
	assert.NotContains(t, out.String(), "No Goldbach pair")

	cp, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, cp.LastTarget)
	assert.Equal(t, sieve(101), cp.Cache.Primes())
}

func TestRunResumesAfterLastTarget(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	opts := testOptions()

	opts.UpperBound = 50
	first := &recordingReporter{}
	require.NoError(t, Run(ctx, RunConfig{Options: opts, Store: s, Reporter: first, Logger: discardLogger()}))
	require.Equal(t, 4, first.found[0])
	require.Equal(t, 50, first.found[len(first.found)-1])
	assert.Len(t, first.found, 24)

	opts.UpperBound = 80
	second := &recordingReporter{}
	require.NoError(t, Run(ctx, RunConfig{Options: opts, Store: s, Reporter: second, Logger: discardLogger()}))
	assert.Equal(t, 52, second.found[0])
	assert.Equal(t, 80, second.found[len(second.found)-1])
}

func TestRunCancelSavesState(t *testing.T) {
	store := &memStore{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rep := &recordingReporter{onFound: func(n int) {
		if n == 200 {
			cancel()
		}
	}}

	err := Run(ctx, RunConfig{Options: testOptions(), Store: store, Reporter: rep, Logger: discardLogger()})
	require.NoError(t, err, "interruption is a normal stop")

	require.Len(t, store.saves, 1, "exactly one final save")
	cp := store.last(t)
	assert.Equal(t, 200, cp.LastTarget)
	assert.GreaterOrEqual(t, cp.Cache.Last(), 200)
	assert.Equal(t, 200, rep.found[len(rep.found)-1])
}

func TestRunCancelledBeforeStart(t *testing.T) {
	store := &memStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &recordingReporter{}
	require.NoError(t, Run(ctx, RunConfig{Options: testOptions(), Store: store, Reporter: rep, Logger: discardLogger()}))
	assert.Empty(t, rep.found)
	require.Len(t, store.saves, 1)
	assert.Zero(t, store.last(t).LastTarget)
}

func TestRunNoPairStops(t *testing.T) {
	// an odd resume point makes the next target odd, and 11 has no pair
	c := NewPrimeCache()
	c.ExtendTo(11)
	store := &memStore{cp: Checkpoint{LastTarget: 9, Cache: c}}
	rep := &recordingReporter{}

	err := Run(context.Background(), RunConfig{Options: testOptions(), Store: store, Reporter: rep, Logger: discardLogger()})
	require.ErrorIs(t, err, ErrNoPair)
	assert.Contains(t, err.Error(), "target 11")
	assert.Equal(t, []int{11}, rep.notFound)
	assert.Empty(t, rep.found)

	// the failed target is not recorded as resolved
	assert.Equal(t, 9, store.last(t).LastTarget)
}

func TestRunCheckpointCadence(t *testing.T) {
	store := &memStore{}
	opts := testOptions()
	opts.UpperBound = 20
	opts.CheckpointEvery = 2

	require.NoError(t, Run(context.Background(), RunConfig{Options: opts, Store: store, Reporter: &recordingReporter{}, Logger: discardLogger()}))

	var targets []int
	for _, cp := range store.saves {
		targets = append(targets, cp.LastTarget)
	}
	// 4..20 is nine targets: checkpoints after 6, 10, 14, 18, then the final save
	assert.Equal(t, []int{6, 10, 14, 18, 20}, targets)
}

func TestRunFinalSaveErrorIsReturned(t *testing.T) {
	diskFull := errors.New("no space left on device")
	store := &memStore{saveErr: diskFull}
	opts := testOptions()
	opts.UpperBound = 10

	err := Run(context.Background(), RunConfig{Options: opts, Store: store, Reporter: &recordingReporter{}, Logger: discardLogger()})
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "final save")
}

func TestRunCheckpointErrorStopsSearch(t *testing.T) {
	diskFull := errors.New("no space left on device")
	store := &memStore{saveErr: diskFull}
	opts := testOptions()
	opts.CheckpointEvery = 5
	rep := &recordingReporter{}

	err := Run(context.Background(), RunConfig{Options: opts, Store: store, Reporter: rep, Logger: discardLogger()})
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "checkpoint at 12")
	assert.Len(t, rep.found, 5)
}

func TestRunNoPairAndFailedSave(t *testing.T) {
	c := NewPrimeCache()
	c.ExtendTo(11)
	diskFull := errors.New("no space left on device")
	store := &memStore{cp: Checkpoint{LastTarget: 9, Cache: c}, saveErr: diskFull}

	err := Run(context.Background(), RunConfig{Options: testOptions(), Store: store, Reporter: &recordingReporter{}, Logger: discardLogger()})
	require.ErrorIs(t, err, ErrNoPair)
	require.ErrorIs(t, err, diskFull)
}

func TestRunLoadError(t *testing.T) {
	denied := errors.New("permission denied")
	store := &memStore{loadErr: denied}

	err := Run(context.Background(), RunConfig{Options: testOptions(), Store: store, Reporter: &recordingReporter{}, Logger: discardLogger()})
	require.ErrorIs(t, err, denied)
	assert.Empty(t, store.saves)
}

func TestRunVerifyOnLoad(t *testing.T) {
	gappy, err := NewPrimeCacheFrom([]int{2, 3, 5, 11, 13})
	require.NoError(t, err)
	store := &memStore{cp: Checkpoint{LastTarget: 10, Cache: gappy}}
	opts := testOptions()
	opts.UpperBound = 20
	opts.VerifyOnLoad = true
	rep := &recordingReporter{}

	require.NoError(t, Run(context.Background(), RunConfig{Options: opts, Store: store, Reporter: rep, Logger: discardLogger()}))
	assert.Equal(t, 4, rep.found[0], "rejected state restarts the search")
	assert.Equal(t, sieve(23), store.last(t).Cache.Primes())
}

func TestRunRequiresCollaborators(t *testing.T) {
	ctx := context.Background()
	require.Error(t, Run(ctx, RunConfig{Reporter: &recordingReporter{}}))
	require.Error(t, Run(ctx, RunConfig{Store: &memStore{}}))
}

func TestSummaryGroupsDigits(t *testing.T) {
	c := NewPrimeCache()
	c.ExtendTo(20_000)
	s := NewSearcher(c)
	got := summary(s, Checkpoint{LastTarget: 19_998, Cache: c})
	assert.Contains(t, got, "saved 2,263 primes")
	assert.Contains(t, got, "last 19,998")
}
