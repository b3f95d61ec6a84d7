package store

import (
	"context"
	stderrors "errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	storemock "github.com/KirkDiggler/rpg-sheets/internal/store/mock"
)

type StoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	history *History
	store   *Store
	notices int
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()

	var err error
	s.history, err = NewHistory("/characters/brannoc")
	s.Require().NoError(err)

	s.store, err = New(&Config{Backend: s.history})
	s.Require().NoError(err)

	s.notices = 0
	s.store.Subscribe(func() { s.notices++ })
}

func (s *StoreTestSuite) TestSetPushesOneEntryPerWrite() {
	hp := NewValue("hit-points", OptionalIntCodec())
	value := 100

	s.Require().NoError(hp.Set(s.ctx, s.store, &value))
	s.Equal("/characters/brannoc?hit-points=100", s.history.Location())

	s.Require().NoError(hp.Set(s.ctx, s.store, nil))
	s.Equal("/characters/brannoc", s.history.Location())

	s.Equal(3, s.history.Len())
	s.Equal(2, s.notices)
}

func (s *StoreTestSuite) TestDefaultIsNeverWritten() {
	spent := NewValue("hit-points-spent", IntCodec(0))

	s.Require().NoError(spent.Set(s.ctx, s.store, 7))
	s.Equal("hit-points-spent=7", s.history.RawQuery())

	s.Require().NoError(spent.Set(s.ctx, s.store, 0))
	s.Empty(s.history.RawQuery())

	got, err := spent.Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal(0, got)
}

func (s *StoreTestSuite) TestChannelDivinityCounter() {
	s.history.ReplaceState(url.Values{"channel-divinity-used": {"2"}})
	used := NewValue("channel-divinity-used", IntCodec(0))

	got, err := used.Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal(2, got)

	s.Require().NoError(used.Update(s.ctx, s.store, func(n int) int { return n + 1 }))
	s.Equal("channel-divinity-used=3", s.history.RawQuery())

	s.Require().NoError(used.Set(s.ctx, s.store, 0))
	s.Empty(s.history.RawQuery())
}

func (s *StoreTestSuite) TestBatchCoalescesWrites() {
	spent := NewValue("hit-points-spent", IntCodec(0))
	slots := NewValue("spell-slots-spent", SlotsCodec())
	pool := NewValue("hit-dice-spent", DiceCodec())

	err := s.store.Batch(s.ctx, func(ctx context.Context) error {
		for i := 1; i <= 5; i++ {
			if err := spent.Set(ctx, s.store, i); err != nil {
				return err
			}
		}
		if err := slots.Set(ctx, s.store, []int{1, 0, 1}); err != nil {
			return err
		}

		// reads inside the batch see pending writes
		got, err := spent.Get(ctx, s.store)
		s.Require().NoError(err)
		s.Equal(5, got)

		return pool.Set(ctx, s.store, dice.MustParse("2d10"))
	})
	s.Require().NoError(err)

	s.Equal(2, s.history.Len())
	s.Equal(1, s.notices)
	s.Equal("hit-dice-spent=2d10&hit-points-spent=5&spell-slots-spent=1.0.1", s.history.RawQuery())
}

func (s *StoreTestSuite) TestNestedBatchesFlushOnceAtOuter() {
	spent := NewValue("hit-points-spent", IntCodec(0))
	used := NewValue("luck-points-used", IntCodec(0))

	err := s.store.Batch(s.ctx, func(ctx context.Context) error {
		if err := spent.Set(ctx, s.store, 4); err != nil {
			return err
		}
		err := s.store.Batch(ctx, func(ctx context.Context) error {
			return used.Set(ctx, s.store, 1)
		})
		s.Equal(1, s.history.Len(), "inner batch must not commit")
		return err
	})
	s.Require().NoError(err)

	s.Equal(2, s.history.Len())
	s.Equal(1, s.notices)
	s.Equal("hit-points-spent=4&luck-points-used=1", s.history.RawQuery())
}

func (s *StoreTestSuite) TestBatchErrorDiscardsWrites() {
	spent := NewValue("hit-points-spent", IntCodec(0))
	boom := stderrors.New("boom")

	err := s.store.Batch(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(spent.Set(ctx, s.store, 9))
		return boom
	})
	s.ErrorIs(err, boom)

	s.Equal(1, s.history.Len())
	s.Equal(0, s.notices)
}

func (s *StoreTestSuite) TestBatchRecoversFromPanic() {
	spent := NewValue("hit-points-spent", IntCodec(0))

	s.Panics(func() {
		_ = s.store.Batch(s.ctx, func(ctx context.Context) error {
			s.Require().NoError(spent.Set(ctx, s.store, 3))
			panic("boom")
		})
	})

	s.Require().NoError(spent.Set(s.ctx, s.store, 5))
	s.Equal("/characters/brannoc?hit-points-spent=5", s.history.Location())
	s.Equal(2, s.history.Len())
}

func (s *StoreTestSuite) TestUnchangedBatchDoesNotCommit() {
	s.Require().NoError(s.store.ResetKeys(s.ctx))
	s.Require().NoError(s.store.ResetKeys(s.ctx, "hit-points-spent"))

	err := s.store.Batch(s.ctx, func(ctx context.Context) error {
		if err := s.store.SetRaw(ctx, "roll", "average", true); err != nil {
			return err
		}
		return s.store.SetRaw(ctx, "roll", "", false)
	})
	s.Require().NoError(err)

	s.Equal(1, s.history.Len())
	s.Equal(0, s.notices)
}

func (s *StoreTestSuite) TestResetKeysIsOneNavigation() {
	s.history.ReplaceState(url.Values{
		"hit-points-spent":      {"12"},
		"channel-divinity-used": {"1"},
		"roll":                  {"average"},
	})
	s.Equal(1, s.notices, "replaceState is observable")
	s.notices = 0

	err := s.store.ResetKeys(s.ctx, "hit-points-spent", "channel-divinity-used")
	s.Require().NoError(err)

	s.Equal("roll=average", s.history.RawQuery())
	s.Equal(2, s.history.Len())
	s.Equal(1, s.notices)
}

func (s *StoreTestSuite) TestPopStateNotifiesAndReadsFollowURL() {
	spent := NewValue("hit-points-spent", IntCodec(0))
	s.Require().NoError(spent.Set(s.ctx, s.store, 3))
	s.Require().NoError(spent.Set(s.ctx, s.store, 8))

	s.Require().True(s.history.Back())
	got, err := spent.Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal(3, got)
	s.Equal(3, s.notices)
}

func (s *StoreTestSuite) TestListenersRunInSubscriptionOrder() {
	var order []string
	s.store.Subscribe(func() { order = append(order, "first") })
	unsubscribe := s.store.Subscribe(func() { order = append(order, "second") })
	s.store.Subscribe(func() { order = append(order, "third") })

	s.Require().NoError(s.store.SetRaw(s.ctx, "roll", "average", true))
	s.Equal([]string{"first", "second", "third"}, order)

	unsubscribe()
	s.Require().NoError(s.store.SetRaw(s.ctx, "roll", "", false))
	s.Equal([]string{"first", "second", "third", "first", "third"}, order)
}

func (s *StoreTestSuite) TestMalformedValuesDecodeToDefault() {
	s.history.ReplaceState(url.Values{
		"hit-points-spent":  {"lots"},
		"hit-points":        {"1e3"},
		"roll":              {"loaded"},
		"spell-slots-spent": {"1..2"},
		"hit-dice-spent":    {"2d"},
	})

	spent, err := NewValue("hit-points-spent", IntCodec(0)).Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal(0, spent)

	hp, err := NewValue("hit-points", OptionalIntCodec()).Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Nil(hp)

	mode, err := NewValue("roll", EnumCodec("dice", "dice", "average")).Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal("dice", mode)

	slots, err := NewValue("spell-slots-spent", SlotsCodec()).Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.Nil(slots)

	pool, err := NewValue("hit-dice-spent", DiceCodec()).Get(s.ctx, s.store)
	s.Require().NoError(err)
	s.True(pool.IsZero())
}

func (s *StoreTestSuite) TestCloseStopsNotifications() {
	s.store.Close()
	s.Require().NoError(s.store.SetRaw(s.ctx, "roll", "average", true))
	s.Equal(0, s.notices)
}

// sharedHistory is a History that several writers commit to. write runs
// once, right before the next conditional commit, as another writer would.
type sharedHistory struct {
	*History
	write     func()
	conflicts int
}

func (b *sharedHistory) CommitIf(ctx context.Context, base, values url.Values) error {
	if w := b.write; w != nil {
		b.write = nil
		w()
	}
	if b.RawQuery() != base.Encode() {
		b.conflicts++
		return ErrConflict
	}
	return b.Commit(ctx, values)
}

func TestBatch_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	history, err := NewHistory("/characters/brannoc")
	require.NoError(t, err)
	backend := &sharedHistory{History: history, write: func() {
		history.PushState(url.Values{"hit-points-spent": {"9"}})
	}}

	s, err := New(&Config{Backend: backend})
	require.NoError(t, err)

	used := NewValue("luck-points-used", IntCodec(0))
	require.NoError(t, used.Update(ctx, s, func(n int) int { return n + 1 }))

	assert.Equal(t, 1, backend.conflicts)
	assert.Equal(t, "hit-points-spent=9&luck-points-used=1", history.RawQuery())
	assert.Equal(t, 3, history.Len())
}

func TestBatch_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	history, err := NewHistory("/characters/brannoc")
	require.NoError(t, err)
	backend := &sharedHistory{History: history}
	n := 0
	var interfere func()
	interfere = func() {
		n++
		history.PushState(url.Values{"hit-points-spent": {strconv.Itoa(n)}})
		backend.write = interfere
	}
	backend.write = interfere

	s, err := New(&Config{Backend: backend})
	require.NoError(t, err)

	err = s.SetRaw(ctx, "roll", "average", true)
	assert.True(t, errors.IsFailedPrecondition(err))
	assert.Equal(t, maxAttempts, backend.conflicts)
	assert.Empty(t, history.Query().Get("roll"))
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = New(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend")
}

func TestBatch_CommitsOnceThroughBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	backend := storemock.NewMockBackend(ctrl)
	backend.EXPECT().Load(ctx).Return(url.Values{"roll": {"average"}}, nil)
	backend.EXPECT().
		Commit(ctx, url.Values{
			"roll":             {"average"},
			"hit-points-spent": {"2"},
			"luck-points-used": {"1"},
		}).
		Return(nil)

	s, err := New(&Config{Backend: backend})
	require.NoError(t, err)

	err = s.Batch(ctx, func(ctx context.Context) error {
		if err := s.SetRaw(ctx, "hit-points-spent", "2", true); err != nil {
			return err
		}
		return s.SetRaw(ctx, "luck-points-used", "1", true)
	})
	require.NoError(t, err)
}

func TestSetRaw_BackendErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	backend := storemock.NewMockBackend(ctrl)

	s, err := New(&Config{Backend: backend})
	require.NoError(t, err)

	t.Run("load failure", func(t *testing.T) {
		backend.EXPECT().Load(ctx).Return(nil, errors.Unavailable("redis down"))

		err := s.SetRaw(ctx, "roll", "average", true)
		require.Error(t, err)
		assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
	})

	t.Run("commit failure", func(t *testing.T) {
		backend.EXPECT().Load(ctx).Return(url.Values{}, nil)
		backend.EXPECT().Commit(ctx, url.Values{"roll": {"average"}}).Return(errors.Unavailable("redis down"))

		err := s.SetRaw(ctx, "roll", "average", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit query")
	})
}
