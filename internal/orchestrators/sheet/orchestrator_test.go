package sheet

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/repositories/roster"
	rostermock "github.com/KirkDiggler/rpg-sheets/internal/repositories/roster/mock"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
	"github.com/KirkDiggler/rpg-sheets/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx     context.Context
	roller  *testutils.FixedRoller
	history *store.History
	store   *store.Store
	orch    Service
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = &testutils.FixedRoller{Face: 4}

	orch, err := NewOrchestrator(&Config{
		Roster: roster.NewDefault(),
		Roller: s.roller,
	})
	s.Require().NoError(err)
	s.orch = orch

	s.seed("")
}

func (s *OrchestratorTestSuite) seed(query string) {
	var err error
	s.history, err = store.NewHistory("/characters/brannoc?" + query)
	s.Require().NoError(err)
	s.store, err = store.New(&store.Config{Backend: s.history})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) apply(input *ApplyActionInput) *ApplyActionOutput {
	input.Store = s.store
	if input.CharacterID == "" {
		input.CharacterID = "brannoc"
	}
	out, err := s.orch.ApplyAction(s.ctx, input)
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) TestGetSheetDefaults() {
	out, err := s.orch.GetSheet(s.ctx, &GetSheetInput{CharacterID: "brannoc", Store: s.store})
	s.Require().NoError(err)

	sheet := out.Sheet
	s.Equal(51, sheet.MaxHitPoints)
	s.Equal(51, sheet.HitPoints)
	s.False(sheet.MaxHitPointsOverridden)
	s.Equal("5d10", sheet.HitDiceRemaining.String())
	s.True(sheet.HitDiceSpent.IsZero())
	s.Equal([]SlotState{{Level: 1, Max: 4}, {Level: 2, Max: 2}}, sheet.SpellSlots)
	s.Equal(RollModeDice, sheet.RollMode)
	s.Require().Len(sheet.Resources, 2)
	s.Equal(25, sheet.Resources[1].Remaining())
}

func (s *OrchestratorTestSuite) TestGetSheetReadsQuery() {
	s.seed("hit-points=60&hit-points-spent=12&hit-dice-spent=2d10&spell-slots-spent=1.2&lay-on-hands=10&roll=average")

	out, err := s.orch.GetSheet(s.ctx, &GetSheetInput{CharacterID: "brannoc", Store: s.store})
	s.Require().NoError(err)

	sheet := out.Sheet
	s.Equal(60, sheet.MaxHitPoints)
	s.True(sheet.MaxHitPointsOverridden)
	s.Equal(48, sheet.HitPoints)
	s.Equal("3d10", sheet.HitDiceRemaining.String())
	s.Equal(3, sheet.SpellSlots[0].Remaining())
	s.Equal(0, sheet.SpellSlots[1].Remaining())
	s.Equal(15, sheet.Resources[1].Remaining())
	s.Equal(RollModeAverage, sheet.RollMode)
}

func (s *OrchestratorTestSuite) TestGetSheetClampsHandEditedQuery() {
	s.seed("hit-points-spent=500&hit-dice-spent=9d10%2B2d6%2B3&spell-slots-spent=9.9.9&channel-divinity-used=7")

	out, err := s.orch.GetSheet(s.ctx, &GetSheetInput{CharacterID: "brannoc", Store: s.store})
	s.Require().NoError(err)

	sheet := out.Sheet
	s.Equal(0, sheet.HitPoints)
	s.Equal("5d10", sheet.HitDiceSpent.String())
	s.True(sheet.HitDiceRemaining.IsZero())
	s.Equal(4, sheet.SpellSlots[0].Spent)
	s.Equal(1, sheet.Resources[0].Used)
}

func (s *OrchestratorTestSuite) TestDamageAndHeal() {
	out := s.apply(&ApplyActionInput{Action: ActionDamage, Amount: 20})
	s.Equal(31, out.Sheet.HitPoints)
	s.Equal("hit-points-spent=20", s.history.RawQuery())

	out = s.apply(&ApplyActionInput{Action: ActionDamage, Amount: 100})
	s.Equal(0, out.Sheet.HitPoints)

	out = s.apply(&ApplyActionInput{Action: ActionHeal, Amount: 500})
	s.Equal(51, out.Sheet.HitPoints)
	s.Empty(s.history.RawQuery(), "full health is the default")
	s.Equal(4, s.history.Len())
}

func (s *OrchestratorTestSuite) TestMaxHitPointsOverride() {
	out := s.apply(&ApplyActionInput{Action: ActionSetMaxHP, Amount: 100})
	s.Equal("hit-points=100", s.history.RawQuery())
	s.Equal(100, out.Sheet.HitPoints)

	out = s.apply(&ApplyActionInput{Action: ActionClearMaxHP})
	s.Empty(s.history.RawQuery())
	s.Equal(51, out.Sheet.MaxHitPoints)
}

func (s *OrchestratorTestSuite) TestToggleCheckboxRow() {
	s.seed("luck-points-used=1")

	// ilsa has three luck points
	toggle := func(index int) int {
		out := s.apply(&ApplyActionInput{
			CharacterID: "ilsa",
			Action:      ActionToggle,
			Resource:    dnd5e.ResourceLuckPoints,
			Index:       index,
		})
		for _, r := range out.Sheet.Resources {
			if r.ID == dnd5e.ResourceLuckPoints {
				return r.Used
			}
		}
		s.FailNow("luck points missing")
		return 0
	}

	s.Equal(3, toggle(2))
	s.Equal("luck-points-used=3", s.history.RawQuery())
	s.Equal(1, toggle(1))
	s.Equal(0, toggle(0))
	s.Empty(s.history.RawQuery())
}

func (s *OrchestratorTestSuite) TestToggleRejectsPool() {
	_, err := s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "brannoc",
		Store:       s.store,
		Action:      ActionToggle,
		Resource:    dnd5e.ResourceLayOnHands,
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(1, s.history.Len())
}

func (s *OrchestratorTestSuite) TestLayOnHandsPool() {
	out := s.apply(&ApplyActionInput{Action: ActionIncrement, Resource: dnd5e.ResourceLayOnHands, Amount: 7})
	s.Equal(18, out.Sheet.Resources[1].Remaining())

	out = s.apply(&ApplyActionInput{Action: ActionIncrement, Resource: dnd5e.ResourceLayOnHands, Amount: 40})
	s.Equal(0, out.Sheet.Resources[1].Remaining())
	s.Equal("lay-on-hands=25", s.history.RawQuery())

	out = s.apply(&ApplyActionInput{Action: ActionDecrement, Resource: dnd5e.ResourceLayOnHands, Amount: 5})
	s.Equal(5, out.Sheet.Resources[1].Remaining())
}

func (s *OrchestratorTestSuite) TestUnknownResource() {
	_, err := s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "tamsin",
		Store:       s.store,
		Action:      ActionIncrement,
		Resource:    dnd5e.ResourceChannelDivinity,
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(dnd5e.ResourceChannelDivinity, errors.GetMeta(err)["resource"])
}

func (s *OrchestratorTestSuite) TestSpellSlots() {
	s.apply(&ApplyActionInput{Action: ActionSpendSlot, Level: 2})
	s.apply(&ApplyActionInput{Action: ActionSpendSlot, Level: 2})
	s.Equal("spell-slots-spent=0.2", s.history.RawQuery())

	_, err := s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "brannoc", Store: s.store, Action: ActionSpendSlot, Level: 2,
	})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "brannoc", Store: s.store, Action: ActionSpendSlot, Level: 3,
	})
	s.True(errors.IsFailedPrecondition(err))

	s.apply(&ApplyActionInput{Action: ActionRestoreSlot, Level: 2})
	s.apply(&ApplyActionInput{Action: ActionRestoreSlot, Level: 2})
	s.apply(&ApplyActionInput{Action: ActionRestoreSlot, Level: 2})
	s.Empty(s.history.RawQuery())
}

func (s *OrchestratorTestSuite) TestSpendHitDie() {
	s.seed("hit-points-spent=20")

	out := s.apply(&ApplyActionInput{Action: ActionSpendHitDie, Faces: 10})
	s.Require().NotNil(out.Roll)
	// rolled 4 + CON 2
	s.Equal(6, out.Healed)
	s.Equal(14, out.Sheet.HitPointsSpent)
	s.Equal("4d10", out.Sheet.HitDiceRemaining.String())
	s.Equal("hit-dice-spent=d10&hit-points-spent=14", s.history.RawQuery())
	s.Equal(2, s.history.Len(), "one action is one history entry")

	_, err := s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "brannoc", Store: s.store, Action: ActionSpendHitDie, Faces: 8,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestSpendHitDieAverageMode() {
	s.seed("roll=average&hit-points-spent=20")

	out := s.apply(&ApplyActionInput{Action: ActionSpendHitDie, Faces: 10})
	s.Nil(out.Roll)
	// (10+1)/2 + CON 2
	s.Equal(7, out.Healed)
	s.Equal(13, out.Sheet.HitPointsSpent)
}

func (s *OrchestratorTestSuite) TestRests() {
	s.seed("channel-divinity-used=1&lay-on-hands=10&hit-points-spent=5&spell-slots-spent=2&hit-dice-spent=d10&hit-points=70&roll=average")

	s.apply(&ApplyActionInput{Action: ActionShortRest})
	s.Equal("hit-dice-spent=d10&hit-points=70&hit-points-spent=5&lay-on-hands=10&roll=average&spell-slots-spent=2",
		s.history.RawQuery())

	s.apply(&ApplyActionInput{Action: ActionLongRest})
	s.Equal("hit-points=70&roll=average", s.history.RawQuery())
	s.Equal(3, s.history.Len())
}

func (s *OrchestratorTestSuite) TestSetRollMode() {
	s.apply(&ApplyActionInput{Action: ActionSetRollMode, RollMode: RollModeAverage})
	s.Equal("roll=average", s.history.RawQuery())

	s.apply(&ApplyActionInput{Action: ActionSetRollMode, RollMode: RollModeDice})
	s.Empty(s.history.RawQuery())

	_, err := s.orch.ApplyAction(s.ctx, &ApplyActionInput{
		CharacterID: "brannoc", Store: s.store, Action: ActionSetRollMode, RollMode: "loaded",
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestValidation() {
	tests := []struct {
		name  string
		input *ApplyActionInput
		field string
	}{
		{name: "damage needs amount", input: &ApplyActionInput{Action: ActionDamage}, field: "Amount"},
		{name: "toggle needs resource", input: &ApplyActionInput{Action: ActionToggle}, field: "Resource"},
		{name: "slot level range", input: &ApplyActionInput{Action: ActionSpendSlot, Level: 10}, field: "Level"},
		{name: "hit die faces", input: &ApplyActionInput{Action: ActionSpendHitDie}, field: "Faces"},
		{name: "unknown action", input: &ApplyActionInput{Action: "dance"}, field: "Action"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.input.CharacterID = "brannoc"
			tt.input.Store = s.store
			_, err := s.orch.ApplyAction(s.ctx, tt.input)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tt.field)
		})
	}

	_, err := s.orch.GetSheet(s.ctx, &GetSheetInput{})
	s.Require().Error(err)
	s.Contains(err.Error(), "CharacterID")
	s.Contains(err.Error(), "Store")
}

func (s *OrchestratorTestSuite) TestUnknownCharacter() {
	_, err := s.orch.GetSheet(s.ctx, &GetSheetInput{CharacterID: "nobody", Store: s.store})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestRollDamage() {
	out, err := s.orch.RollDamage(s.ctx, &RollDamageInput{CharacterID: "brannoc", Store: s.store, AttackIndex: 1})
	s.Require().NoError(err)
	s.Equal("Warhammer + Divine Smite", out.Attack.Name)
	s.Equal("3d8+3", out.Damage.String())
	s.Require().NotNil(out.Roll)
	s.Equal(15, out.Total)

	out, err = s.orch.RollDamage(s.ctx, &RollDamageInput{CharacterID: "brannoc", Store: s.store, AttackIndex: 1, Crit: true})
	s.Require().NoError(err)
	s.Equal("6d8+3", out.Damage.String())
	s.Equal(27, out.Total)
}

func (s *OrchestratorTestSuite) TestRollDamageAverage() {
	s.seed("roll=average")

	out, err := s.orch.RollDamage(s.ctx, &RollDamageInput{CharacterID: "brannoc", Store: s.store, Crit: true})
	s.Require().NoError(err)
	s.Nil(out.Roll)
	s.Equal(RollModeAverage, out.Mode)
	// 2d8+3
	s.Equal(12, out.Total)
}

func (s *OrchestratorTestSuite) TestRollDamageOutOfRange() {
	_, err := s.orch.RollDamage(s.ctx, &RollDamageInput{CharacterID: "brannoc", Store: s.store, AttackIndex: 9})
	s.Require().Error(err)
	s.True(errors.IsOutOfRange(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestChannelDivinityCheckboxRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	cleric := &dnd5e.Character{
		ID:      "high-priest",
		Name:    "High Priest",
		Scores:  dnd5e.AbilityScores{dnd5e.Wisdom: 20},
		Classes: []dnd5e.ClassLevel{{Class: dnd5e.ClassCleric, Level: 18, HitDie: 8}},
		Traits:  []dnd5e.Trait{dnd5e.ChannelDivinity},
	}

	mockRoster := rostermock.NewMockRepository(ctrl)
	mockRoster.EXPECT().
		Get(gomock.Any(), roster.GetInput{ID: "high-priest"}).
		Return(&roster.GetOutput{Character: cleric}, nil).
		AnyTimes()

	orch, err := NewOrchestrator(&Config{Roster: mockRoster, Roller: &testutils.FixedRoller{Face: 1}})
	if err != nil {
		t.Fatal(err)
	}

	history, err := store.NewHistory("/characters/high-priest?channel-divinity-used=2")
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.New(&store.Config{Backend: history})
	if err != nil {
		t.Fatal(err)
	}

	used, err := ChannelDivinityUsed.Get(ctx, st)
	if err != nil || used != 2 {
		t.Fatalf("expected 2 uses, got %d (%v)", used, err)
	}

	steps := []struct {
		input *ApplyActionInput
		query url.Values
	}{
		{
			input: &ApplyActionInput{Action: ActionIncrement, Resource: dnd5e.ResourceChannelDivinity},
			query: url.Values{"channel-divinity-used": {"3"}},
		},
		{
			input: &ApplyActionInput{Action: ActionToggle, Resource: dnd5e.ResourceChannelDivinity, Index: 0},
			query: url.Values{},
		},
	}

	for _, step := range steps {
		step.input.CharacterID = "high-priest"
		step.input.Store = st
		if _, err := orch.ApplyAction(ctx, step.input); err != nil {
			t.Fatal(err)
		}
		if got := history.RawQuery(); got != step.query.Encode() {
			t.Errorf("query = %q, want %q", got, step.query.Encode())
		}
	}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := NewOrchestrator(&Config{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
