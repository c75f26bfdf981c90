// Package combat runs turn-based encounters between teams of actors.
//
// A session computes its turn order once, then cycles through it: each turn
// ticks the acting actor's status effects, skips the actor if it cannot act,
// and otherwise either waits for Submit (controlled actors) or resolves an
// AI decision on the spot. The session ends when a team is wiped out, when a
// flee succeeds, or when Abort is called.
package combat

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/engine/status"
	"github.com/nathoo/eldoria/logger"
	"github.com/nathoo/eldoria/types"
)

var (
	// ErrInvalidEncounter is returned by Start for malformed team compositions.
	ErrInvalidEncounter = errors.New("invalid encounter")
	// ErrIllegalAction is returned for actions submitted out of turn or
	// without the resources to pay for them.
	ErrIllegalAction = errors.New("illegal action")
	// ErrNotActive is returned when no session is running.
	ErrNotActive = errors.New("no combat in progress")
)

// Phase is the position of the session in its turn cycle.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseTurnStart      Phase = "turn_start"
	PhaseAwaitingAction Phase = "awaiting_action"
	PhaseResolving      Phase = "resolving"
	PhaseTurnEnd        Phase = "turn_end"
)

// Random is the dice source used for spreads, crits, flee and loot.
type Random interface {
	Float64() float64
	Roll(sides int) int
}

// Rewarder receives persistent payouts after a victory.
type Rewarder interface {
	AwardCombat(actorID string, exp, gold int)
	AwardLoot(actorID, itemID string)
}

// ProgressReporter receives "defeated:<kind>" events after a victory.
type ProgressReporter interface {
	Report(event string)
}

// Hooks are the collaborators a session pays out to. Either may be nil.
type Hooks struct {
	Rewards  Rewarder
	Progress ProgressReporter
}

// Options tunes an Engine. Zero values take the defaults.
type Options struct {
	ComboWindow time.Duration // idle time that resets the combo, default 3s
	MaxCombo    int           // combo cap, default 10
	MaxRounds   int           // round limit for sessions with no living controlled actor, default 100
	Now         func() time.Time
	Logger      logrus.FieldLogger
}

const (
	defaultComboWindow = 3 * time.Second
	defaultMaxCombo    = 10
	defaultMaxRounds   = 100
)

// Engine owns at most one session at a time.
type Engine struct {
	defs *state.Defs
	rng  Random
	bus  *events.Bus
	opts Options
	log  logrus.FieldLogger

	session *session
	last    *Outcome
}

type session struct {
	id           string
	participants []*actor.Actor
	order        []*actor.Actor
	index        int
	round        int
	phase        Phase
	ledger       *status.Ledger
	combo        int
	lastHit      time.Time
	hooks        Hooks
	log          logrus.FieldLogger
}

// New creates an idle combat engine.
func New(defs *state.Defs, rng Random, bus *events.Bus, opts Options) *Engine {
	if opts.ComboWindow <= 0 {
		opts.ComboWindow = defaultComboWindow
	}
	if opts.MaxCombo <= 0 {
		opts.MaxCombo = defaultMaxCombo
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = defaultMaxRounds
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		defs: defs,
		rng:  rng,
		bus:  bus,
		opts: opts,
		log:  logger.OrDiscard(opts.Logger),
	}
}

// Start opens a session. Turn order is speed descending, ties in
// participant order, and never changes afterwards. AI turns up to the first
// controlled actor resolve before Start returns.
func (e *Engine) Start(participants []*actor.Actor, hooks Hooks) error {
	if e.session != nil {
		return fmt.Errorf("%w: combat already in progress", ErrIllegalAction)
	}
	if err := validateParticipants(participants); err != nil {
		return err
	}

	order := slices.Clone(participants)
	slices.SortStableFunc(order, func(a, b *actor.Actor) int {
		return cmp.Compare(b.Stat(actor.Speed), a.Stat(actor.Speed))
	})

	id := uuid.NewString()
	s := &session{
		id:           id,
		participants: slices.Clone(participants),
		order:        order,
		round:        1,
		phase:        PhaseTurnStart,
		ledger:       status.NewLedger(),
		hooks:        hooks,
		log:          e.log.WithField("session", id),
	}
	e.session = s
	e.last = nil

	ids := make([]string, len(order))
	for i, a := range order {
		ids[i] = a.ID
	}
	s.log.WithField("order", ids).Info("combat started")
	e.bus.Emit(types.Event{
		Type: types.EventCombatStart,
		Data: map[string]any{"session": id, "order": ids},
	})

	e.run()
	return nil
}

func validateParticipants(participants []*actor.Actor) error {
	if len(participants) < 2 {
		return fmt.Errorf("%w: need at least two participants", ErrInvalidEncounter)
	}
	seen := make(map[string]bool, len(participants))
	alive := make(map[types.Team]bool)
	for _, a := range participants {
		if a == nil {
			return fmt.Errorf("%w: nil participant", ErrInvalidEncounter)
		}
		if a.ID == "" || seen[a.ID] {
			return fmt.Errorf("%w: duplicate or empty actor id %q", ErrInvalidEncounter, a.ID)
		}
		seen[a.ID] = true
		if a.IsAlive() {
			alive[a.Team] = true
		}
	}
	if len(alive) < 2 {
		return fmt.Errorf("%w: fewer than two teams have living actors", ErrInvalidEncounter)
	}
	return nil
}

// Submit resolves the waiting controlled actor's action, then runs AI turns
// until the next controlled turn or the end of the session. A rejected
// action leaves the session exactly as it was.
func (e *Engine) Submit(act Action, targetID string) error {
	s := e.session
	if s == nil {
		return ErrNotActive
	}
	if s.phase != PhaseAwaitingAction {
		return fmt.Errorf("%w: not waiting for input", ErrIllegalAction)
	}

	cur := s.order[s.index]
	p, err := e.prepare(cur, act, targetID)
	if err != nil {
		s.log.WithFields(logrus.Fields{"actor": cur.ID, "action": Describe(act)}).WithError(err).Debug("action rejected")
		e.bus.Emit(types.Event{
			Type:  types.EventActionFailed,
			Actor: cur.ID,
			Name:  err.Error(),
		})
		return err
	}

	s.phase = PhaseResolving
	if e.execute(cur, p) || e.checkEnd() {
		return nil
	}
	e.endTurn(cur)
	e.run()
	return nil
}

// Abort ends the session as fled: no rewards, no progress.
func (e *Engine) Abort() error {
	if e.session == nil {
		return ErrNotActive
	}
	e.finish(ResultFled)
	return nil
}

// End clears the session without producing an outcome. Calling it while
// idle does nothing.
func (e *Engine) End() {
	if e.session == nil {
		return
	}
	e.session.log.Info("combat ended externally")
	e.teardown()
}

// Active reports whether a session is running.
func (e *Engine) Active() bool { return e.session != nil }

// Session returns the running session id, or "".
func (e *Engine) Session() string {
	if e.session == nil {
		return ""
	}
	return e.session.id
}

// Phase returns the current turn phase, PhaseIdle without a session.
func (e *Engine) Phase() Phase {
	if e.session == nil {
		return PhaseIdle
	}
	return e.session.phase
}

// Current returns the actor whose turn it is, or nil.
func (e *Engine) Current() *actor.Actor {
	if e.session == nil {
		return nil
	}
	return e.session.order[e.session.index]
}

// TurnOrder returns the fixed turn order as actor ids.
func (e *Engine) TurnOrder() []string {
	if e.session == nil {
		return nil
	}
	ids := make([]string, len(e.session.order))
	for i, a := range e.session.order {
		ids[i] = a.ID
	}
	return ids
}

// Participants returns the session's actors in the order they were given.
func (e *Engine) Participants() []*actor.Actor {
	if e.session == nil {
		return nil
	}
	return slices.Clone(e.session.participants)
}

// Participant finds a session actor by id.
func (e *Engine) Participant(id string) (*actor.Actor, bool) {
	if e.session == nil {
		return nil, false
	}
	for _, a := range e.session.participants {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Statuses returns a read-only snapshot of the effects on an actor.
func (e *Engine) Statuses(actorID string) []status.View {
	if e.session == nil {
		return nil
	}
	return e.session.ledger.Snapshot(actorID)
}

// Combo returns the current combo count, honouring the idle window.
func (e *Engine) Combo() int {
	if e.session == nil {
		return 0
	}
	return e.comboNow()
}

// Round returns the current round, starting at 1.
func (e *Engine) Round() int {
	if e.session == nil {
		return 0
	}
	return e.session.round
}

// LastOutcome returns the outcome of the most recently finished session.
func (e *Engine) LastOutcome() (Outcome, bool) {
	if e.last == nil {
		return Outcome{}, false
	}
	return *e.last, true
}

// run drives turns until a controlled actor must act or the session ends.
func (e *Engine) run() {
	for e.session != nil {
		s := e.session
		cur := s.order[s.index]

		if !cur.IsAlive() {
			e.nextTurn()
			continue
		}

		s.phase = PhaseTurnStart
		e.bus.Emit(types.Event{Type: types.EventTurnStart, Actor: cur.ID, Name: cur.Name})
		e.tickStatuses(cur)
		if e.checkEnd() {
			return
		}
		if !cur.CanAct() {
			s.log.WithField("actor", cur.ID).Debug("turn skipped")
			e.endTurn(cur)
			continue
		}

		if cur.Controlled {
			s.phase = PhaseAwaitingAction
			e.bus.Drain()
			return
		}

		s.phase = PhaseResolving
		act, targetID := e.decide(cur)
		p, err := e.prepare(cur, act, targetID)
		if err != nil {
			s.log.WithFields(logrus.Fields{"actor": cur.ID, "action": Describe(act)}).WithError(err).Warn("ai chose an illegal action, attacking instead")
			p, err = e.prepare(cur, Attack{}, "")
		}
		if err == nil {
			if e.execute(cur, p) || e.checkEnd() {
				return
			}
		}
		e.endTurn(cur)
	}
}

func (e *Engine) endTurn(cur *actor.Actor) {
	e.session.phase = PhaseTurnEnd
	e.bus.Emit(types.Event{Type: types.EventTurnEnd, Actor: cur.ID, Name: cur.Name})
	e.bus.Drain()
	e.nextTurn()
}

// nextTurn moves the pointer and counts rounds. Sessions with no living
// controlled actor stop after MaxRounds so AI-only fights always terminate.
func (e *Engine) nextTurn() {
	s := e.session
	s.index = (s.index + 1) % len(s.order)
	if s.index != 0 {
		return
	}
	if s.round >= e.opts.MaxRounds && !e.hasLivingController() {
		s.log.WithField("rounds", s.round).Warn("round limit reached, ending in stalemate")
		e.finish(ResultStalemate)
		return
	}
	s.round++
}

func (e *Engine) hasLivingController() bool {
	for _, a := range e.session.participants {
		if a.Controlled && a.IsAlive() {
			return true
		}
	}
	return false
}

func (e *Engine) tickStatuses(cur *actor.Actor) {
	s := e.session
	for _, t := range s.ledger.Tick(cur) {
		switch t.Category {
		case types.CategoryDamageOverTime:
			// hp before this tick was HP()+Amount.
			e.emitDamage("", cur, t.Amount, t.Name, map[string]any{"status": t.StatusID}, cur.HP()+t.Amount > 0)
		case types.CategoryHealOverTime:
			e.bus.Emit(types.Event{
				Type:   types.EventHeal,
				Target: cur.ID,
				Amount: t.Amount,
				Name:   t.Name,
				Data:   map[string]any{"status": t.StatusID},
			})
		}
		if t.Expired {
			e.bus.Emit(types.Event{
				Type:   types.EventStatusExpired,
				Target: cur.ID,
				Name:   t.Name,
				Data:   map[string]any{"status": t.StatusID},
			})
		}
	}
}

// emitDamage reports applied damage and, if it was the killing blow, the
// defeat. wasAlive is the target's state before the damage.
func (e *Engine) emitDamage(sourceID string, target *actor.Actor, amount int, name string, data map[string]any, wasAlive bool) {
	e.bus.Emit(types.Event{
		Type:   types.EventDamage,
		Actor:  sourceID,
		Target: target.ID,
		Amount: amount,
		Name:   name,
		Data:   data,
	})
	if wasAlive && !target.IsAlive() {
		e.session.log.WithField("actor", target.ID).Debug("defeated")
		e.bus.Emit(types.Event{Type: types.EventDefeated, Actor: sourceID, Target: target.ID, Name: target.Name})
	}
}

func (e *Engine) comboNow() int {
	s := e.session
	if s.combo > 0 && e.opts.Now().Sub(s.lastHit) >= e.opts.ComboWindow {
		s.combo = 0
	}
	return s.combo
}

func (e *Engine) bumpCombo() {
	s := e.session
	s.combo = min(e.comboNow()+1, e.opts.MaxCombo)
	s.lastHit = e.opts.Now()
}

// teardown drops the session. Clearing the ledger reverts every stat
// modifier so surviving actors keep their pre-combat stats.
func (e *Engine) teardown() {
	e.session.ledger.Clear()
	e.session = nil
}
