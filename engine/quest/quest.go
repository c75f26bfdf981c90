// Package quest tracks quest state: prerequisites, objective counters,
// completion with reward payout, failure, and auto-started follow-ups.
package quest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/logger"
	"github.com/nathoo/eldoria/types"
)

var (
	// ErrUnknownQuest is returned for ids that have no definition.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrUnknownObjective is returned for objective indexes out of range.
	ErrUnknownObjective = errors.New("unknown objective")
)

// Status is a quest's position in its lifecycle.
type Status string

const (
	NotStarted Status = "not_started"
	Active     Status = "active"
	Completed  Status = "completed"
	Failed     Status = "failed"
)

// World is the read-only view of player state that prerequisites check.
type World interface {
	Level() int
	ItemCount(itemID string) int
	Reputation(faction string) int
}

// Payer credits quest rewards. It is the only way the tracker touches
// player state.
type Payer interface {
	PayQuest(questID string, rewards []types.Reward)
}

// Objective is the live progress of one objective.
type Objective struct {
	Description string
	Required    int
	Current     int
	Completed   bool
}

// Options wires a Tracker to its collaborators.
type Options struct {
	World          World
	Payer          Payer
	Bus            *events.Bus
	Logger         logrus.FieldLogger
	AutoChainLimit int // max auto-starts per evaluation, default 32
}

const defaultAutoChainLimit = 32

// Tracker owns quest state. Definitions come from the immutable Defs.
type Tracker struct {
	defs  *state.Defs
	world World
	payer Payer
	bus   *events.Bus
	log   logrus.FieldLogger
	limit int

	status   map[string]Status
	progress map[string][]Objective
}

// New creates a tracker with every quest not started.
func New(defs *state.Defs, opts Options) *Tracker {
	if opts.AutoChainLimit <= 0 {
		opts.AutoChainLimit = defaultAutoChainLimit
	}
	if opts.World == nil {
		opts.World = noWorld{}
	}
	return &Tracker{
		defs:     defs,
		world:    opts.World,
		payer:    opts.Payer,
		bus:      opts.Bus,
		log:      logger.OrDiscard(opts.Logger),
		limit:    opts.AutoChainLimit,
		status:   map[string]Status{},
		progress: map[string][]Objective{},
	}
}

// StartQuest activates a quest. It returns false without error when the
// quest is already active or completed or its prerequisites do not hold.
// Failed quests may be started again.
func (t *Tracker) StartQuest(id string) (bool, error) {
	def, ok := t.defs.Quest(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	if !t.canStart(def) {
		return false, nil
	}
	t.activate(def)
	return true, nil
}

// CanStart reports whether StartQuest would succeed right now.
func (t *Tracker) CanStart(id string) bool {
	def, ok := t.defs.Quest(id)
	return ok && t.canStart(def)
}

func (t *Tracker) canStart(def types.QuestDef) bool {
	switch t.Status(def.ID) {
	case Active, Completed:
		return false
	}
	if def.Level > 0 && t.world.Level() < def.Level {
		return false
	}
	for _, p := range def.Prerequisites {
		if !t.holds(p) {
			return false
		}
	}
	return true
}

func (t *Tracker) holds(p types.Prerequisite) bool {
	switch p.Kind {
	case types.PrereqQuest:
		return t.status[p.QuestID] == Completed
	case types.PrereqLevel:
		return t.world.Level() >= p.Level
	case types.PrereqItem:
		return t.world.ItemCount(p.ItemID) >= max(p.Amount, 1)
	case types.PrereqReputation:
		return t.world.Reputation(p.Faction) >= p.Amount
	default:
		return false
	}
}

func (t *Tracker) activate(def types.QuestDef) {
	t.status[def.ID] = Active
	t.progress[def.ID] = newObjectives(def)

	t.log.WithField("quest", def.ID).Info("quest started")
	t.bus.Emit(types.Event{
		Type: types.EventQuestStarted,
		Name: def.Title,
		Data: map[string]any{"quest": def.ID},
	})
}

// ReportProgress adds amount to one objective. Inactive quests and finished
// objectives ignore it. The counter is clamped at the objective's required
// count, and the quest completes once every objective has.
func (t *Tracker) ReportProgress(id string, index, amount int) error {
	def, ok := t.defs.Quest(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	if index < 0 || index >= len(def.Objectives) {
		return fmt.Errorf("%w: %s has no objective %d", ErrUnknownObjective, id, index)
	}
	if t.status[id] != Active {
		return nil
	}
	t.advance(def, index, amount)
	return nil
}

// Report advances by one every active objective whose trigger matches
// event, e.g. "defeated:goblin".
func (t *Tracker) Report(event string) {
	if event == "" {
		return
	}
	for _, id := range t.defs.QuestOrder() {
		if t.status[id] != Active {
			continue
		}
		def, ok := t.defs.Quest(id)
		if !ok {
			continue
		}
		for i, o := range def.Objectives {
			if o.Trigger == event && t.status[id] == Active {
				t.advance(def, i, 1)
			}
		}
	}
}

func (t *Tracker) advance(def types.QuestDef, index, amount int) {
	if amount <= 0 {
		return
	}
	obj := &t.progress[def.ID][index]
	if obj.Completed {
		return
	}
	obj.Current = min(obj.Current+amount, obj.Required)
	obj.Completed = obj.Current >= obj.Required

	t.log.WithFields(logrus.Fields{
		"quest":     def.ID,
		"objective": index,
		"current":   obj.Current,
	}).Debug("quest progress")
	t.bus.Emit(types.Event{
		Type:   types.EventQuestProgress,
		Name:   obj.Description,
		Amount: obj.Current,
		Data: map[string]any{
			"quest":     def.ID,
			"objective": index,
			"required":  obj.Required,
		},
	})

	for _, o := range t.progress[def.ID] {
		if !o.Completed {
			return
		}
	}
	t.complete(def)
}

func (t *Tracker) complete(def types.QuestDef) {
	t.status[def.ID] = Completed
	t.log.WithField("quest", def.ID).Info("quest completed")
	t.bus.Emit(types.Event{
		Type: types.EventQuestCompleted,
		Name: def.Title,
		Data: map[string]any{"quest": def.ID},
	})
	if t.payer != nil && len(def.Rewards) > 0 {
		t.payer.PayQuest(def.ID, def.Rewards)
	}
	t.EvaluateAutoStart()
}

// FailQuest moves an active quest to failed. Nothing is paid and no
// follow-ups are evaluated. It returns false when the quest was not active.
func (t *Tracker) FailQuest(id string) (bool, error) {
	def, ok := t.defs.Quest(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	if t.status[id] != Active {
		return false, nil
	}
	t.status[id] = Failed
	t.log.WithField("quest", id).Info("quest failed")
	t.bus.Emit(types.Event{
		Type: types.EventQuestFailed,
		Name: def.Title,
		Data: map[string]any{"quest": id},
	})
	return true, nil
}

// EvaluateAutoStart starts every never-started auto-start quest whose
// prerequisites hold, repeating until nothing new starts. At most
// AutoChainLimit quests start per call. It returns the started ids.
func (t *Tracker) EvaluateAutoStart() []string {
	var started []string
	for {
		progressed := false
		for _, id := range t.defs.QuestOrder() {
			def, ok := t.defs.Quest(id)
			if !ok || !def.AutoStart || t.Status(id) != NotStarted || !t.canStart(def) {
				continue
			}
			if len(started) >= t.limit {
				t.log.WithField("limit", t.limit).Warn("auto-start chain limit reached")
				return started
			}
			t.activate(def)
			started = append(started, id)
			progressed = true
		}
		if !progressed {
			return started
		}
	}
}

// Status returns a quest's lifecycle state. Unknown ids report NotStarted.
func (t *Tracker) Status(id string) Status {
	if s, ok := t.status[id]; ok {
		return s
	}
	return NotStarted
}

// ActiveQuests returns active quest ids in definition order.
func (t *Tracker) ActiveQuests() []string { return t.withStatus(Active) }

// CompletedQuests returns completed quest ids in definition order.
func (t *Tracker) CompletedQuests() []string { return t.withStatus(Completed) }

// FailedQuests returns failed quest ids in definition order.
func (t *Tracker) FailedQuests() []string { return t.withStatus(Failed) }

func (t *Tracker) withStatus(want Status) []string {
	var ids []string
	for _, id := range t.defs.QuestOrder() {
		if t.status[id] == want {
			ids = append(ids, id)
		}
	}
	return ids
}

// Progress returns a copy of a quest's objective progress. Quests that were
// never started report zeroed counters.
func (t *Tracker) Progress(id string) ([]Objective, error) {
	def, ok := t.defs.Quest(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	if objs, ok := t.progress[id]; ok {
		return slices.Clone(objs), nil
	}
	return newObjectives(def), nil
}

// Reset forgets all quest state.
func (t *Tracker) Reset() {
	t.status = map[string]Status{}
	t.progress = map[string][]Objective{}
}

func newObjectives(def types.QuestDef) []Objective {
	objs := make([]Objective, len(def.Objectives))
	for i, o := range def.Objectives {
		objs[i] = Objective{Description: o.Description, Required: o.Required}
	}
	return objs
}

// noWorld is a level 1 character with nothing.
type noWorld struct{}

func (noWorld) Level() int { return 1 }

func (noWorld) ItemCount(string) int { return 0 }

func (noWorld) Reputation(string) int { return 0 }
