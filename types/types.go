// Package types defines the shared data structures for the Eldoria engine.
// This package contains only type definitions: no logic, no methods.
package types

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Element is an elemental tag carried by abilities and actors.
type Element string

const (
	ElementNone      Element = ""
	ElementFire      Element = "fire"
	ElementIce       Element = "ice"
	ElementLightning Element = "lightning"
	ElementEarth     Element = "earth"
	ElementWind      Element = "wind"
	ElementLight     Element = "light"
	ElementDark      Element = "dark"
)

// Team is the faction label used for victory and defeat detection.
type Team string

const (
	TeamPlayer Team = "player"
	TeamEnemy  Team = "enemy"
)

// StatusCategory classifies a status effect.
type StatusCategory string

const (
	CategoryDamageOverTime StatusCategory = "dot"
	CategoryHealOverTime   StatusCategory = "hot"
	CategoryStatModifier   StatusCategory = "stat"
	CategoryCrowdControl   StatusCategory = "control"
)

// StatusDef is the immutable definition of a timed status effect.
type StatusDef struct {
	ID       string
	Name     string
	Category StatusCategory
	Power    int     // flat hp per tick for dot/hot
	Percent  float64 // fraction of max hp per tick for dot/hot
	Duration int     // default duration in turns
	Stat     string  // stat touched by a stat modifier
	Mult     float64 // multiplicative delta applied on apply, reverted on expiry
	Add      int     // additive delta applied on apply, reverted on expiry
}

// EffectRef attaches a status to an ability or item. Power and Duration
// override the status definition when non-zero.
type EffectRef struct {
	Status   string
	Power    int
	Duration int
}

// AbilityKind is the flavour of an ability.
type AbilityKind string

const (
	AbilityPhysical AbilityKind = "physical"
	AbilityMagic    AbilityKind = "magic"
	AbilitySpecial  AbilityKind = "special"
)

// TargetKind says which side an ability or item is aimed at.
type TargetKind string

const (
	TargetEnemy TargetKind = "enemy"
	TargetAlly  TargetKind = "ally"
)

// AbilityDef is the immutable definition of a combat ability.
type AbilityDef struct {
	ID          string
	Name        string
	Description string
	Kind        AbilityKind
	Element     Element
	Power       int
	MPCost      int
	Level       int
	Target      TargetKind
	Healing     bool
	Hits        int  // damage instances per use, 0 or 1 means one
	Area        bool // hits every living opponent
	Requires    string
	Effects     []EffectRef
}

// ItemKind classifies an item.
type ItemKind string

const (
	ItemHeal      ItemKind = "heal"
	ItemMana      ItemKind = "mana"
	ItemBuff      ItemKind = "buff"
	ItemEquipment ItemKind = "equipment"
	ItemQuest     ItemKind = "quest"
	ItemMisc      ItemKind = "misc"
)

// ItemDef is the immutable definition of an item.
type ItemDef struct {
	ID          string
	Name        string
	Description string
	Kind        ItemKind
	Power       int
	Slot        string         // equipment slot
	Bonuses     map[string]int // stat → additive equipment bonus
	Effects     []EffectRef
	Value       int
}

// LootEntry is one roll in an enemy's drop table.
type LootEntry struct {
	ItemID string
	Chance int // percent, 1..100
}

// StatBlock holds the numeric template of a combatant.
type StatBlock struct {
	HP      int
	MP      int
	Attack  int
	Defense int
	Magic   int
	Speed   int
	Agility int
	Crit    float64
}

// EnemyDef is the template an enemy actor is built from.
type EnemyDef struct {
	ID         string
	Name       string
	Level      int
	Stats      StatBlock
	Element    Element
	Weaknesses []Element
	Abilities  []string
	Exp        int
	Gold       int
	Loot       []LootEntry
}

// QuestType groups quests in the log.
type QuestType string

const (
	QuestMain  QuestType = "main"
	QuestSide  QuestType = "side"
	QuestDaily QuestType = "daily"
)

// PrereqKind identifies a quest prerequisite predicate.
type PrereqKind string

const (
	PrereqQuest      PrereqKind = "quest"
	PrereqLevel      PrereqKind = "level"
	PrereqItem       PrereqKind = "item"
	PrereqReputation PrereqKind = "reputation"
)

// Prerequisite is one predicate of a quest's AND-ed prerequisite list.
type Prerequisite struct {
	Kind    PrereqKind
	QuestID string
	Level   int
	ItemID  string
	Faction string
	Amount  int
}

// ObjectiveDef is one countable sub-goal of a quest.
type ObjectiveDef struct {
	Description string
	Required    int
	Trigger     string // progress event key, e.g. "defeated:goblin"
}

// RewardKind identifies a payout.
type RewardKind string

const (
	RewardGold       RewardKind = "gold"
	RewardExp        RewardKind = "exp"
	RewardItem       RewardKind = "item"
	RewardReputation RewardKind = "reputation"
)

// Reward is a single payout.
type Reward struct {
	Kind    RewardKind
	Amount  int
	ItemID  string
	Faction string
}

// QuestDef is the immutable definition of a quest.
type QuestDef struct {
	ID            string
	Title         string
	Description   string
	Type          QuestType
	Level         int
	AutoStart     bool
	Prerequisites []Prerequisite
	Objectives    []ObjectiveDef
	Rewards       []Reward
	SourceOrder   int
}

// PlayerDef is the starting template of the player character.
type PlayerDef struct {
	Name      string
	Stats     StatBlock
	Element   Element
	Abilities []string
	Items     map[string]int
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
	Player  PlayerDef
}

// EventType names an outbound notification.
type EventType string

const (
	EventCombatStart    EventType = "combat_start"
	EventCombatEnd      EventType = "combat_end"
	EventTurnStart      EventType = "turn_start"
	EventTurnEnd        EventType = "turn_end"
	EventDamage         EventType = "damage"
	EventHeal           EventType = "heal"
	EventManaRestored   EventType = "mana_restored"
	EventStatusApplied  EventType = "status_applied"
	EventStatusExpired  EventType = "status_expired"
	EventActionFailed   EventType = "action_failed"
	EventFleeFailed     EventType = "flee_failed"
	EventDefeated       EventType = "defeated"
	EventLootDropped    EventType = "loot_dropped"
	EventQuestStarted   EventType = "quest_started"
	EventQuestProgress  EventType = "quest_progress"
	EventQuestCompleted EventType = "quest_completed"
	EventQuestFailed    EventType = "quest_failed"
	EventHourChanged    EventType = "hour_changed"
	EventDayChanged     EventType = "day_changed"
	EventPeriodChanged  EventType = "period_changed"
	EventGoldGained     EventType = "gold_gained"
	EventExpGained      EventType = "exp_gained"
	EventItemGained     EventType = "item_gained"
	EventReputation     EventType = "reputation_changed"
	EventLevelUp        EventType = "level_up"
)

// Event is a fire-and-forget notification emitted by the engine.
type Event struct {
	Type   EventType
	Actor  string
	Target string
	Amount int
	Name   string
	Data   map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Events []Event
	Output []string
}
