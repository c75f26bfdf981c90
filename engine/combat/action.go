package combat

// Action is what an actor does on its turn. The resolver switches over the
// concrete types below and nothing else.
type Action interface {
	isAction()
}

// Attack is a plain weapon strike against one opponent.
type Attack struct{}

// UseAbility casts a known ability.
type UseAbility struct {
	ID string
}

// UseItem consumes one item from the actor's bag.
type UseItem struct {
	ID string
}

// Flee tries to leave the encounter.
type Flee struct{}

func (Attack) isAction()     {}
func (UseAbility) isAction() {}
func (UseItem) isAction()    {}
func (Flee) isAction()       {}

// Describe returns a short label for logs and failure messages.
func Describe(a Action) string {
	switch a := a.(type) {
	case Attack:
		return "attack"
	case UseAbility:
		return "ability " + a.ID
	case UseItem:
		return "item " + a.ID
	case Flee:
		return "flee"
	default:
		return "unknown"
	}
}
