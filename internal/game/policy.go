package game

// Policy decides the automated opponent's action. Decide is synchronous and
// must depend only on the view (plus any randomness the policy owns).
type Policy interface {
	Decide(view View) Action
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(View) Action

func (f PolicyFunc) Decide(view View) Action { return f(view) }

// passiveAction is the replacement for an illegal decision: check, else
// call, else fold.
func passiveAction(legal LegalActions) Action {
	for _, kind := range []ActionKind{Check, Call, Fold} {
		if legal.Can(kind) {
			return Action{Kind: kind}
		}
	}
	return Action{Kind: AllIn}
}
