package engine

// Default gate messages.
const (
	DefaultProfileMissingMessage    = "لطفاً ابتدا پروفایل خود را تکمیل کنید."
	DefaultProfileIncompleteMessage = "پروفایل شما ناقص است. لطفاً ابتدا آن را تکمیل کنید."
)

// GateResult is either Proceed or Block with a message for the user.
type GateResult struct {
	Proceed bool
	Message string
}

// Proceed lets the request through.
func Proceed() GateResult { return GateResult{Proceed: true} }

// Block stops the request with msg.
func Block(msg string) GateResult { return GateResult{Message: msg} }

// Gate checks that a profile exists and is complete.
type Gate struct {
	MissingMessage    string
	IncompleteMessage string
}

// NewGate returns a gate using the default messages for any empty argument.
func NewGate(missingMsg, incompleteMsg string) Gate {
	if missingMsg == "" {
		missingMsg = DefaultProfileMissingMessage
	}
	if incompleteMsg == "" {
		incompleteMsg = DefaultProfileIncompleteMessage
	}
	return Gate{MissingMessage: missingMsg, IncompleteMessage: incompleteMsg}
}

// Check applies the gate rules in order: absent, incomplete, proceed.
func (g Gate) Check(p *UserProfile) GateResult {
	switch {
	case p == nil:
		return Block(g.MissingMessage)
	case !p.Complete:
		return Block(g.IncompleteMessage)
	default:
		return Proceed()
	}
}
