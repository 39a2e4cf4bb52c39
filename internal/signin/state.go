package signin

// Step names the stage of the flow a State is in.
type Step int

const (
	StepSetup Step = iota
	StepAwaitingCode
	StepAwaitingPassword
	StepAuthenticated
)

func (s Step) String() string {
	switch s {
	case StepSetup:
		return "setup"
	case StepAwaitingCode:
		return "awaiting_code"
	case StepAwaitingPassword:
		return "awaiting_password"
	case StepAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is one of Setup, AwaitingCode, AwaitingPassword or Authenticated.
// Each variant carries only the data valid in that step.
type State interface {
	Step() Step
	isState()
}

type Setup struct{}

type AwaitingCode struct {
	PhoneCodeHash string
}

// AwaitingPassword keeps the hash so that going back can retry the code.
type AwaitingPassword struct {
	PhoneCodeHash string
}

type Authenticated struct{}

func (Setup) Step() Step            { return StepSetup }
func (AwaitingCode) Step() Step     { return StepAwaitingCode }
func (AwaitingPassword) Step() Step { return StepAwaitingPassword }
func (Authenticated) Step() Step    { return StepAuthenticated }

func (Setup) isState()            {}
func (AwaitingCode) isState()     {}
func (AwaitingPassword) isState() {}
func (Authenticated) isState()    {}

// PhoneCodeHash returns the correlation token held by s, if any.
func PhoneCodeHash(s State) string {
	switch st := s.(type) {
	case AwaitingCode:
		return st.PhoneCodeHash
	case AwaitingPassword:
		return st.PhoneCodeHash
	default:
		return ""
	}
}

// Event is an input to Transition.
type Event interface {
	String() string
	isEvent()
}

// CodeSent reports a successful code request.
type CodeSent struct {
	PhoneCodeHash string
}

type CodeAccepted struct{}

// PasswordRequired reports that the code was accepted but the account also
// needs its password.
type PasswordRequired struct{}

type PasswordAccepted struct{}

// Back is backward navigation by the operator.
type Back struct{}

func (CodeSent) String() string         { return "code_sent" }
func (CodeAccepted) String() string     { return "code_accepted" }
func (PasswordRequired) String() string { return "password_required" }
func (PasswordAccepted) String() string { return "password_accepted" }
func (Back) String() string             { return "back" }

func (CodeSent) isEvent()         {}
func (CodeAccepted) isEvent()     {}
func (PasswordRequired) isEvent() {}
func (PasswordAccepted) isEvent() {}
func (Back) isEvent()             {}

// Transition returns the state reached by applying e to s. When e is not
// defined for s, s is returned unchanged with ok false. Authenticated accepts
// no events.
func Transition(s State, e Event) (next State, ok bool) {
	switch st := s.(type) {
	case Setup:
		if ev, isSent := e.(CodeSent); isSent && ev.PhoneCodeHash != "" {
			return AwaitingCode{PhoneCodeHash: ev.PhoneCodeHash}, true
		}
	case AwaitingCode:
		switch e.(type) {
		case CodeAccepted:
			return Authenticated{}, true
		case PasswordRequired:
			return AwaitingPassword{PhoneCodeHash: st.PhoneCodeHash}, true
		case Back:
			return Setup{}, true
		}
	case AwaitingPassword:
		switch e.(type) {
		case PasswordAccepted:
			return Authenticated{}, true
		case Back:
			return AwaitingCode{PhoneCodeHash: st.PhoneCodeHash}, true
		}
	}
	return s, false
}
