package signin

import (
	"strings"

	"userbot-tma/internal/backend"
)

// Reason is the classified cause of a failed backend call.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonPasswordRequired
	ReasonCodeInvalid
	ReasonCodeExpired
	ReasonPasswordInvalid
	ReasonPhoneInvalid
	ReasonFloodWait
	ReasonBackendUnavailable
	ReasonNetwork
)

func (r Reason) String() string {
	switch r {
	case ReasonPasswordRequired:
		return "password_required"
	case ReasonCodeInvalid:
		return "code_invalid"
	case ReasonCodeExpired:
		return "code_expired"
	case ReasonPasswordInvalid:
		return "password_invalid"
	case ReasonPhoneInvalid:
		return "phone_invalid"
	case ReasonFloodWait:
		return "flood_wait"
	case ReasonBackendUnavailable:
		return "backend_unavailable"
	case ReasonNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// NeedsPassword is the only decision the flow branches on.
func (r Reason) NeedsPassword() bool {
	return r == ReasonPasswordRequired
}

// knownDetails maps backend detail text to reasons. Both the exception class
// names and the raw MTProto error codes appear in details depending on how
// the backend stringifies them. Rows are checked in order; the
// password-required row must stay first so that it wins over any other
// token in the same message.
var knownDetails = []struct {
	reason Reason
	tokens []string
}{
	{ReasonPasswordRequired, []string{"SessionPasswordNeeded", "SESSION_PASSWORD_NEEDED", "2FA"}},
	{ReasonCodeInvalid, []string{"PhoneCodeInvalid", "PHONE_CODE_INVALID"}},
	{ReasonCodeExpired, []string{"PhoneCodeExpired", "PHONE_CODE_EXPIRED"}},
	{ReasonPasswordInvalid, []string{"PasswordHashInvalid", "PASSWORD_HASH_INVALID"}},
	{ReasonPhoneInvalid, []string{"PhoneNumberInvalid", "PHONE_NUMBER_INVALID"}},
	{ReasonFloodWait, []string{"FloodWait", "FLOOD_WAIT"}},
	{ReasonBackendUnavailable, []string{"Userbot not initialized"}},
}

// Classify maps a backend detail string to a Reason. Unrecognised text is
// ReasonUnknown and is meant to be shown to the operator as-is.
func Classify(detail string) Reason {
	for _, row := range knownDetails {
		for _, tok := range row.tokens {
			if strings.Contains(detail, tok) {
				return row.reason
			}
		}
	}
	return ReasonUnknown
}

// ClassifyError applies Classify to the detail carried by err.
func ClassifyError(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	if backend.IsNetwork(err) {
		return ReasonNetwork
	}
	if detail, ok := backend.Detail(err); ok {
		return Classify(detail)
	}
	return ReasonUnknown
}
