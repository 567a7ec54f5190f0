package dialog

// Kind classifies a tool invocation outcome for the rendering layer. Every
// kind except store_unavailable is an expected, recoverable-by-conversation
// outcome.
type Kind string

const (
	KindOK                     Kind = "ok"
	KindUnknownAction          Kind = "unknown_action"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindArgumentValidation     Kind = "argument_validation"
	KindOwnershipError         Kind = "ownership_error"
	KindSlotTaken              Kind = "slot_taken"
	KindNotFound               Kind = "not_found"
	KindAlreadyCancelled       Kind = "already_cancelled"
	KindStoreUnavailable       Kind = "store_unavailable"
)

// Result is the structured record handed back to the rendering layer to
// phrase into speech.
type Result struct {
	Success bool   `json:"success"`
	Kind    Kind   `json:"kind"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message"`
}

func OK(message string, payload any) *Result {
	return &Result{Success: true, Kind: KindOK, Payload: payload, Message: message}
}

func Failure(kind Kind, message string) *Result {
	return &Result{Success: false, Kind: kind, Message: message}
}

// Intent is the structured record the external classifier produces per user
// turn. Args values are already extracted; nothing here parses free text.
type Intent struct {
	Action string `json:"action"`
	Args   Args   `json:"args"`
}

type Args map[string]any

// String returns a non-empty string argument, reporting presence and
// well-typedness separately so validation can name the offending field.
func (a Args) String(key string) (val string, ok bool) {
	v, present := a[key]
	if !present {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr || s == "" {
		return "", false
	}
	return s, true
}

func (a Args) OptionalString(key string) string {
	s, _ := a.String(key)
	return s
}

// Has reports whether the key is present at all, regardless of type.
func (a Args) Has(key string) bool {
	_, present := a[key]
	return present
}
