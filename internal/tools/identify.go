package tools

import (
	"context"
	"fmt"

	"github.com/voicedesk/voicedesk/internal/dialog"
)

// Identify stores the caller's phone number and optional display name on the
// session. It touches no persistent state.
type Identify struct{}

func (t *Identify) Action() dialog.Action { return dialog.ActionIdentifyUser }

func (t *Identify) Args() []dialog.ArgSpec {
	return []dialog.ArgSpec{
		{Name: "phone", Required: true},
		{Name: "name"},
	}
}

func (t *Identify) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	_ = ctx

	raw := args.OptionalString("phone")
	phone, err := canonicalPhone(raw)
	if err != nil {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: please provide a valid 10-digit phone number", "phone")), nil
	}

	name := args.OptionalString("name")
	sess.Phone = phone
	sess.Name = name

	who := name
	if who == "" {
		who = "there"
	}
	return dialog.OK(
		fmt.Sprintf("Thank you %s! I've identified you with phone number %s.", who, phone),
		map[string]any{"phone": phone, "name": name},
	), nil
}
