package dialog

import (
	"context"
	"fmt"
	"time"
)

// ArgSpec declares one argument a tool accepts. Required arguments must be
// present and well-typed before the tool runs.
type ArgSpec struct {
	Name     string
	Required bool
}

// Tool is a single named operation bound to a required state (enforced by the
// router) and declared arguments. Invoke returns a structured Result for
// every expected outcome; a non-nil error means the persistence layer itself
// failed and is surfaced upward as store_unavailable.
type Tool interface {
	Action() Action
	Args() []ArgSpec
	Invoke(ctx context.Context, sess *Session, args Args) (*Result, error)
}

// Router is the validated dispatch boundary between the classifier and the
// tools. It performs no business logic: lookup, legality, argument shape,
// invoke, commit-on-success.
type Router struct {
	machine Machine
	tools   map[Action]Tool
}

func NewRouter(machine Machine) *Router {
	return &Router{machine: machine, tools: make(map[Action]Tool)}
}

func (r *Router) Register(t Tool) {
	r.tools[t.Action()] = t
}

// Dispatch routes one intent. The session is mutated only when the tool
// succeeds; every rejection leaves it exactly as it was, so repeated
// legality checks are idempotent.
func (r *Router) Dispatch(ctx context.Context, sess *Session, intent Intent) (*Result, error) {
	action := Action(intent.Action)

	tool, ok := r.tools[action]
	if !ok {
		return Failure(KindUnknownAction,
			fmt.Sprintf("unknown action %q", intent.Action)), nil
	}

	outcome, err := r.machine.Next(sess.State, sess.Ended, action)
	if err != nil {
		return Failure(KindInvalidStateTransition, err.Error()), nil
	}

	for _, spec := range tool.Args() {
		if !spec.Required {
			continue
		}
		if _, ok := intent.Args.String(spec.Name); !ok {
			return Failure(KindArgumentValidation,
				fmt.Sprintf("missing or malformed argument %q", spec.Name)), nil
		}
	}

	res, err := tool.Invoke(ctx, sess, intent.Args)
	if err != nil {
		// persistence failure: session untouched, surfaced upward
		return nil, err
	}

	if res.Success {
		sess.State = outcome.Settled
		if outcome.Final {
			sess.Ended = true
		}
		sess.Invocations = append(sess.Invocations, Invocation{
			Action: action,
			Kind:   res.Kind,
			At:     time.Now(),
		})
	}
	return res, nil
}
