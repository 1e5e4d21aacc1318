package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ActorType is the kind of party performing an operation. It is recorded on
// every status history row as changed_by_type.
type ActorType int

const (
	ActorUnknown ActorType = iota
	ActorClient
	ActorBusiness
	ActorAgent
	ActorSystem
)

func getActorTypeStrings() map[ActorType]string {
	return map[ActorType]string{
		ActorClient:   "client",
		ActorBusiness: "business",
		ActorAgent:    "agent",
		ActorSystem:   "system",
	}
}

func (t ActorType) String() string {
	if s, ok := getActorTypeStrings()[t]; ok {
		return s
	}
	return "unknown"
}

func (t ActorType) Validate() error {
	if _, ok := getActorTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("actor type", fmt.Errorf("%d is not a valid actor type", t))
	}
	return nil
}

// ParseActorType accepts the lower-case names produced by String.
func ParseActorType(s string) (ActorType, error) {
	for t, name := range getActorTypeStrings() {
		if name == s {
			return t, nil
		}
	}
	return ActorUnknown, errs.NewValueIsInvalidErrorWithCause("actor type", fmt.Errorf("%q is not a valid actor type", s))
}

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor or SystemActor")

// Actor is the explicit caller context threaded through every command.
// A system actor has no user id.
type Actor struct {
	id    *UUID
	typ   ActorType
	guard guard.ConstructorGuard
}

func NewActor(id UUID, typ ActorType) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if err := typ.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{id: &id, typ: typ, guard: guard.NewConstructorGuard()}, nil
}

func SystemActor() Actor {
	return Actor{typ: ActorSystem, guard: guard.NewConstructorGuard()}
}

// ID returns nil for the system actor.
func (a Actor) ID() *UUID {
	return a.id
}

func (a Actor) Type() ActorType {
	return a.typ
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}
