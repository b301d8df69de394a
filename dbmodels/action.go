package dbmodels

import (
	"github.com/pkg/errors"
)

// Action classifies what a permission allows the hub to do with a payload.
// The direction is from the hub's perspective: outbound actions gate what the
// hub may forward to a recipient, inbound actions gate what the hub may emit
// on behalf of a sender.
type Action string

const (
	ActionInboundDispatch      Action = "inbound_dispatch"
	ActionInboundRequest       Action = "inbound_request"
	ActionInboundResponse      Action = "inbound_response"
	ActionInboundNotification  Action = "inbound_notification"
	ActionOutboundDispatch     Action = "outbound_dispatch"
	ActionOutboundRequest      Action = "outbound_request"
	ActionOutboundResponse     Action = "outbound_response"
	ActionOutboundNotification Action = "outbound_notification"
)

var actions = map[Action]struct{}{
	ActionInboundDispatch:      {},
	ActionInboundRequest:       {},
	ActionInboundResponse:      {},
	ActionInboundNotification:  {},
	ActionOutboundDispatch:     {},
	ActionOutboundRequest:      {},
	ActionOutboundResponse:     {},
	ActionOutboundNotification: {},
}

// ParseAction converts a wire string to an Action. An unknown string is an
// error.
func ParseAction(s string) (Action, error) {
	action := Action(s)
	if _, ok := actions[action]; !ok {
		return "", errors.Errorf("invalid action: %s", s)
	}
	return action, nil
}

// String returns the wire form of the action.
func (a Action) String() string {
	return string(a)
}
