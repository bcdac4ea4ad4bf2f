// Package voucher contiene las reglas puras del comprobante de egreso: máquina de estados,
// cálculo de montos y estadísticas. No depende de persistencia.
package voucher

import (
	"strings"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
)

// Action operación de transición sobre un comprobante.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPay     Action = "pay"
	ActionCancel  Action = "cancel"
)

var transitions = map[Action]map[entity.VoucherStatus]entity.VoucherStatus{
	ActionSubmit: {
		entity.StatusDraft: entity.StatusPending,
	},
	ActionApprove: {
		entity.StatusPending: entity.StatusApproved,
	},
	ActionReject: {
		entity.StatusPending: entity.StatusRejected,
	},
	ActionPay: {
		entity.StatusApproved: entity.StatusPaid,
	},
	ActionCancel: {
		entity.StatusDraft:    entity.StatusCancelled,
		entity.StatusPending:  entity.StatusCancelled,
		entity.StatusApproved: entity.StatusCancelled,
	},
}

// Next devuelve el estado destino de aplicar action desde from.
func Next(action Action, from entity.VoucherStatus) (entity.VoucherStatus, bool) {
	to, ok := transitions[action][from]
	return to, ok
}

// Command datos de una transición solicitada por un actor.
type Command struct {
	Action    Action
	Actor     entity.Actor
	At        time.Time
	Notes     string
	Reason    string
	Reference string
}

// Plan valida el comando contra el estado actual y devuelve el estado destino junto con el
// evento de cierre resultante. No modifica v.
func Plan(v *entity.Voucher, cmd Command) (entity.VoucherStatus, entity.ClosingEvent, error) {
	if strings.TrimSpace(cmd.Actor.ID) == "" {
		return "", nil, domain.Invalid("actor_id", "el actor es obligatorio")
	}
	reason := strings.TrimSpace(cmd.Reason)
	if cmd.Action == ActionReject && reason == "" {
		return "", nil, domain.Invalid("reason", "el motivo de rechazo es obligatorio")
	}

	to, ok := Next(cmd.Action, v.Status)
	if !ok {
		return "", nil, &domain.TransitionError{Action: string(cmd.Action), Status: string(v.Status)}
	}

	by, name, at := cmd.Actor.ID, cmd.Actor.Name, cmd.At
	switch cmd.Action {
	case ActionSubmit:
		return to, v.Closing, nil
	case ActionApprove:
		return to, entity.Approval{By: by, ByName: name, At: at, Notes: cmd.Notes}, nil
	case ActionReject:
		return to, entity.Rejection{By: by, ByName: name, At: at, Reason: reason}, nil
	case ActionPay:
		approval, _ := v.Approval()
		return to, entity.Payment{
			Approval:  approval,
			By:        by,
			ByName:    name,
			At:        at,
			Reference: cmd.Reference,
			Notes:     cmd.Notes,
		}, nil
	case ActionCancel:
		c := entity.Cancellation{By: by, ByName: name, At: at, Reason: reason}
		if approval, ok := v.Approval(); ok {
			c.Approval = &approval
		}
		return to, c, nil
	}
	return "", nil, &domain.TransitionError{Action: string(cmd.Action), Status: string(v.Status)}
}
