package entity

import "time"

// ClosingEvent evento que cierra (o avanza) el comprobante. Implementaciones cerradas:
// Approval, Rejection, Payment, Cancellation. Un comprobante tiene a lo sumo uno.
type ClosingEvent interface {
	Status() VoucherStatus
	closingEvent()
}

// Approval aprobación de un comprobante pendiente.
type Approval struct {
	By     string
	ByName string
	At     time.Time
	Notes  string
}

// Rejection rechazo de un comprobante pendiente; Reason es obligatorio.
type Rejection struct {
	By     string
	ByName string
	At     time.Time
	Reason string
}

// Payment pago de un comprobante aprobado. Conserva la aprobación previa.
type Payment struct {
	Approval  Approval
	By        string
	ByName    string
	At        time.Time
	Reference string
	Notes     string
}

// Cancellation anulación. Approval no es nil si se anuló un comprobante ya aprobado.
type Cancellation struct {
	Approval *Approval
	By       string
	ByName   string
	At       time.Time
	Reason   string
}

func (Approval) Status() VoucherStatus     { return StatusApproved }
func (Rejection) Status() VoucherStatus    { return StatusRejected }
func (Payment) Status() VoucherStatus      { return StatusPaid }
func (Cancellation) Status() VoucherStatus { return StatusCancelled }

func (Approval) closingEvent()     {}
func (Rejection) closingEvent()    {}
func (Payment) closingEvent()      {}
func (Cancellation) closingEvent() {}

// ClosingRecord representación plana (columnas anulables) del evento de cierre,
// usada por los adaptadores de persistencia.
type ClosingRecord struct {
	ApprovedBy         *string
	ApprovedByName     *string
	ApprovedAt         *time.Time
	ApprovalNotes      *string
	RejectedBy         *string
	RejectedByName     *string
	RejectedAt         *time.Time
	RejectionReason    *string
	PaidBy             *string
	PaidByName         *string
	PaidAt             *time.Time
	PaymentReference   *string
	PaymentNotes       *string
	CancelledBy        *string
	CancelledByName    *string
	CancelledAt        *time.Time
	CancellationReason *string
}

// FlattenClosing convierte el evento en columnas. nil produce un registro vacío.
func FlattenClosing(ev ClosingEvent) ClosingRecord {
	var r ClosingRecord
	switch e := ev.(type) {
	case Approval:
		r.setApproval(e)
	case Rejection:
		r.RejectedBy, r.RejectedByName = ptr(e.By), ptr(e.ByName)
		r.RejectedAt, r.RejectionReason = timePtr(e.At), ptr(e.Reason)
	case Payment:
		r.setApproval(e.Approval)
		r.PaidBy, r.PaidByName, r.PaidAt = ptr(e.By), ptr(e.ByName), timePtr(e.At)
		r.PaymentReference, r.PaymentNotes = ptr(e.Reference), ptr(e.Notes)
	case Cancellation:
		if e.Approval != nil {
			r.setApproval(*e.Approval)
		}
		r.CancelledBy, r.CancelledByName = ptr(e.By), ptr(e.ByName)
		r.CancelledAt, r.CancellationReason = timePtr(e.At), ptr(e.Reason)
	}
	return r
}

// Event reconstruye el evento de cierre a partir de las columnas y del estado persistido.
func (r ClosingRecord) Event(status VoucherStatus) ClosingEvent {
	switch status {
	case StatusApproved:
		return r.approval()
	case StatusRejected:
		return Rejection{By: val(r.RejectedBy), ByName: val(r.RejectedByName), At: timeVal(r.RejectedAt), Reason: val(r.RejectionReason)}
	case StatusPaid:
		return Payment{
			Approval: r.approval(),
			By:       val(r.PaidBy), ByName: val(r.PaidByName), At: timeVal(r.PaidAt),
			Reference: val(r.PaymentReference), Notes: val(r.PaymentNotes),
		}
	case StatusCancelled:
		c := Cancellation{By: val(r.CancelledBy), ByName: val(r.CancelledByName), At: timeVal(r.CancelledAt), Reason: val(r.CancellationReason)}
		if r.ApprovedAt != nil {
			a := r.approval()
			c.Approval = &a
		}
		return c
	}
	return nil
}

func (r *ClosingRecord) setApproval(a Approval) {
	r.ApprovedBy, r.ApprovedByName = ptr(a.By), ptr(a.ByName)
	r.ApprovedAt, r.ApprovalNotes = timePtr(a.At), ptr(a.Notes)
}

func (r ClosingRecord) approval() Approval {
	return Approval{By: val(r.ApprovedBy), ByName: val(r.ApprovedByName), At: timeVal(r.ApprovedAt), Notes: val(r.ApprovalNotes)}
}

func ptr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func val(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func timeVal(p *time.Time) time.Time {
	if p != nil {
		return *p
	}
	return time.Time{}
}
