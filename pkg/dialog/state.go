package dialog

// State is a step of the dialog lifecycle.
type State int

const (
	// Idle is a dialog that was neither populated nor loaded.
	Idle State = iota
	// AwaitingList waits for the names below the namespace.
	AwaitingList
	// AwaitingValues waits for the values of the listed names.
	AwaitingValues
	// Populated shows an editable form.
	Populated
	// AwaitingDelivery waits for the server to store accepted values.
	AwaitingDelivery
	// Delivered is a remote dialog whose values were stored.
	Delivered
	// Failed shows a server message instead of a form.
	Failed
	// Closed is a dialog that was accepted without delivery or rejected.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingList:
		return "awaiting-list"
	case AwaitingValues:
		return "awaiting-values"
	case Populated:
		return "populated"
	case AwaitingDelivery:
		return "awaiting-delivery"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Done reports whether the dialog has finished.
func (s State) Done() bool {
	return s == Delivered || s == Closed
}
