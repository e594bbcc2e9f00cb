package orders

type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusAccepted   Status = "ACCEPTED"
	StatusPreparing  Status = "PREPARING"
	StatusReady      Status = "READY"
	StatusDispatched Status = "DISPATCHED"
	StatusDelivered  Status = "DELIVERED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal state tidak punya next sama sekali; sekali DELIVERED/REJECTED/
// CANCELLED order tidak bisa digerakkan lagi, role apa pun.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:     {StatusAccepted: true, StatusRejected: true, StatusCancelled: true},
	StatusAccepted:   {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing:  {StatusReady: true},
	StatusReady:      {StatusDispatched: true},
	StatusDispatched: {StatusDelivered: true},
	StatusDelivered:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := validNext[st]
	return st, ok
}
