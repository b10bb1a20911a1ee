package party

// RequestState tracks a party's progress through one request/pay cycle.
type RequestState string

const (
	RequestIdle      RequestState = "IDLE"
	RequestRequested RequestState = "REQUESTED"
	RequestFound     RequestState = "FOUND_OR_PRODUCED"
	RequestPaid      RequestState = "PAID"
	RequestDelivered RequestState = "DELIVERED"
	RequestRejected  RequestState = "REJECTED"
)

// requestTransitions lists the legal moves within one cycle. A new
// request resets any party to REQUESTED regardless of where the
// previous cycle ended.
var requestTransitions = map[RequestState][]RequestState{
	RequestIdle:      {RequestRequested},
	RequestRequested: {RequestFound, RequestRejected},
	RequestFound:     {RequestPaid, RequestRejected},
	RequestPaid:      {RequestDelivered, RequestRejected},
	RequestDelivered: {},
	RequestRejected:  {},
}

// CanTransitionTo reports whether target is a legal next state.
func (s RequestState) CanTransitionTo(target RequestState) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
