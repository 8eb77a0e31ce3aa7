package orders

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusDelivered Status = "DELIVERED"
)

var validNext = map[Status]map[Status]bool{
	StatusPlaced:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusDelivered: true},
	StatusCancelled: {},
	StatusDelivered: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
