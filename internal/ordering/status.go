package ordering

import "github.com/vrjatclg/Time2Eat/internal/models"

var validNext = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPlaced:    {models.StatusVerified, models.StatusReady, models.StatusCancelled},
	models.StatusVerified:  {models.StatusReady},
	models.StatusReady:     {models.StatusFulfilled},
	models.StatusFulfilled: {},
	models.StatusCancelled: {},
}

// CanTransition reports whether the state machine has an edge from -> to.
// placed -> ready additionally requires a verified payment, which callers
// enforce through the update guard.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusFulfilled || s == models.StatusCancelled
}

func ParseStatus(raw string) (models.OrderStatus, error) {
	s := models.OrderStatus(raw)
	if _, ok := validNext[s]; !ok {
		return "", ValidationError{Field: "status", Reason: "unknown status " + raw}
	}
	return s, nil
}
