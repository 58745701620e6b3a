// Package delivery contains the Delivery aggregate and the entities that live inside
// its boundary: the status history, the courier position time series, the live ETA,
// checkpoints, the confirmation code and ratings.
//
// Status is the lifecycle state machine. Transitions are only allowed along the
// adjacency table in status.go and are authorized by Delivery.Transition:
//
//	CREATED -> ASSIGNED -> PENDING_PICKUP -> PICKED_UP -> IN_TRANSIT -> NEARBY -> ARRIVED
//	        -> ATTEMPT_DELIVERY -> DELIVERED | NOT_DELIVERED -> RESCHEDULED | RETURNED
//
// with CANCELLED reachable from every non-terminal state. DELIVERED, RETURNED and
// CANCELLED are terminal.
//
// History rows, positions and checkpoints are immutable once built; the ETA and the
// confirmation code are single live values per delivery that are replaced on update.
package delivery
