package commands

import (
	"errors"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrCreateCheckpointCommandIsNotConstructed = errors.New(
	"CreateCheckpointCommand must be created via NewCreateCheckpointCommand constructor",
)

// CreateCheckpointParams groups the inputs of a checkpoint.
type CreateCheckpointParams struct {
	DeliveryID       kernel.UUID
	Actor            kernel.Actor
	Type             delivery.CheckpointType
	Location         *kernel.Location
	Address          string
	PlannedTime      *time.Time
	Proofs           delivery.Proofs
	ConfirmationCode string
	Notes            string
	Metadata         map[string]any
}

// CreateCheckpointCommand records a pickup, waypoint or delivery event.
type CreateCheckpointCommand struct {
	params CreateCheckpointParams

	guard guard.ConstructorGuard
}

func NewCreateCheckpointCommand(p CreateCheckpointParams) (CreateCheckpointCommand, error) {
	_, typeErr := delivery.ParseCheckpointType(string(p.Type))
	if err := errors.Join(p.DeliveryID.Validate(), p.Actor.Validate(), typeErr); err != nil {
		return CreateCheckpointCommand{}, err
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return CreateCheckpointCommand{}, err
		}
		loc := *p.Location
		p.Location = &loc
	}
	p.Address = strings.TrimSpace(p.Address)
	p.ConfirmationCode = strings.TrimSpace(p.ConfirmationCode)
	p.Notes = strings.TrimSpace(p.Notes)

	return CreateCheckpointCommand{params: p, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateCheckpointCommand) Validate() error {
	return c.guard.Validate(ErrCreateCheckpointCommandIsNotConstructed)
}

func (c CreateCheckpointCommand) DeliveryID() kernel.UUID       { return c.params.DeliveryID }
func (c CreateCheckpointCommand) Actor() kernel.Actor           { return c.params.Actor }
func (c CreateCheckpointCommand) Type() delivery.CheckpointType { return c.params.Type }
func (c CreateCheckpointCommand) ConfirmationCode() string      { return c.params.ConfirmationCode }

// Checkpoint builds the checkpoint for delivery d at time now.
func (c CreateCheckpointCommand) Checkpoint(d *delivery.Delivery, now time.Time) (*delivery.Checkpoint, error) {
	p := c.params
	address := p.Address
	if address == "" {
		address = defaultCheckpointAddress(d, p.Type)
	}

	return delivery.NewCheckpoint(delivery.CheckpointParams{
		ID:               kernel.NewUUID(),
		DeliveryID:       d.ID(),
		Type:             p.Type,
		Location:         p.Location,
		Address:          address,
		PlannedTime:      p.PlannedTime,
		ActualTime:       now,
		CompletedBy:      p.Actor.ID(),
		Proofs:           p.Proofs,
		ConfirmationCode: p.ConfirmationCode,
		Notes:            p.Notes,
		Metadata:         p.Metadata,
	})
}

func defaultCheckpointAddress(d *delivery.Delivery, t delivery.CheckpointType) string {
	switch t {
	case delivery.CheckpointPickup:
		return d.Pickup().Text()
	case delivery.CheckpointDelivery:
		return d.Dropoff().Text()
	default:
		return ""
	}
}
