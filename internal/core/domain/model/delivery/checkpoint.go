package delivery

import (
	"errors"
	"fmt"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrCheckpointIsNotConstructed is returned for zero-value checkpoints.
var ErrCheckpointIsNotConstructed = errors.New("Checkpoint must be created via NewCheckpoint constructor")

// CheckpointType is the kind of physical event a checkpoint records.
type CheckpointType string

const (
	CheckpointPickup   CheckpointType = "PICKUP"
	CheckpointDelivery CheckpointType = "DELIVERY"
	CheckpointWaypoint CheckpointType = "WAYPOINT"
)

// ParseCheckpointType validates a checkpoint type name.
func ParseCheckpointType(s string) (CheckpointType, error) {
	switch t := CheckpointType(s); t {
	case CheckpointPickup, CheckpointDelivery, CheckpointWaypoint:
		return t, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("checkpointType", fmt.Errorf("%q is not a checkpoint type", s))
	}
}

// Proofs are the artifacts attached to a checkpoint.
type Proofs struct {
	PhotoURL     string
	SignatureURL string
}

// IsEmpty reports whether no proof was supplied.
func (p Proofs) IsEmpty() bool {
	return p.PhotoURL == "" && p.SignatureURL == ""
}

// Checkpoint is an immutable record of a physical lifecycle event.
type Checkpoint struct {
	id               kernel.UUID
	deliveryID       kernel.UUID
	checkpointType   CheckpointType
	location         *kernel.Location
	address          string
	plannedTime      *time.Time
	actualTime       time.Time
	completedBy      kernel.UUID
	proofs           Proofs
	confirmationCode string
	notes            string
	metadata         map[string]any
	isConstructed    bool
}

// CheckpointParams groups the fields of a checkpoint.
type CheckpointParams struct {
	ID               kernel.UUID
	DeliveryID       kernel.UUID
	Type             CheckpointType
	Location         *kernel.Location
	Address          string
	PlannedTime      *time.Time
	ActualTime       time.Time
	CompletedBy      kernel.UUID
	Proofs           Proofs
	ConfirmationCode string
	Notes            string
	Metadata         map[string]any
}

// NewCheckpoint validates and builds a checkpoint.
func NewCheckpoint(p CheckpointParams) (*Checkpoint, error) {
	if err := errors.Join(p.ID.Validate(), p.DeliveryID.Validate(), p.CompletedBy.Validate()); err != nil {
		return nil, err
	}
	if _, err := ParseCheckpointType(string(p.Type)); err != nil {
		return nil, err
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return nil, err
		}
	}
	if p.ActualTime.IsZero() {
		return nil, errs.NewValueIsRequiredError("actualTime")
	}

	metadata := make(map[string]any, len(p.Metadata))
	for k, v := range p.Metadata {
		metadata[k] = v
	}

	return &Checkpoint{
		id:               p.ID,
		deliveryID:       p.DeliveryID,
		checkpointType:   p.Type,
		location:         p.Location,
		address:          p.Address,
		plannedTime:      copyTime(p.PlannedTime),
		actualTime:       p.ActualTime,
		completedBy:      p.CompletedBy,
		proofs:           p.Proofs,
		confirmationCode: p.ConfirmationCode,
		notes:            p.Notes,
		metadata:         metadata,
		isConstructed:    true,
	}, nil
}

// Validate ensures the checkpoint was built through NewCheckpoint.
func (c *Checkpoint) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCheckpointIsNotConstructed
	}
	return nil
}

func (c *Checkpoint) ID() kernel.UUID            { return c.id }
func (c *Checkpoint) DeliveryID() kernel.UUID    { return c.deliveryID }
func (c *Checkpoint) Type() CheckpointType       { return c.checkpointType }
func (c *Checkpoint) Location() *kernel.Location { return c.location }
func (c *Checkpoint) Address() string            { return c.address }
func (c *Checkpoint) PlannedTime() *time.Time    { return copyTime(c.plannedTime) }
func (c *Checkpoint) ActualTime() time.Time      { return c.actualTime }
func (c *Checkpoint) CompletedBy() kernel.UUID   { return c.completedBy }
func (c *Checkpoint) Proofs() Proofs             { return c.proofs }
func (c *Checkpoint) ConfirmationCode() string   { return c.confirmationCode }
func (c *Checkpoint) Notes() string              { return c.notes }

// Metadata returns a copy of the free-form metadata.
func (c *Checkpoint) Metadata() map[string]any {
	out := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// IsDelivery reports whether this checkpoint proves the drop-off.
func (c *Checkpoint) IsDelivery() bool {
	return c.checkpointType == CheckpointDelivery
}
