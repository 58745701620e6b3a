// Package deliveryrepo persists the Delivery aggregate together with its tracking data
// (status history, position series, live ETA) and proof-of-delivery records
// (checkpoints, confirmation code, ratings).
package deliveryrepo

import (
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Constraint names referenced when mapping unique violations.
const (
	announcementConstraint = "idx_deliveries_announcement_id"
	raterConstraint        = "idx_ratings_delivery_rater"
)

// DeliveryDTO is the row of a delivery. Statuses are stored by name so that read
// queries stay legible.
type DeliveryDTO struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"`
	AnnouncementID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_announcement_id"`
	ClientID           uuid.UUID   `gorm:"type:uuid;not null;index"`
	DelivererID        *uuid.UUID  `gorm:"type:uuid;index"`
	Status             string      `gorm:"type:varchar(32);not null;index"`
	PickupAddress      string      `gorm:"type:text;not null"`
	Pickup             LocationDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	DropoffAddress     string      `gorm:"type:text;not null"`
	Dropoff            LocationDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	Current            LocationDTO `gorm:"embedded;embeddedPrefix:current_"`
	LastLocationUpdate *time.Time
	EstimatedArrival   *time.Time
	ActualArrival      *time.Time
	ScheduledDate      *time.Time
	TrackingEnabled    bool `gorm:"not null;default:false"`
	TrackingStartedAt  *time.Time
	TrackingEndedAt    *time.Time
	Price              float64   `gorm:"type:double precision;not null;default:0"`
	TrackingCode       string    `gorm:"type:varchar(40);not null;uniqueIndex"`
	CreatedAt          time.Time `gorm:"not null"`
	Version            int64     `gorm:"not null;default:0"`
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// LocationDTO is an optional coordinate pair embedded in a row.
type LocationDTO struct {
	Latitude  *float64 `gorm:"type:double precision"`
	Longitude *float64 `gorm:"type:double precision"`
}

// StatusHistoryDTO is one append-only status change.
type StatusHistoryDTO struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	DeliveryID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_status_history_delivery_time,priority:1"`
	Status           string            `gorm:"type:varchar(32);not null"`
	PreviousStatus   string            `gorm:"type:varchar(32);not null"`
	Timestamp        time.Time         `gorm:"column:changed_at;not null;index:idx_status_history_delivery_time,priority:2"`
	ActorID          uuid.UUID         `gorm:"type:uuid;not null"`
	Location         datatypes.JSONMap `gorm:"type:jsonb"`
	Notes            string            `gorm:"type:text"`
	Reason           string            `gorm:"type:text"`
	CustomerNotified bool              `gorm:"not null;default:false"`
}

func (StatusHistoryDTO) TableName() string {
	return "delivery_status_history"
}

// TrackingPositionDTO is one append-only position ping.
type TrackingPositionDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index:idx_positions_delivery_time,priority:1"`
	Latitude   float64   `gorm:"type:double precision;not null"`
	Longitude  float64   `gorm:"type:double precision;not null"`
	Accuracy   *float64  `gorm:"type:double precision"`
	Heading    *float64  `gorm:"type:double precision"`
	Speed      *float64  `gorm:"type:double precision"`
	Altitude   *float64  `gorm:"type:double precision"`
	Timestamp  time.Time `gorm:"column:recorded_at;not null;index:idx_positions_delivery_time,priority:2"`
}

func (TrackingPositionDTO) TableName() string {
	return "delivery_positions"
}

// ETADTO is the single live estimate of a delivery.
type ETADTO struct {
	DeliveryID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstimatedTime       time.Time `gorm:"not null"`
	PreviousEstimate    *time.Time
	DistanceRemainingKm *float64  `gorm:"type:double precision"`
	TrafficCondition    string    `gorm:"type:varchar(16)"`
	Confidence          float64   `gorm:"type:double precision;not null"`
	CalculationType     string    `gorm:"type:varchar(16);not null"`
	CalculatedAt        time.Time `gorm:"not null"`
}

func (ETADTO) TableName() string {
	return "delivery_etas"
}

// CheckpointDTO is an immutable lifecycle checkpoint.
type CheckpointDTO struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey"`
	DeliveryID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	Type             string      `gorm:"type:varchar(16);not null"`
	Location         LocationDTO `gorm:"embedded"`
	Address          string      `gorm:"type:text"`
	PlannedTime      *time.Time
	ActualTime       time.Time         `gorm:"not null"`
	CompletedBy      uuid.UUID         `gorm:"type:uuid;not null"`
	PhotoURL         string            `gorm:"type:text"`
	SignatureURL     string            `gorm:"type:text"`
	ConfirmationCode string            `gorm:"type:varchar(6)"`
	Notes            string            `gorm:"type:text"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
}

func (CheckpointDTO) TableName() string {
	return "delivery_checkpoints"
}

// ConfirmationCodeDTO holds the current code of a delivery.
type ConfirmationCodeDTO struct {
	DeliveryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code       string    `gorm:"type:varchar(6);not null"`
	IssuedAt   time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	UsedAt     *time.Time
}

func (ConfirmationCodeDTO) TableName() string {
	return "delivery_confirmation_codes"
}

// RatingDTO is a post-delivery rating. One per (delivery, rater).
type RatingDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_delivery_rater,priority:1"`
	RaterID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_delivery_rater,priority:2"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Score      int       `gorm:"type:smallint;not null"`
	Comment    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (RatingDTO) TableName() string {
	return "delivery_ratings"
}

// Models lists every table owned by this package, for migrations.
func Models() []any {
	return []any{
		&DeliveryDTO{},
		&StatusHistoryDTO{},
		&TrackingPositionDTO{},
		&ETADTO{},
		&CheckpointDTO{},
		&ConfirmationCodeDTO{},
		&RatingDTO{},
	}
}

func locationFromDomain(l *kernel.Location) LocationDTO {
	if l == nil {
		return LocationDTO{}
	}
	lat, lng := l.Latitude(), l.Longitude()
	return LocationDTO{Latitude: &lat, Longitude: &lng}
}

func (dto LocationDTO) toDomain() (*kernel.Location, error) {
	if dto.Latitude == nil || dto.Longitude == nil {
		return nil, nil //nolint:nilnil // an absent location is not an error
	}
	l, err := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func locationToJSON(l *kernel.Location) datatypes.JSONMap {
	if l == nil {
		return nil
	}
	return datatypes.JSONMap{"latitude": l.Latitude(), "longitude": l.Longitude()}
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:                 d.ID().Bytes(),
		AnnouncementID:     d.AnnouncementID().Bytes(),
		ClientID:           d.ClientID().Bytes(),
		DelivererID:        optionalID(d.DelivererID()),
		Status:             d.Status().String(),
		PickupAddress:      d.Pickup().Text(),
		Pickup:             locationFromDomain(d.Pickup().Location()),
		DropoffAddress:     d.Dropoff().Text(),
		Dropoff:            locationFromDomain(d.Dropoff().Location()),
		Current:            locationFromDomain(d.CurrentLocation()),
		LastLocationUpdate: d.LastLocationUpdate(),
		EstimatedArrival:   d.EstimatedArrival(),
		ActualArrival:      d.ActualArrival(),
		ScheduledDate:      d.ScheduledDate(),
		TrackingEnabled:    d.TrackingEnabled(),
		TrackingStartedAt:  d.TrackingStartedAt(),
		TrackingEndedAt:    d.TrackingEndedAt(),
		Price:              d.Price(),
		TrackingCode:       d.TrackingCode(),
		CreatedAt:          d.CreatedAt(),
		Version:            d.Version(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	announcementID, err := kernel.UUIDFromBytes(dto.AnnouncementID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	var delivererID *kernel.UUID
	if dto.DelivererID != nil {
		did, idErr := kernel.UUIDFromBytes(dto.DelivererID[:])
		if idErr != nil {
			return nil, idErr
		}
		delivererID = &did
	}
	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	pickup, err := addressToDomain(dto.PickupAddress, dto.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := addressToDomain(dto.DropoffAddress, dto.Dropoff)
	if err != nil {
		return nil, err
	}
	current, err := dto.Current.toDomain()
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(delivery.RestoreParams{
		ID:                 id,
		AnnouncementID:     announcementID,
		ClientID:           clientID,
		DelivererID:        delivererID,
		Status:             status,
		Pickup:             pickup,
		Dropoff:            dropoff,
		CurrentLocation:    current,
		LastLocationUpdate: dto.LastLocationUpdate,
		EstimatedArrival:   dto.EstimatedArrival,
		ActualArrival:      dto.ActualArrival,
		ScheduledDate:      dto.ScheduledDate,
		TrackingEnabled:    dto.TrackingEnabled,
		TrackingStartedAt:  dto.TrackingStartedAt,
		TrackingEndedAt:    dto.TrackingEndedAt,
		Price:              dto.Price,
		TrackingCode:       dto.TrackingCode,
		CreatedAt:          dto.CreatedAt,
		Version:            dto.Version,
	})
}

func addressToDomain(text string, dto LocationDTO) (kernel.Address, error) {
	loc, err := dto.toDomain()
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(text, loc)
}

func statusEntryFromDomain(e *delivery.StatusHistoryEntry) StatusHistoryDTO {
	return StatusHistoryDTO{
		ID:               e.ID().Bytes(),
		DeliveryID:       e.DeliveryID().Bytes(),
		Status:           e.Status().String(),
		PreviousStatus:   e.PreviousStatus().String(),
		Timestamp:        e.Timestamp(),
		ActorID:          e.ActorID().Bytes(),
		Location:         locationToJSON(e.Location()),
		Notes:            e.Notes(),
		Reason:           e.Reason(),
		CustomerNotified: e.CustomerNotified(),
	}
}

func positionFromDomain(p *delivery.TrackingPosition) TrackingPositionDTO {
	t := p.Telemetry()
	return TrackingPositionDTO{
		ID:         p.ID().Bytes(),
		DeliveryID: p.DeliveryID().Bytes(),
		Latitude:   p.Location().Latitude(),
		Longitude:  p.Location().Longitude(),
		Accuracy:   t.Accuracy,
		Heading:    t.Heading,
		Speed:      t.Speed,
		Altitude:   t.Altitude,
		Timestamp:  p.Timestamp(),
	}
}

func positionToDomain(dto TrackingPositionDTO) (*delivery.TrackingPosition, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	loc, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}
	return delivery.NewTrackingPosition(id, deliveryID, loc, delivery.Telemetry{
		Accuracy: dto.Accuracy,
		Heading:  dto.Heading,
		Speed:    dto.Speed,
		Altitude: dto.Altitude,
	}, dto.Timestamp)
}

func etaFromDomain(e *delivery.ETA) ETADTO {
	return ETADTO{
		DeliveryID:          e.DeliveryID().Bytes(),
		EstimatedTime:       e.EstimatedTime(),
		PreviousEstimate:    e.PreviousEstimate(),
		DistanceRemainingKm: e.DistanceRemainingKm(),
		TrafficCondition:    string(e.TrafficCondition()),
		Confidence:          e.Confidence(),
		CalculationType:     string(e.CalculationType()),
		CalculatedAt:        e.CalculatedAt(),
	}
}

func etaToDomain(dto ETADTO) (*delivery.ETA, error) {
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	return delivery.NewETA(delivery.ETAParams{
		DeliveryID:          deliveryID,
		EstimatedTime:       dto.EstimatedTime,
		PreviousEstimate:    dto.PreviousEstimate,
		DistanceRemainingKm: dto.DistanceRemainingKm,
		TrafficCondition:    delivery.TrafficCondition(dto.TrafficCondition),
		Confidence:          dto.Confidence,
		CalculationType:     delivery.CalculationType(dto.CalculationType),
		CalculatedAt:        dto.CalculatedAt,
	})
}

func checkpointFromDomain(c *delivery.Checkpoint) CheckpointDTO {
	var metadata datatypes.JSONMap
	if md := c.Metadata(); len(md) > 0 {
		metadata = datatypes.JSONMap(md)
	}
	return CheckpointDTO{
		ID:               c.ID().Bytes(),
		DeliveryID:       c.DeliveryID().Bytes(),
		Type:             string(c.Type()),
		Location:         locationFromDomain(c.Location()),
		Address:          c.Address(),
		PlannedTime:      c.PlannedTime(),
		ActualTime:       c.ActualTime(),
		CompletedBy:      c.CompletedBy().Bytes(),
		PhotoURL:         c.Proofs().PhotoURL,
		SignatureURL:     c.Proofs().SignatureURL,
		ConfirmationCode: c.ConfirmationCode(),
		Notes:            c.Notes(),
		Metadata:         metadata,
	}
}

func codeFromDomain(c *delivery.ConfirmationCode) ConfirmationCodeDTO {
	return ConfirmationCodeDTO{
		DeliveryID: c.DeliveryID().Bytes(),
		Code:       c.Code(),
		IssuedAt:   c.IssuedAt(),
		ExpiresAt:  c.ExpiresAt(),
		UsedAt:     c.UsedAt(),
	}
}

func codeToDomain(dto ConfirmationCodeDTO) (*delivery.ConfirmationCode, error) {
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	return delivery.RestoreConfirmationCode(deliveryID, dto.Code, dto.IssuedAt, dto.ExpiresAt, dto.UsedAt)
}

func ratingFromDomain(r *delivery.Rating) RatingDTO {
	return RatingDTO{
		ID:         r.ID().Bytes(),
		DeliveryID: r.DeliveryID().Bytes(),
		RaterID:    r.RaterID().Bytes(),
		TargetID:   r.TargetID().Bytes(),
		Score:      r.Score(),
		Comment:    r.Comment(),
		CreatedAt:  r.CreatedAt(),
	}
}
