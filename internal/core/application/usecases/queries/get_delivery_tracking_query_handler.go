package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryTrackingQueryHandler joins a delivery with its ETA and its latest
// position in one round trip.
type GetDeliveryTrackingQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryTrackingQueryHandler(db *gorm.DB) GetDeliveryTrackingQueryHandler {
	return GetDeliveryTrackingQueryHandler{db: db}
}

// Handle returns:
//   - ObjectNotFoundError when the delivery does not exist
//   - PermissionDeniedError for actors outside the delivery
func (h GetDeliveryTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryTrackingQuery,
) (*GetDeliveryTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := authorizeViewer(ctx, h.db, query.DeliveryID(), query.Actor(), "view delivery tracking"); err != nil {
		return nil, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			d.id, d.tracking_code, d.status, d.client_id, d.deliverer_id,
			d.pickup_address, d.dropoff_address,
			d.current_latitude, d.current_longitude, d.last_location_update,
			d.estimated_arrival, d.actual_arrival, d.tracking_enabled,
			e.estimated_time, e.previous_estimate, e.distance_remaining_km,
			e.traffic_condition, e.confidence, e.calculation_type, e.calculated_at,
			p.latitude, p.longitude, p.accuracy, p.heading, p.speed, p.altitude, p.recorded_at
		FROM deliveries d
		LEFT JOIN delivery_etas e ON e.delivery_id = d.id
		LEFT JOIN LATERAL (
			SELECT latitude, longitude, accuracy, heading, speed, altitude, recorded_at
			FROM delivery_positions
			WHERE delivery_id = d.id
			ORDER BY recorded_at DESC
			LIMIT 1
		) p ON TRUE
		WHERE d.id = ?
	`, query.DeliveryID().Bytes()).Row()

	var (
		id, clientID             uuid.UUID
		delivererID              uuid.NullUUID
		status                   string
		currentLat, currentLng   *float64
		etaTime, etaCalculatedAt *time.Time
		etaTraffic, etaType      *string
		etaConfidence            *float64
		posLat, posLng           *float64
		posAt                    *time.Time
		resp                     GetDeliveryTrackingQueryResponse
		eta                      ETAView
		pos                      PositionView
	)
	err := row.Scan(
		&id, &resp.TrackingCode, &status, &clientID, &delivererID,
		&resp.PickupAddress, &resp.DropoffAddress,
		&currentLat, &currentLng, &resp.LastLocationUpdate,
		&resp.EstimatedArrival, &resp.ActualArrival, &resp.TrackingEnabled,
		&etaTime, &eta.PreviousEstimate, &eta.DistanceRemainingKm,
		&etaTraffic, &etaConfidence, &etaType, &etaCalculatedAt,
		&posLat, &posLng, &pos.Accuracy, &pos.Heading, &pos.Speed, &pos.Altitude, &posAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
	}
	if err != nil {
		return nil, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	if resp.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
		return nil, err
	}
	if resp.DelivererID, err = nullableUUID(delivererID); err != nil {
		return nil, err
	}
	if resp.Status, err = delivery.ParseStatus(status); err != nil {
		return nil, err
	}
	if resp.CurrentLocation, err = nullableLocation(currentLat, currentLng); err != nil {
		return nil, err
	}

	if etaTime != nil {
		eta.EstimatedTime = *etaTime
		eta.CalculatedAt = *etaCalculatedAt
		eta.Confidence = *etaConfidence
		eta.CalculationType = delivery.CalculationType(*etaType)
		if etaTraffic != nil {
			eta.TrafficCondition = delivery.TrafficCondition(*etaTraffic)
		}
		resp.ETA = &eta
	}

	if posAt != nil {
		loc, locErr := nullableLocation(posLat, posLng)
		if locErr != nil {
			return nil, locErr
		}
		pos.Location = *loc
		pos.RecordedAt = *posAt
		resp.LastPosition = &pos
	}

	return &resp, nil
}
