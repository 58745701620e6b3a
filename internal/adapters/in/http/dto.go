package http

import (
	"time"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/application/usecases/queries"
	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
)

// ================= requests =================

type LocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (l *LocationDTO) toDomain() (*kernel.Location, error) {
	if l == nil {
		return nil, nil
	}
	loc, err := kernel.NewLocation(l.Latitude, l.Longitude)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

type TransitionStatusRequest struct {
	Status   string       `json:"status" validate:"required"`
	Location *LocationDTO `json:"location"`
	Notes    string       `json:"notes" validate:"max=2000"`
	Reason   string       `json:"reason" validate:"max=500"`
}

type LocationPingRequest struct {
	Latitude  *float64   `json:"latitude" validate:"required"`
	Longitude *float64   `json:"longitude" validate:"required"`
	Accuracy  *float64   `json:"accuracy" validate:"omitempty,gte=0"`
	Heading   *float64   `json:"heading"`
	Speed     *float64   `json:"speed" validate:"omitempty,gte=0"`
	Altitude  *float64   `json:"altitude"`
	Timestamp *time.Time `json:"timestamp"`
}

type CheckpointRequest struct {
	Type             string         `json:"type" validate:"required"`
	Location         *LocationDTO   `json:"location"`
	Address          string         `json:"address"`
	PlannedTime      *time.Time     `json:"planned_time"`
	PhotoURL         string         `json:"photo_url" validate:"omitempty,url"`
	SignatureURL     string         `json:"signature_url" validate:"omitempty,url"`
	ConfirmationCode string         `json:"confirmation_code"`
	Notes            string         `json:"notes" validate:"max=2000"`
	Metadata         map[string]any `json:"metadata"`
}

type ConfirmDeliveryRequest struct {
	Code         string       `json:"code"`
	PhotoURL     string       `json:"photo_url" validate:"omitempty,url"`
	SignatureURL string       `json:"signature_url" validate:"omitempty,url"`
	Notes        string       `json:"notes" validate:"max=2000"`
	Location     *LocationDTO `json:"location"`
}

type RateDeliveryRequest struct {
	Score   int    `json:"score" validate:"required"`
	Comment string `json:"comment" validate:"max=1000"`
}

type CreateAnnouncementRequest struct {
	// ClientID defaults to the caller.
	ClientID        string       `json:"client_id" validate:"omitempty,uuid"`
	Title           string       `json:"title" validate:"required,max=200"`
	Category        string       `json:"category" validate:"required"`
	PickupAddress   string       `json:"pickup_address" validate:"required"`
	PickupLocation  *LocationDTO `json:"pickup_location"`
	DropoffAddress  string       `json:"dropoff_address" validate:"required"`
	DropoffLocation *LocationDTO `json:"dropoff_location"`
	SuggestedPrice  *float64     `json:"suggested_price" validate:"omitempty,gte=0"`
	ScheduledDate   *time.Time   `json:"scheduled_date"`
}

type RespondToMatchRequest struct {
	Decision string `json:"decision" validate:"required"`
}

type RouteZoneDTO struct {
	Center   LocationDTO `json:"center"`
	RadiusKm float64     `json:"radius_km" validate:"gt=0"`
}

type RegisterDelivererRequest struct {
	// ID defaults to the caller.
	ID                  string         `json:"id" validate:"omitempty,uuid"`
	Name                string         `json:"name" validate:"required,max=200"`
	Verified            bool           `json:"verified"`
	Location            *LocationDTO   `json:"location"`
	PreferredCategories []string       `json:"preferred_categories"`
	RouteZones          []RouteZoneDTO `json:"route_zones" validate:"dive"`
}

type UpdateDelivererLocationRequest struct {
	// A null location clears the idle position.
	Location *LocationDTO `json:"location"`
}

type AvailabilityRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
	// IsAvailable defaults to true.
	IsAvailable *bool `json:"is_available"`
}

// ================= responses =================

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func locationResponse(l *kernel.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{Latitude: l.Latitude(), Longitude: l.Longitude()}
}

func idString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

type StatusChangeResponse struct {
	ID               string            `json:"id"`
	DeliveryID       string            `json:"delivery_id,omitempty"`
	Status           string            `json:"status"`
	PreviousStatus   string            `json:"previous_status"`
	ChangedAt        time.Time         `json:"changed_at"`
	ActorID          string            `json:"actor_id"`
	Location         *LocationResponse `json:"location,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	CustomerNotified bool              `json:"customer_notified"`
}

func statusChangeFromEntry(e *delivery.StatusHistoryEntry) StatusChangeResponse {
	return StatusChangeResponse{
		ID:               e.ID().String(),
		DeliveryID:       e.DeliveryID().String(),
		Status:           e.Status().String(),
		PreviousStatus:   e.PreviousStatus().String(),
		ChangedAt:        e.Timestamp(),
		ActorID:          e.ActorID().String(),
		Location:         locationResponse(e.Location()),
		Notes:            e.Notes(),
		Reason:           e.Reason(),
		CustomerNotified: e.CustomerNotified(),
	}
}

func statusChangeFromView(v queries.GetStatusHistoryQueryResponse) StatusChangeResponse {
	return StatusChangeResponse{
		ID:               v.ID.String(),
		Status:           v.Status.String(),
		PreviousStatus:   v.PreviousStatus.String(),
		ChangedAt:        v.ChangedAt,
		ActorID:          v.ActorID.String(),
		Location:         locationResponse(v.Location),
		Notes:            v.Notes,
		Reason:           v.Reason,
		CustomerNotified: v.CustomerNotified,
	}
}

type ETAResponse struct {
	EstimatedTime       time.Time  `json:"estimated_time"`
	PreviousEstimate    *time.Time `json:"previous_estimate,omitempty"`
	DistanceRemainingKm *float64   `json:"distance_remaining_km,omitempty"`
	TrafficCondition    string     `json:"traffic_condition"`
	Confidence          float64    `json:"confidence"`
	CalculationType     string     `json:"calculation_type"`
	CalculatedAt        time.Time  `json:"calculated_at"`
}

func etaFromDomain(e *delivery.ETA) *ETAResponse {
	if e == nil {
		return nil
	}
	return &ETAResponse{
		EstimatedTime:       e.EstimatedTime(),
		PreviousEstimate:    e.PreviousEstimate(),
		DistanceRemainingKm: e.DistanceRemainingKm(),
		TrafficCondition:    string(e.TrafficCondition()),
		Confidence:          e.Confidence(),
		CalculationType:     string(e.CalculationType()),
		CalculatedAt:        e.CalculatedAt(),
	}
}

func etaFromView(v *queries.ETAView) *ETAResponse {
	if v == nil {
		return nil
	}
	return &ETAResponse{
		EstimatedTime:       v.EstimatedTime,
		PreviousEstimate:    v.PreviousEstimate,
		DistanceRemainingKm: v.DistanceRemainingKm,
		TrafficCondition:    string(v.TrafficCondition),
		Confidence:          v.Confidence,
		CalculationType:     string(v.CalculationType),
		CalculatedAt:        v.CalculatedAt,
	}
}

type LocationPingResponse struct {
	Status string `json:"status"`
	// Advanced is true when the ping moved the delivery forward.
	Advanced bool `json:"advanced"`
	// DistanceMeters is the distance to the destination, omitted when unknown.
	DistanceMeters *float64     `json:"distance_meters,omitempty"`
	ETA            *ETAResponse `json:"eta,omitempty"`
}

func locationPingFromResult(r commands.IngestLocationResult) LocationPingResponse {
	resp := LocationPingResponse{
		Status:   r.Status.String(),
		Advanced: r.Advanced,
		ETA:      etaFromDomain(r.ETA),
	}
	if r.DistanceMeters >= 0 {
		d := r.DistanceMeters
		resp.DistanceMeters = &d
	}
	return resp
}

type PositionResponse struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	Altitude   *float64  `json:"altitude,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func positionFromView(v queries.PositionView) PositionResponse {
	return PositionResponse{
		Latitude:   v.Location.Latitude(),
		Longitude:  v.Location.Longitude(),
		Accuracy:   v.Accuracy,
		Heading:    v.Heading,
		Speed:      v.Speed,
		Altitude:   v.Altitude,
		RecordedAt: v.RecordedAt,
	}
}

type TrackingResponse struct {
	ID                 string            `json:"id"`
	TrackingCode       string            `json:"tracking_code"`
	Status             string            `json:"status"`
	ClientID           string            `json:"client_id"`
	DelivererID        *string           `json:"deliverer_id,omitempty"`
	PickupAddress      string            `json:"pickup_address"`
	DropoffAddress     string            `json:"dropoff_address"`
	CurrentLocation    *LocationResponse `json:"current_location,omitempty"`
	LastLocationUpdate *time.Time        `json:"last_location_update,omitempty"`
	EstimatedArrival   *time.Time        `json:"estimated_arrival,omitempty"`
	ActualArrival      *time.Time        `json:"actual_arrival,omitempty"`
	TrackingEnabled    bool              `json:"tracking_enabled"`
	ETA                *ETAResponse      `json:"eta,omitempty"`
	LastPosition       *PositionResponse `json:"last_position,omitempty"`
}

func trackingFromView(v *queries.GetDeliveryTrackingQueryResponse) TrackingResponse {
	resp := TrackingResponse{
		ID:                 v.ID.String(),
		TrackingCode:       v.TrackingCode,
		Status:             v.Status.String(),
		ClientID:           v.ClientID.String(),
		DelivererID:        idString(v.DelivererID),
		PickupAddress:      v.PickupAddress,
		DropoffAddress:     v.DropoffAddress,
		CurrentLocation:    locationResponse(v.CurrentLocation),
		LastLocationUpdate: v.LastLocationUpdate,
		EstimatedArrival:   v.EstimatedArrival,
		ActualArrival:      v.ActualArrival,
		TrackingEnabled:    v.TrackingEnabled,
		ETA:                etaFromView(v.ETA),
	}
	if v.LastPosition != nil {
		p := positionFromView(*v.LastPosition)
		resp.LastPosition = &p
	}
	return resp
}

type ActiveDeliveryResponse struct {
	ID                 string            `json:"id"`
	TrackingCode       string            `json:"tracking_code"`
	Status             string            `json:"status"`
	ClientID           string            `json:"client_id"`
	DelivererID        *string           `json:"deliverer_id,omitempty"`
	PickupAddress      string            `json:"pickup_address"`
	DropoffAddress     string            `json:"dropoff_address"`
	CurrentLocation    *LocationResponse `json:"current_location,omitempty"`
	LastLocationUpdate *time.Time        `json:"last_location_update,omitempty"`
	EstimatedArrival   *time.Time        `json:"estimated_arrival,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

func activeDeliveryFromView(v queries.GetActiveDeliveriesQueryResponse) ActiveDeliveryResponse {
	return ActiveDeliveryResponse{
		ID:                 v.ID.String(),
		TrackingCode:       v.TrackingCode,
		Status:             v.Status.String(),
		ClientID:           v.ClientID.String(),
		DelivererID:        idString(v.DelivererID),
		PickupAddress:      v.PickupAddress,
		DropoffAddress:     v.DropoffAddress,
		CurrentLocation:    locationResponse(v.CurrentLocation),
		LastLocationUpdate: v.LastLocationUpdate,
		EstimatedArrival:   v.EstimatedArrival,
		CreatedAt:          v.CreatedAt,
	}
}

type CheckpointResponse struct {
	ID          string            `json:"id"`
	DeliveryID  string            `json:"delivery_id"`
	Type        string            `json:"type"`
	Location    *LocationResponse `json:"location,omitempty"`
	Address     string            `json:"address,omitempty"`
	PlannedTime *time.Time        `json:"planned_time,omitempty"`
	ActualTime  time.Time         `json:"actual_time"`
	CompletedBy string            `json:"completed_by"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Signature   string            `json:"signature_url,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

func checkpointFromDomain(c *delivery.Checkpoint) CheckpointResponse {
	return CheckpointResponse{
		ID:          c.ID().String(),
		DeliveryID:  c.DeliveryID().String(),
		Type:        string(c.Type()),
		Location:    locationResponse(c.Location()),
		Address:     c.Address(),
		PlannedTime: c.PlannedTime(),
		ActualTime:  c.ActualTime(),
		CompletedBy: c.CompletedBy().String(),
		PhotoURL:    c.Proofs().PhotoURL,
		Signature:   c.Proofs().SignatureURL,
		Notes:       c.Notes(),
		Metadata:    c.Metadata(),
	}
}

type ConfirmationCodeResponse struct {
	DeliveryID string    `json:"delivery_id"`
	Code       string    `json:"code"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type RatingResponse struct {
	ID         string    `json:"id"`
	DeliveryID string    `json:"delivery_id"`
	RaterID    string    `json:"rater_id"`
	TargetID   string    `json:"target_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type AddressResponse struct {
	Text     string            `json:"text"`
	Location *LocationResponse `json:"location,omitempty"`
}

func addressResponse(a kernel.Address) AddressResponse {
	return AddressResponse{Text: a.Text(), Location: locationResponse(a.Location())}
}

type AnnouncementResponse struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"client_id"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	Pickup         AddressResponse `json:"pickup"`
	Dropoff        AddressResponse `json:"dropoff"`
	Status         string          `json:"status"`
	SuggestedPrice *float64        `json:"suggested_price,omitempty"`
	ScheduledDate  *time.Time      `json:"scheduled_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func announcementFromDomain(a *announcement.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:             a.ID().String(),
		ClientID:       a.ClientID().String(),
		Title:          a.Title(),
		Category:       a.Category(),
		Pickup:         addressResponse(a.Pickup()),
		Dropoff:        addressResponse(a.Dropoff()),
		Status:         a.Status().String(),
		SuggestedPrice: a.SuggestedPrice(),
		ScheduledDate:  a.ScheduledDate(),
		CreatedAt:      a.CreatedAt(),
	}
}

type ScoresResponse struct {
	Distance     float64 `json:"distance"`
	Rating       float64 `json:"rating"`
	Availability float64 `json:"availability"`
	Preference   float64 `json:"preference"`
	Route        float64 `json:"route"`
}

func scoresResponse(s matching.Scores) ScoresResponse {
	return ScoresResponse{
		Distance:     s.Distance,
		Rating:       s.Rating,
		Availability: s.Availability,
		Preference:   s.Preference,
		Route:        s.Route,
	}
}

type CandidateResponse struct {
	ID               string         `json:"id"`
	AnnouncementID   string         `json:"announcement_id,omitempty"`
	DelivererID      string         `json:"deliverer_id"`
	DelivererName    string         `json:"deliverer_name,omitempty"`
	Scores           ScoresResponse `json:"scores"`
	TotalScore       float64        `json:"total_score"`
	DistanceKm       *float64       `json:"distance_km,omitempty"`
	EstimatedMinutes *int           `json:"estimated_minutes,omitempty"`
	IsInRoute        bool           `json:"is_in_route"`
	IsAvailable      bool           `json:"is_available"`
	Status           string         `json:"status"`
	CalculatedAt     time.Time      `json:"calculated_at"`
	RespondedAt      *time.Time     `json:"responded_at,omitempty"`
}

func candidateFromDomain(c *matching.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:               c.ID().String(),
		AnnouncementID:   c.AnnouncementID().String(),
		DelivererID:      c.DelivererID().String(),
		Scores:           scoresResponse(c.Scores()),
		TotalScore:       c.TotalScore(),
		DistanceKm:       c.DistanceKm(),
		EstimatedMinutes: c.EstimatedMinutes(),
		IsInRoute:        c.IsInRoute(),
		IsAvailable:      c.IsAvailable(),
		Status:           c.Status().String(),
		CalculatedAt:     c.CalculatedAt(),
		RespondedAt:      c.RespondedAt(),
	}
}

func candidateFromView(v queries.GetMatchCandidatesQueryResponse) CandidateResponse {
	return CandidateResponse{
		ID:               v.ID.String(),
		DelivererID:      v.DelivererID.String(),
		DelivererName:    v.DelivererName,
		Scores:           scoresResponse(v.Scores),
		TotalScore:       v.TotalScore,
		DistanceKm:       v.DistanceKm,
		EstimatedMinutes: v.EstimatedMinutes,
		IsInRoute:        v.IsInRoute,
		IsAvailable:      v.IsAvailable,
		Status:           v.Status.String(),
		CalculatedAt:     v.CalculatedAt,
		RespondedAt:      v.RespondedAt,
	}
}

type DeliverySummaryResponse struct {
	ID             string  `json:"id"`
	AnnouncementID string  `json:"announcement_id"`
	TrackingCode   string  `json:"tracking_code"`
	Status         string  `json:"status"`
	ClientID       string  `json:"client_id"`
	DelivererID    *string `json:"deliverer_id,omitempty"`
	Price          float64 `json:"price"`
}

type MatchResponseResponse struct {
	Candidate CandidateResponse        `json:"candidate"`
	Delivery  *DeliverySummaryResponse `json:"delivery,omitempty"`
}

func matchResponseFromResult(r commands.RespondToMatchResult) MatchResponseResponse {
	resp := MatchResponseResponse{Candidate: candidateFromDomain(r.Candidate)}
	if d := r.Delivery; d != nil {
		resp.Delivery = &DeliverySummaryResponse{
			ID:             d.ID().String(),
			AnnouncementID: d.AnnouncementID().String(),
			TrackingCode:   d.TrackingCode(),
			Status:         d.Status().String(),
			ClientID:       d.ClientID().String(),
			DelivererID:    idString(d.DelivererID()),
			Price:          d.Price(),
		}
	}
	return resp
}

type AvailabilityResponse struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	IsAvailable bool      `json:"is_available"`
}

type RouteZoneResponse struct {
	Center   LocationResponse `json:"center"`
	RadiusKm float64          `json:"radius_km"`
}

type DelivererResponse struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	IsActive            bool                   `json:"is_active"`
	IsVerified          bool                   `json:"is_verified"`
	Location            *LocationResponse      `json:"location,omitempty"`
	PreferredCategories []string               `json:"preferred_categories"`
	AverageRating       *float64               `json:"average_rating,omitempty"`
	RatingsCount        int                    `json:"ratings_count"`
	Availability        []AvailabilityResponse `json:"availability"`
	RouteZones          []RouteZoneResponse    `json:"route_zones"`
}

func delivererFromDomain(d *deliverer.Deliverer) DelivererResponse {
	resp := DelivererResponse{
		ID:                  d.ID().String(),
		Name:                d.Name(),
		IsActive:            d.IsActive(),
		IsVerified:          d.IsVerified(),
		Location:            locationResponse(d.Location()),
		PreferredCategories: append([]string{}, d.PreferredCategories()...),
		AverageRating:       d.AverageRating(),
		RatingsCount:        d.RatingsCount(),
		Availability:        []AvailabilityResponse{},
		RouteZones:          []RouteZoneResponse{},
	}
	for _, w := range d.Availability() {
		resp.Availability = append(resp.Availability, AvailabilityResponse{
			ID:          w.ID().String(),
			Start:       w.Start(),
			End:         w.End(),
			IsAvailable: w.IsAvailable(),
		})
	}
	for _, z := range d.RouteZones() {
		center := z.Center()
		resp.RouteZones = append(resp.RouteZones, RouteZoneResponse{
			Center:   *locationResponse(&center),
			RadiusKm: z.RadiusKm(),
		})
	}
	return resp
}
