// Package matchingrepo persists match candidates keyed by (announcement, deliverer).
package matchingrepo

import (
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"

	"github.com/google/uuid"
)

// MatchCandidateDTO represents a scored candidate and its response state.
type MatchCandidateDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	AnnouncementID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_candidates_pair,priority:1"`
	DelivererID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_candidates_pair,priority:2;index"`
	DistanceScore     float64   `gorm:"type:double precision;not null"`
	RatingScore       float64   `gorm:"type:double precision;not null"`
	AvailabilityScore float64   `gorm:"type:double precision;not null"`
	PreferenceScore   float64   `gorm:"type:double precision;not null"`
	RouteScore        float64   `gorm:"type:double precision;not null"`
	TotalScore        float64   `gorm:"type:double precision;not null"`
	DistanceKm        *float64  `gorm:"type:double precision"`
	IsInRoute         bool      `gorm:"not null"`
	IsAvailable       bool      `gorm:"not null"`
	Status            string    `gorm:"type:varchar(16);not null"`
	CalculatedAt      time.Time `gorm:"not null"`
	RespondedAt       *time.Time
}

// TableName overrides GORM's default "match_candidate_dtos".
func (MatchCandidateDTO) TableName() string {
	return "match_candidates"
}

// Models lists every table owned by this package, for migrations.
func Models() []any {
	return []any{&MatchCandidateDTO{}}
}

// scoreColumns are overwritten when a pair is scored again.
var scoreColumns = []string{
	"distance_score", "rating_score", "availability_score", "preference_score", "route_score",
	"total_score", "distance_km", "is_in_route", "is_available", "calculated_at",
}

func fromDomain(c *matching.Candidate) MatchCandidateDTO {
	s := c.Scores()
	return MatchCandidateDTO{
		ID:                c.ID().Bytes(),
		AnnouncementID:    c.AnnouncementID().Bytes(),
		DelivererID:       c.DelivererID().Bytes(),
		DistanceScore:     s.Distance,
		RatingScore:       s.Rating,
		AvailabilityScore: s.Availability,
		PreferenceScore:   s.Preference,
		RouteScore:        s.Route,
		TotalScore:        c.TotalScore(),
		DistanceKm:        c.DistanceKm(),
		IsInRoute:         c.IsInRoute(),
		IsAvailable:       c.IsAvailable(),
		Status:            c.Status().String(),
		CalculatedAt:      c.CalculatedAt(),
		RespondedAt:       c.RespondedAt(),
	}
}

func toDomain(dto MatchCandidateDTO) (*matching.Candidate, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	announcementID, err := kernel.UUIDFromBytes(dto.AnnouncementID[:])
	if err != nil {
		return nil, err
	}
	delivererID, err := kernel.UUIDFromBytes(dto.DelivererID[:])
	if err != nil {
		return nil, err
	}
	status, err := matching.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return matching.RestoreCandidate(matching.Params{
		ID:             id,
		AnnouncementID: announcementID,
		DelivererID:    delivererID,
		Scores: matching.Scores{
			Distance:     dto.DistanceScore,
			Rating:       dto.RatingScore,
			Availability: dto.AvailabilityScore,
			Preference:   dto.PreferenceScore,
			Route:        dto.RouteScore,
		},
		DistanceKm:   dto.DistanceKm,
		IsInRoute:    dto.IsInRoute,
		IsAvailable:  dto.IsAvailable,
		CalculatedAt: dto.CalculatedAt,
	}, status, dto.RespondedAt)
}
