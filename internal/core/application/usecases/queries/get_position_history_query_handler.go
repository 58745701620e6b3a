package queries

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type GetPositionHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetPositionHistoryQueryHandler(db *gorm.DB) GetPositionHistoryQueryHandler {
	return GetPositionHistoryQueryHandler{db: db}
}

func (h GetPositionHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetPositionHistoryQuery,
) ([]PositionView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := authorizeViewer(ctx, h.db, query.DeliveryID(), query.Actor(), "view position history"); err != nil {
		return nil, err
	}

	tx := h.db.WithContext(ctx).
		Table("delivery_positions").
		Select("latitude, longitude, accuracy, heading, speed, altitude, recorded_at").
		Where("delivery_id = ?", query.DeliveryID().Bytes())
	if from := query.From(); from != nil {
		tx = tx.Where("recorded_at >= ?", *from)
	}
	if to := query.To(); to != nil {
		tx = tx.Where("recorded_at <= ?", *to)
	}

	rows, err := tx.Order("recorded_at, id").Limit(query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make([]PositionView, 0)
	for rows.Next() {
		var (
			p          PositionView
			lat, lng   float64
			recordedAt time.Time
		)
		if err = rows.Scan(&lat, &lng, &p.Accuracy, &p.Heading, &p.Speed, &p.Altitude, &recordedAt); err != nil {
			return nil, err
		}
		loc, locErr := nullableLocation(&lat, &lng)
		if locErr != nil {
			return nil, locErr
		}
		p.Location = *loc
		p.RecordedAt = recordedAt
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}
