package announcementrepo_test

import (
	"context"
	"testing"
	"time"

	"ecodeli/internal/adapters/out/postgres/announcementrepo"
	"ecodeli/internal/adapters/out/postgres/pgtest"
	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type AnnouncementRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *announcementrepo.GormAnnouncementRepository
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Reset(context.Background()))
	suite.repository = announcementrepo.NewGormAnnouncementRepository(suite.pg.DB)
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Stop(context.Background()))
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) newAnnouncement(createdAt time.Time) *announcement.Announcement {
	loc, err := kernel.NewLocation(48.8606, 2.3376)
	suite.Require().NoError(err)
	pickup, err := kernel.NewAddress("1 Rue de Rivoli, Paris", &loc)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewAddress("10 Avenue Foch, Paris", nil)
	suite.Require().NoError(err)
	price := 20.0

	a, err := announcement.NewAnnouncement(announcement.Params{
		ID: kernel.NewUUID(), ClientID: kernel.NewUUID(), Title: "Guitar", Category: "instruments",
		Pickup: pickup, Dropoff: dropoff, SuggestedPrice: &price,
	}, createdAt)
	suite.Require().NoError(err)
	return a
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()
	a := suite.newAnnouncement(time.Now().UTC())
	suite.Require().NoError(suite.repository.Add(ctx, a))

	got, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	suite.Equal(a.Title(), got.Title())
	suite.Equal("INSTRUMENTS", got.Category())
	suite.Equal(announcement.Open, got.Status())
	suite.True(got.Pickup().IsGeocoded())
	suite.False(got.Dropoff().IsGeocoded())
	suite.InDelta(20.0, got.PriceOrZero(), 1e-9)
	suite.Nil(got.ScheduledDate())
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TestGet_Unknown() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TestUpdate_Status() {
	ctx := context.Background()
	a := suite.newAnnouncement(time.Now().UTC())
	suite.Require().NoError(suite.repository.Add(ctx, a))

	suite.Require().NoError(a.MarkMatched())
	suite.Require().NoError(suite.repository.Update(ctx, a))

	got, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	suite.Equal(announcement.Matched, got.Status())
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TestUpdate_Unknown() {
	a := suite.newAnnouncement(time.Now())
	suite.Require().ErrorIs(suite.repository.Update(context.Background(), a), errs.ErrObjectNotFound)
}

func (suite *AnnouncementRepositoryIntegrationTestSuite) TestGetAllOpen_OldestFirstWithLimit() {
	ctx := context.Background()
	now := time.Now().UTC()
	oldest := suite.newAnnouncement(now.Add(-3 * time.Hour))
	middle := suite.newAnnouncement(now.Add(-2 * time.Hour))
	newest := suite.newAnnouncement(now.Add(-1 * time.Hour))
	matched := suite.newAnnouncement(now.Add(-4 * time.Hour))
	suite.Require().NoError(matched.MarkMatched())
	for _, a := range []*announcement.Announcement{newest, matched, oldest, middle} {
		suite.Require().NoError(suite.repository.Add(ctx, a))
	}

	got, err := suite.repository.GetAllOpen(ctx, 2)
	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.Equal(oldest.ID(), got[0].ID())
	suite.Equal(middle.ID(), got[1].ID())

	none, err := suite.repository.GetAllOpen(ctx, 0)
	suite.Require().NoError(err)
	suite.Empty(none)
}

func TestAnnouncementRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AnnouncementRepositoryIntegrationTestSuite))
}
