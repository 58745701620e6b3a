package delivererrepo_test

import (
	"context"
	"testing"
	"time"

	"ecodeli/internal/adapters/out/postgres/delivererrepo"
	"ecodeli/internal/adapters/out/postgres/pgtest"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type DelivererRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *delivererrepo.GormDelivererRepository
}

func (suite *DelivererRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *DelivererRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Reset(context.Background()))
	suite.repository = delivererrepo.NewGormDelivererRepository(suite.pg.DB)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Stop(context.Background()))
}

func (suite *DelivererRepositoryIntegrationTestSuite) location(lat, lng float64) kernel.Location {
	loc, err := kernel.NewLocation(lat, lng)
	suite.Require().NoError(err)
	return loc
}

func (suite *DelivererRepositoryIntegrationTestSuite) newDeliverer(verified bool) *deliverer.Deliverer {
	home := suite.location(48.8606, 2.3376)
	d, err := deliverer.NewDeliverer(kernel.NewUUID(), "Sam", verified, &home, []string{"food", "books"})
	suite.Require().NoError(err)
	return d
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestAddAndGet_WithWindowsAndZones() {
	ctx := context.Background()
	d := suite.newDeliverer(true)
	start := time.Now().UTC().Truncate(time.Microsecond)
	w, err := deliverer.NewAvailabilityWindow(kernel.NewUUID(), start, start.Add(4*time.Hour), true)
	suite.Require().NoError(err)
	suite.Require().NoError(d.AddAvailability(w))
	zone, err := deliverer.NewRouteZone(suite.location(48.85, 2.35), 5)
	suite.Require().NoError(err)
	d.AddRouteZone(zone)

	suite.Require().NoError(suite.repository.Add(ctx, d))

	got, err := suite.repository.Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal("Sam", got.Name())
	suite.True(got.IsEligible())
	suite.Equal([]string{"FOOD", "BOOKS"}, got.PreferredCategories())
	suite.Require().NotNil(got.Location())
	suite.InDelta(48.8606, got.Location().Latitude(), 1e-9)
	suite.Require().Len(got.Availability(), 1)
	suite.True(got.Availability()[0].Start().Equal(start))
	suite.Require().Len(got.RouteZones(), 1)
	suite.InDelta(5.0, got.RouteZones()[0].RadiusKm(), 1e-9)
	suite.Nil(got.AverageRating())
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestAdd_Twice() {
	ctx := context.Background()
	d := suite.newDeliverer(false)
	suite.Require().NoError(suite.repository.Add(ctx, d))
	suite.Require().ErrorIs(suite.repository.Add(ctx, d), errs.ErrValueIsInvalid)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestUpdate_ReplacesChildren() {
	ctx := context.Background()
	d := suite.newDeliverer(false)
	zone, err := deliverer.NewRouteZone(suite.location(48.85, 2.35), 5)
	suite.Require().NoError(err)
	d.AddRouteZone(zone)
	suite.Require().NoError(suite.repository.Add(ctx, d))

	got, err := suite.repository.Get(ctx, d.ID())
	suite.Require().NoError(err)
	got.Verify()
	suite.Require().NoError(got.ApplyRating(4))
	suite.Require().NoError(got.UpdateLocation(nil))
	other, err := deliverer.NewRouteZone(suite.location(48.90, 2.30), 2)
	suite.Require().NoError(err)
	got.AddRouteZone(other)
	suite.Require().NoError(suite.repository.Update(ctx, got))

	reloaded, err := suite.repository.Get(ctx, d.ID())
	suite.Require().NoError(err)
	suite.True(reloaded.IsVerified())
	suite.Nil(reloaded.Location())
	suite.Require().NotNil(reloaded.AverageRating())
	suite.InDelta(4.0, *reloaded.AverageRating(), 1e-9)
	suite.Equal(1, reloaded.RatingsCount())
	suite.Len(reloaded.RouteZones(), 2)

	var zones int64
	suite.Require().NoError(suite.pg.DB.Model(&delivererrepo.RouteZoneDTO{}).Count(&zones).Error)
	suite.Equal(int64(2), zones)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestUpdate_Unknown() {
	suite.Require().ErrorIs(suite.repository.Update(context.Background(), suite.newDeliverer(true)), errs.ErrObjectNotFound)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestGet_Unknown() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestGetForUpdate_BlocksSecondLocker() {
	ctx := context.Background()
	d := suite.newDeliverer(true)
	suite.Require().NoError(suite.repository.Add(ctx, d))

	first := suite.pg.DB.Begin()
	suite.Require().NoError(first.Error)
	defer first.Rollback()
	got, err := delivererrepo.NewGormDelivererRepository(first).GetForUpdate(ctx, d.ID())
	suite.Require().NoError(err)
	suite.Equal(d.ID(), got.ID())

	acquired := make(chan error, 1)
	go func() {
		second := suite.pg.DB.Begin()
		defer second.Rollback()
		_, lockErr := delivererrepo.NewGormDelivererRepository(second).GetForUpdate(ctx, d.ID())
		acquired <- lockErr
	}()

	select {
	case <-acquired:
		suite.Fail("second transaction locked a deliverer that is already locked")
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(first.Commit().Error)
	select {
	case lockErr := <-acquired:
		suite.NoError(lockErr)
	case <-time.After(5 * time.Second):
		suite.Fail("lock was not released on commit")
	}
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestGetForUpdate_Unknown() {
	_, err := suite.repository.GetForUpdate(context.Background(), kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *DelivererRepositoryIntegrationTestSuite) TestGetAllEligible() {
	ctx := context.Background()
	eligible := suite.newDeliverer(true)
	unverified := suite.newDeliverer(false)
	inactive := suite.newDeliverer(true)
	inactive.SetActive(false)
	for _, d := range []*deliverer.Deliverer{eligible, unverified, inactive} {
		suite.Require().NoError(suite.repository.Add(ctx, d))
	}

	got, err := suite.repository.GetAllEligible(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(eligible.ID(), got[0].ID())
}

func TestDelivererRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DelivererRepositoryIntegrationTestSuite))
}
