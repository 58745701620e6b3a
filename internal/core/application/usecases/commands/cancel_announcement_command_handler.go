package commands

import (
	"context"
)

// CancelAnnouncementCommandHandler withdraws an OPEN announcement. Matched
// announcements are cancelled through their delivery instead.
type CancelAnnouncementCommandHandler struct {
	uowFactory AnnouncementUoWFactory
}

func NewCancelAnnouncementCommandHandler(uowFactory AnnouncementUoWFactory) CancelAnnouncementCommandHandler {
	return CancelAnnouncementCommandHandler{uowFactory: uowFactory}
}

func (h CancelAnnouncementCommandHandler) Handle(ctx context.Context, cmd CancelAnnouncementCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, err := uow.AnnouncementRepository().Get(ctx, cmd.AnnouncementID())
	if err != nil {
		return err
	}
	if err = a.Cancel(cmd.Actor()); err != nil {
		return err
	}
	if err = uow.AnnouncementRepository().Update(ctx, a); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
