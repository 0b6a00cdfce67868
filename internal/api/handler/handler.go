package handler

import (
	"caredesk/backend/internal/authz"
	"caredesk/backend/internal/escalation"
	"caredesk/backend/internal/lifecycle"
	"caredesk/backend/internal/localization"
	"caredesk/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// Handler wires the HTTP surface to the complaint services.
type Handler struct {
	Storage   storage.Storage
	Lifecycle *lifecycle.Service
	Sweeper   *escalation.Sweeper
	Guard     *authz.Guard
	Localizer *localization.Localizer
	Log       *logrus.Logger

	jwtSecret []byte
}

func NewHandler(s storage.Storage, lc *lifecycle.Service, sw *escalation.Sweeper, g *authz.Guard, loc *localization.Localizer, log *logrus.Logger, jwtSecret string) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Storage:   s,
		Lifecycle: lc,
		Sweeper:   sw,
		Guard:     g,
		Localizer: loc,
		Log:       log,
		jwtSecret: []byte(jwtSecret),
	}
}
