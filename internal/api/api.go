package api

import (
	"compliancehub/internal/config"
	"compliancehub/internal/gate"
	"compliancehub/internal/scheduler"
	"compliancehub/internal/storage"
)

type API struct {
	Storage *storage.Storage
	Gate    *gate.Gate
	Sched   *scheduler.Scheduler
	Cfg     *config.Config
}

func NewAPI(db *storage.Storage, g *gate.Gate, sched *scheduler.Scheduler, cfg *config.Config) *API {
	return &API{
		Storage: db,
		Gate:    g,
		Sched:   sched,
		Cfg:     cfg,
	}
}
