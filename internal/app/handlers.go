package app

import (
	"net/http"

	"go.uber.org/zap"

	trackingdto "worktrack/internal/modules/tracking/dto"
	"worktrack/internal/platform/httpx"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Name          string                   `json:"name"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
	Clients       int                      `json:"clients"`
	Tracking      trackingdto.StatusOutput `json:"tracking"`
	Settings      SettingsSummary          `json:"settings"`
}

type SettingsSummary struct {
	CommuteDays       []string `json:"commute_days"`
	OutboundWindow    string   `json:"outbound_window"`
	ReturnWindow      string   `json:"return_window"`
	WorkWindow        string   `json:"work_window"`
	BeaconConfigured  bool     `json:"beacon_configured"`
	WeeklyTargetHours float64  `json:"weekly_target_hours"`
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.opts.Tracking.Status(r.Context())
	if err != nil {
		a.log.Error("status", zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	s := a.opts.Settings.Current()
	httpx.WriteJSON(w, http.StatusOK, StatusResponse{
		Name:          "worktrack",
		UptimeSeconds: a.uptimeSeconds(),
		Clients:       a.opts.Hub.Clients(),
		Tracking:      status,
		Settings: SettingsSummary{
			CommuteDays:       s.CommuteDays.Names(),
			OutboundWindow:    s.Windows.Outbound.String(),
			ReturnWindow:      s.Windows.Return.String(),
			WorkWindow:        s.Windows.Work.String(),
			BeaconConfigured:  s.Beacon.UUID != "",
			WeeklyTargetHours: s.WeeklyTargetHours,
		},
	})
}
