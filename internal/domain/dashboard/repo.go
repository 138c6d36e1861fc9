package dashboard

// Source is the read side of the record store the dashboard aggregates.
type Source interface {
	DashboardStats(owner int64) Stats
	Alerts(owner int64) Alerts
	Snapshot(owner int64) Snapshot
}
