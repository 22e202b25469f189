package model

// DashboardSnapshot is the aggregate loaded when the owner opens the app.
type DashboardSnapshot struct {
	TodayAppointments []*Appointment     `json:"today_appointments"`
	PendingCount      int                `json:"pending_count"`
	ActiveCustomers   int                `json:"active_customers"`
	CatalogSize       int                `json:"catalog_size"`
	TodayMetrics      *AppointmentMetric `json:"today_metrics"`
}
