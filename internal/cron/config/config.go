package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Stale scan reaping, every 10 minutes
	CronScheduleReapStaleScans string `env:"CRON_SCHEDULE_REAP_STALE_SCANS" envDefault:"0 */10 * * * *"`
}
