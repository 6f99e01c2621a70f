package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/loopdeck/account-transfer/pkg/tools"
	"github.com/loopdeck/account-transfer/pkg/transfer/services"
)

// ScheduleExportCleanup sets up a cron job that purges expired export
// artifacts every day.
func ScheduleExportCleanup(ctx context.Context, svc *services.ExportService) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "export_cleanup", func(ctx context.Context) error {
			return svc.Cleanup(ctx)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}
