package services

import (
	"context"
	"testing"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/jobs"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_RunNow(t *testing.T) {
	s := seededStore()
	late := seedCredit(s)
	credits, repos := newCreditService(s, day("2026-02-20"))

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svc := NewJobService(worker, credits, repos.RefreshToken, NewNotificationService(repos.Notification, repos.User))

	require.NoError(t, svc.RunNow(JobScanDefaults))
	assert.Eventually(t, func() bool {
		return s.credit(late.ID).Status == models.CreditStatusDefaulted
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return svc.GetStatus().CompletedJobs == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, svc.GetStatus().FailedJobs)
	require.Len(t, s.notificationsOf(adminID), 1)
	assert.Equal(t, models.NotificationTypeCreditDefaulted, *s.notificationsOf(adminID)[0].NotificationType)

	assert.True(t, IsKind(svc.RunNow("purge_everything"), KindNotFound))
}

func TestJobService_PurgeRefreshTokens(t *testing.T) {
	s := seededStore()
	expired := day("2026-01-01")
	valid := day("2026-03-01")
	s.tokens["viejo"] = models.RefreshToken{UserID: collectorID, Token: "viejo", ExpiresAt: &expired}
	s.tokens["vigente"] = models.RefreshToken{UserID: collectorID, Token: "vigente", ExpiresAt: &valid}
	s.tokens["sin-vencimiento"] = models.RefreshToken{UserID: collectorID, Token: "sin-vencimiento"}

	credits, repos := newCreditService(s, day("2026-02-01"))
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svc := NewJobService(worker, credits, repos.RefreshToken, nil)
	svc.now = fixedClock(day("2026-02-01"))

	require.NoError(t, svc.purgeRefreshTokens(context.Background()))
	assert.NotContains(t, s.tokens, "viejo")
	assert.Contains(t, s.tokens, "vigente")
	assert.Contains(t, s.tokens, "sin-vencimiento")
}
