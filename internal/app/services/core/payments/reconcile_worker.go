package payments

import (
	"context"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reconcileLeaderLockKey   = "lock:payment_reconcile:leader"
	reconcileLeaderLockTTL   = 2 * time.Minute
	defaultReconcileCronSpec = "@every 5m"
	defaultReconcileBatch    = 50
	defaultReconcileStale    = 15 * time.Minute
)

// ReconcileWorker periodically asks the gateway about bookings that have
// been waiting on a callback for too long.
type ReconcileWorker struct {
	log               *zap.Logger
	cfg               *config.InternalConfig
	locker            contracts.LockerService
	bookingRepository contracts.BookingRepository
	paymentUsecase    contracts.PaymentUsecase
	now               func() time.Time
	cron              *cron.Cron
	runCtx            context.Context
	cancel            context.CancelFunc
}

func NewReconcileWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, bookingRepository contracts.BookingRepository, paymentUsecase contracts.PaymentUsecase) *ReconcileWorker {
	return &ReconcileWorker{
		log:               log,
		cfg:               cfg,
		locker:            lockerSvc,
		bookingRepository: bookingRepository,
		paymentUsecase:    paymentUsecase,
		now:               time.Now,
	}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	spec := w.cfg.App.ReconcileWorkerCronSpec
	if spec == "" {
		spec = defaultReconcileCronSpec
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("payments.reconcileWorker: invalid cron spec, falling back to default",
			zap.String("spec", spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(defaultReconcileCronSpec, func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop waits for an in-flight run to finish.
func (w *ReconcileWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	requestID := utils.GenerateRequestID()
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, requestID)

	acquired, token, err := w.locker.TryLock(ctx, reconcileLeaderLockKey, reconcileLeaderLockTTL)
	if err != nil {
		w.log.Warn("payments.reconcileWorker: leader lock attempt failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}
	if !acquired {
		w.log.Info("payments.reconcileWorker: leader lock held by another instance",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return
	}
	defer func() {
		if err := w.locker.Unlock(context.Background(), reconcileLeaderLockKey, token); err != nil {
			w.log.Warn("payments.reconcileWorker: failed to release leader lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}()

	staleAfter := time.Duration(w.cfg.App.ReconcileStaleAfterInSeconds) * time.Second
	if staleAfter <= 0 {
		staleAfter = defaultReconcileStale
	}
	batch := w.cfg.App.ReconcileBatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}

	bookings, err := w.bookingRepository.ListStalePending(ctx, w.now().Add(-staleAfter), batch)
	if err != nil {
		w.log.Warn("payments.reconcileWorker: listing stale bookings failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}

	reconciled := 0
	for _, booking := range bookings {
		if ctx.Err() != nil {
			return
		}
		// Stamped first so a booking the gateway keeps reporting as pending,
		// or that keeps failing, yields its slot to the rest of the backlog.
		if err := w.bookingRepository.MarkReconcileAttempt(ctx, booking.ID, w.now()); err != nil {
			w.log.Warn("payments.reconcileWorker: stamping reconcile attempt failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingBookingIDKey, booking.ID),
				zap.Error(err),
			)
		}
		_, err := w.paymentUsecase.ReconcilePayment(ctx, booking.ID)
		if err != nil {
			w.log.Warn("payments.reconcileWorker: reconcile failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingBookingIDKey, booking.ID),
				zap.Error(err),
			)
			continue
		}
		reconciled++
	}

	w.log.Info("payments.reconcileWorker: run finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("candidates", len(bookings)),
		zap.Int("reconciled", reconciled),
	)
}
