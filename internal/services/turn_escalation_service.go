package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/ips-ux/maintenance-manager/internal/config"
	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// TurnEscalationService sweeps open turns and alerts the assigned
// technician the first time a turn goes past its target date. The
// overdue_notified_at stamp keeps the alert one-shot.
type TurnEscalationService struct {
	cfg            *config.Config
	turnRepo       repositories.TurnRepository
	userRepo       repositories.UserRepository
	activity       *ActivityService
	twilioClient   *twilio.RestClient
	sendgridClient *sendgrid.Client
}

func NewTurnEscalationService(
	cfg *config.Config,
	turnRepo repositories.TurnRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
) *TurnEscalationService {
	var twClient *twilio.RestClient
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		twClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	var sgClient *sendgrid.Client
	if cfg.SendGridAPIKey != "" {
		sgClient = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}

	return &TurnEscalationService{
		cfg:            cfg,
		turnRepo:       turnRepo,
		userRepo:       userRepo,
		activity:       activity,
		twilioClient:   twClient,
		sendgridClient: sgClient,
	}
}

// RunOverdueSweep checks every In Progress turn against the clock and
// notifies on the first overdue observation.
func (s *TurnEscalationService) RunOverdueSweep(ctx context.Context) error {
	utils.Logger.Debug("Running overdue-turn sweep...")

	open, err := s.turnRepo.ListByStatuses(ctx,
		[]models.TurnStatusType{models.TurnStatusInProgress},
		constants.RecalcBatchLimit)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, t := range open {
		days := daysOverdue(t.TargetCompletionDate, now)
		if days == 0 || t.OverdueNotifiedAt != nil {
			continue
		}
		s.escalateTurn(ctx, t, days, now)
	}
	return nil
}

func (s *TurnEscalationService) escalateTurn(ctx context.Context, t *models.Turn, days int, now time.Time) {
	subject := formatOverdueSubject(t.UnitNumber, days)
	plainText := fmt.Sprintf(
		"Turn for unit %s is %d day(s) past its target of %s. Progress: %d of %d tasks.",
		t.UnitNumber, days, t.TargetCompletionDate.Format("Jan 2, 2006"),
		t.CompletedTasks, t.TotalTasks,
	)

	tech, err := s.userRepo.GetByID(ctx, t.AssignedTechnicianID)
	if err != nil {
		utils.Logger.WithError(err).Warnf("overdue sweep: technician lookup failed for turn %s", t.ID)
	}
	if tech != nil {
		if tech.Phone != "" {
			sendSMS(s.twilioClient, s.cfg.LDFlag_TwilioFromPhone, tech.Phone, subject+" :: "+plainText)
		}
		if tech.Email != "" {
			htmlBody := fmt.Sprintf(overdueTurnEmailHTML,
				subject, t.UnitNumber, days,
				t.TargetCompletionDate.Format("Jan 2, 2006"),
				t.ProgressPercentage, t.CompletedTasks, t.TotalTasks,
				t.AssignedTechnicianName,
			)
			sendEmail(s.sendgridClient, s.cfg.LDFlag_SendgridFromEmail,
				tech.DisplayName, tech.Email, subject, plainText, htmlBody,
				s.cfg.LDFlag_SendgridSandboxMode)
		}
	}

	if err := s.turnRepo.MarkOverdueNotified(ctx, t.ID, now); err != nil {
		utils.Logger.WithError(err).Warnf("overdue sweep: failed to stamp turn %s", t.ID)
		return
	}

	s.activity.Log(ctx, dtos.SystemActor(), models.ActionTurnOverdue,
		fmt.Sprintf("Turn for unit %s is %d day(s) overdue", t.UnitNumber, days),
		"turn", t.ID, t.UnitNumber,
		map[string]any{"days_overdue": days})
}
