package jobs

import (
	"fmt"

	"github.com/startupai/startupai-backend/internal/platform/logger"
	"github.com/startupai/startupai-backend/internal/services"
)

// AnalysisRunHandler executes queued strategic analysis runs. The heavy
// lifting lives in AnalysisService.Run; this handler only bridges the job
// lifecycle around it.
type AnalysisRunHandler struct {
	svc services.AnalysisService
	log *logger.Logger
}

func NewAnalysisRunHandler(svc services.AnalysisService, baseLog *logger.Logger) *AnalysisRunHandler {
	return &AnalysisRunHandler{
		svc: svc,
		log: baseLog.With("handler", "AnalysisRun"),
	}
}

func (h *AnalysisRunHandler) Type() string { return services.JobTypeAnalysisRun }

func (h *AnalysisRunHandler) Run(jc *Context) error {
	reportID, ok := jc.PayloadUUID("report_id")
	if !ok {
		return fmt.Errorf("payload missing report_id")
	}

	// Premium-depth runs park until the analysis_depth checkpoint is
	// approved; the approval decision requeues them.
	if jc.PayloadString("depth") == services.AnalysisDepthPremium {
		approved, err := h.svc.DepthApproved(jc.Ctx, reportID)
		if err != nil {
			return fmt.Errorf("check depth approval for report %s: %w", reportID, err)
		}
		if !approved {
			h.log.Info("analysis run parked pending approval", "report", reportID.String())
			jc.Wait("approval")
			return nil
		}
	}

	jc.Progress("generate", 10)
	if err := h.svc.Run(jc.Ctx, reportID); err != nil {
		return fmt.Errorf("run analysis for report %s: %w", reportID, err)
	}

	jc.Succeed("done", map[string]any{"report_id": reportID.String()})
	return nil
}
