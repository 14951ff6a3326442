package repos

import (
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos/auth"
	"github.com/startupai/startupai-backend/internal/data/repos/jobs"
	"github.com/startupai/startupai-backend/internal/data/repos/project"
	"github.com/startupai/startupai-backend/internal/data/repos/report"
	"github.com/startupai/startupai-backend/internal/data/repos/session"
	"github.com/startupai/startupai-backend/internal/data/repos/user"
	"github.com/startupai/startupai-backend/internal/data/repos/validation"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ProjectRepo = project.ProjectRepo

type SessionRepo = session.SessionRepo
type TurnRepo = session.TurnRepo
type BriefRepo = session.BriefRepo

type EvidenceRepo = validation.EvidenceRepo
type GateReviewRepo = validation.GateReviewRepo
type ApprovalRepo = validation.ApprovalRepo

type ReportRepo = report.ReportRepo
type JobRunRepo = jobs.JobRunRepo

// Repos bundles every repository for wiring.
type Repos struct {
	User      UserRepo
	UserToken UserTokenRepo

	Project ProjectRepo

	Session SessionRepo
	Turn    TurnRepo
	Brief   BriefRepo

	Evidence   EvidenceRepo
	GateReview GateReviewRepo
	Approval   ApprovalRepo

	Report ReportRepo
	JobRun JobRunRepo
}

func New(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		User:      user.NewUserRepo(db, log),
		UserToken: auth.NewUserTokenRepo(db, log),

		Project: project.NewProjectRepo(db, log),

		Session: session.NewSessionRepo(db, log),
		Turn:    session.NewTurnRepo(db, log),
		Brief:   session.NewBriefRepo(db, log),

		Evidence:   validation.NewEvidenceRepo(db, log),
		GateReview: validation.NewGateReviewRepo(db, log),
		Approval:   validation.NewApprovalRepo(db, log),

		Report: report.NewReportRepo(db, log),
		JobRun: jobs.NewJobRunRepo(db, log),
	}
}
