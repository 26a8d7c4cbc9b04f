package lifecycle

import (
	"fmt"

	"github.com/diewo77/jurigo/internal/models"
)

// forward lists the regular successor of every non-terminal status.
var forward = map[models.CompanyStatus]models.CompanyStatus{
	models.StatusDraft:             models.StatusPendingPayment,
	models.StatusPendingPayment:    models.StatusPaid,
	models.StatusPaid:              models.StatusDocumentsPending,
	models.StatusDocumentsPending:  models.StatusDocumentsUploaded,
	models.StatusDocumentsUploaded: models.StatusUnderReview,
	models.StatusUnderReview:       models.StatusSubmittedToGreffe,
	models.StatusSubmittedToGreffe: models.StatusCompleted,
}

// CanTransition reports whether from -> to is in the transition table.
// Staying in the same status is always allowed. Rejection is reachable from
// every status after draft that is not terminal.
func CanTransition(from, to models.CompanyStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == models.StatusRejected {
		return from != models.StatusDraft
	}
	return forward[from] == to
}

// NextStatuses lists the statuses reachable from s, excluding s itself.
func NextStatuses(s models.CompanyStatus) []models.CompanyStatus {
	var out []models.CompanyStatus
	for _, to := range models.CompanyStatuses {
		if to != s && CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}

func validStatus(s models.CompanyStatus) bool {
	for _, known := range models.CompanyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// checkTransition enforces the table when strict transitions are enabled.
func (c *Controller) checkTransition(op string, from, to models.CompanyStatus) error {
	if !c.opts.StrictTransitions || CanTransition(from, to) {
		return nil
	}
	return models.WrapError(models.ErrInvalidTransition, op, fmt.Errorf("%s to %s", from, to))
}
