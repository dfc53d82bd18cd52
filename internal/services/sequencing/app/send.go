package app

import (
	"context"
	"fmt"

	apperrors "sequent.dev/internal/platform/errors"
	"sequent.dev/internal/services/sequencing/domain"
)

// SendInvitation delivers the participant's stored draft and marks the
// participant sent (follow_up_sent for a follow-up draft). Delivery is a
// single attempt; a failed send leaves status and store untouched.
func (o *Outreach) SendInvitation(ctx context.Context, participantID string) (domain.Participant, error) {
	if o == nil || o.sequencing == nil {
		return domain.Participant{}, domain.ErrStoreNotConfigured
	}
	if o.sender == nil {
		return domain.Participant{}, ErrSenderNotConfigured
	}

	participant, err := o.sequencing.Participant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, err
	}
	if participant.Draft == nil {
		return domain.Participant{}, apperrors.WithMetadata(apperrors.CodeDraftMissing, "participant "+participant.ID+" has no stored draft", map[string]string{"participant_id": participant.ID})
	}

	if err := o.sender.Send(ctx, participant.Email, participant.Draft.Subject, participant.Draft.Body); err != nil {
		return domain.Participant{}, fmt.Errorf("send invitation to %s: %w", participant.ID, err)
	}

	status := domain.StatusSent
	if participant.Draft.FollowUp {
		status = domain.StatusFollowUpSent
	}
	return o.sequencing.SetStatus(ctx, domain.SetStatusInput{
		ParticipantID: participant.ID,
		Status:        string(status),
	})
}
