package domain

var affiliateTransitions = map[string][]string{
	AffiliateNotApplied:       {AffiliatePending},
	AffiliatePending:          {AffiliateReviewed, AffiliateRejected},
	AffiliateReviewed:         {AffiliateTrustFeePending, AffiliateRejected},
	AffiliateTrustFeePending:  {AffiliatePaid, AffiliateRejected},
	AffiliatePaid:             {AffiliateContactCollected, AffiliateRejected},
	AffiliateContactCollected: {AffiliateApproved, AffiliateRejected},
	AffiliateRejected:         {AffiliatePending},
}

var applicantTransitions = map[string][]string{
	ApplicantPending:     {ApplicantReviewed, ApplicantShortlisted, ApplicantRejected},
	ApplicantReviewed:    {ApplicantShortlisted, ApplicantRejected},
	ApplicantShortlisted: {ApplicantApproved, ApplicantRejected},
	ApplicantApproved:    {ApplicantAccepted, ApplicantRejected},
}

func allowed(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckAffiliateTransition returns a *TransitionError when from -> to is not part of the program flow.
func CheckAffiliateTransition(from, to string) error {
	if from == "" {
		from = AffiliateNotApplied
	}
	if !allowed(affiliateTransitions, from, to) {
		return &TransitionError{Entity: "affiliate application", From: from, To: to}
	}
	return nil
}

func CheckApplicantTransition(from, to string) error {
	if !allowed(applicantTransitions, from, to) {
		return &TransitionError{Entity: "applicant", From: from, To: to}
	}
	return nil
}

func IsApplicantStatus(s string) bool {
	switch s {
	case ApplicantPending, ApplicantReviewed, ApplicantShortlisted, ApplicantApproved, ApplicantAccepted, ApplicantRejected:
		return true
	}
	return false
}

func IsAffiliateStatus(s string) bool {
	switch s {
	case AffiliateNotApplied, AffiliatePending, AffiliateReviewed, AffiliateTrustFeePending,
		AffiliatePaid, AffiliateContactCollected, AffiliateApproved, AffiliateRejected:
		return true
	}
	return false
}
