package domain

// ApplicationStatus is the lifecycle state of an Application.
type ApplicationStatus string

const (
	StatusPending             ApplicationStatus = "PENDING"
	StatusSuccessful          ApplicationStatus = "SUCCESSFUL"
	StatusUnsuccessful        ApplicationStatus = "UNSUCCESSFUL"
	StatusBooked              ApplicationStatus = "BOOKED"
	StatusWithdrawn           ApplicationStatus = "WITHDRAWN"
	StatusWithdrawalRequested ApplicationStatus = "WITHDRAWAL_REQUESTED"
)

// Active reports whether the status occupies the applicant's single
// application slot.
func (s ApplicationStatus) Active() bool {
	return s != StatusUnsuccessful && s != StatusWithdrawn
}

// Application is an applicant's request for a flat type in a project.
// It is keyed by ApplicantNRIC: an applicant has at most one record.
type Application struct {
	ApplicantNRIC string            `json:"applicant_nric"`
	ProjectName   string            `json:"project_name"`
	FlatType      string            `json:"flat_type"`
	Status        ApplicationStatus `json:"status"`

	// PreviousStatus is the status a rejected withdrawal request restores.
	PreviousStatus ApplicationStatus `json:"previous_status,omitempty"`

	// UnitHeld is true while the application holds a reserved unit.
	UnitHeld bool `json:"unit_held"`
}

// Active reports whether the application occupies the applicant's slot.
func (a Application) Active() bool { return a.Status.Active() }

// Receipt is the booking confirmation issued by an officer.
type Receipt struct {
	ApplicantNRIC string        `json:"applicant_nric"`
	ApplicantName string        `json:"applicant_name"`
	Age           int           `json:"age"`
	MaritalStatus MaritalStatus `json:"marital_status"`
	ProjectName   string        `json:"project_name"`
	Neighborhood  string        `json:"neighborhood"`
	FlatType      string        `json:"flat_type"`
	Price         int64         `json:"price"`
}

// RegistrationStatus is the state of an officer's request to handle a project.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// OfficerRegistration is keyed by (OfficerNRIC, ProjectName).
type OfficerRegistration struct {
	OfficerNRIC string             `json:"officer_nric"`
	ProjectName string             `json:"project_name"`
	Status      RegistrationStatus `json:"status"`
}

// Active reports whether the registration is pending or approved.
func (r OfficerRegistration) Active() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationApproved
}
