package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LegalStructure is the French company form chosen at intake.
type LegalStructure string

const (
	StructureSAS              LegalStructure = "sas"
	StructureSASU             LegalStructure = "sasu"
	StructureSARL             LegalStructure = "sarl"
	StructureEURL             LegalStructure = "eurl"
	StructureAutoEntrepreneur LegalStructure = "auto_entrepreneur"
)

// LegalStructures lists every structure in display order.
var LegalStructures = []LegalStructure{
	StructureSAS, StructureSASU, StructureSARL, StructureEURL, StructureAutoEntrepreneur,
}

// ActivityDomain is the closed list of business sectors offered by the wizard.
type ActivityDomain string

const (
	DomainConsultingFreelance ActivityDomain = "consulting_freelance"
	DomainITWeb               ActivityDomain = "it_web"
	DomainServicesEntreprises ActivityDomain = "services_entreprises"
	DomainConstruction        ActivityDomain = "construction_travaux"
	DomainAutomobileTransport ActivityDomain = "automobile_transport"
	DomainVenteEnLigne        ActivityDomain = "vente_en_ligne"
	DomainCommerce            ActivityDomain = "commerce"
	DomainAchatRevente        ActivityDomain = "achat_revente"
	DomainRestauration        ActivityDomain = "restauration"
	DomainServicesPersonne    ActivityDomain = "services_personne"
	DomainOther               ActivityDomain = "other"
)

var ActivityDomains = []ActivityDomain{
	DomainConsultingFreelance, DomainITWeb, DomainServicesEntreprises, DomainConstruction,
	DomainAutomobileTransport, DomainVenteEnLigne, DomainCommerce, DomainAchatRevente,
	DomainRestauration, DomainServicesPersonne, DomainOther,
}

// CompanyStatus is the position of an application in the incorporation lifecycle.
type CompanyStatus string

const (
	StatusDraft             CompanyStatus = "draft"
	StatusPendingPayment    CompanyStatus = "pending_payment"
	StatusPaid              CompanyStatus = "paid"
	StatusDocumentsPending  CompanyStatus = "documents_pending"
	StatusDocumentsUploaded CompanyStatus = "documents_uploaded"
	StatusUnderReview       CompanyStatus = "under_review"
	StatusSubmittedToGreffe CompanyStatus = "submitted_to_greffe"
	StatusCompleted         CompanyStatus = "completed"
	StatusRejected          CompanyStatus = "rejected"
)

// CompanyStatuses lists statuses in lifecycle order, rejected last.
var CompanyStatuses = []CompanyStatus{
	StatusDraft, StatusPendingPayment, StatusPaid, StatusDocumentsPending,
	StatusDocumentsUploaded, StatusUnderReview, StatusSubmittedToGreffe,
	StatusCompleted, StatusRejected,
}

// Terminal reports whether no transition leaves s.
func (s CompanyStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Wizard steps.
const (
	FirstStep = 1
	LastStep  = 5
)

// Associate is a co-holder of shares, stored inline on the company.
type Associate struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	SharePercentage int    `json:"share_percentage" validate:"gte=0,lte=100"`
	BirthDate       string `json:"birth_date,omitempty" validate:"max=20"`
	BirthPlace      string `json:"birth_place,omitempty" validate:"max=255"`
	Nationality     string `json:"nationality,omitempty" validate:"max=100"`
	Address         string `json:"address,omitempty" validate:"max=500"`
}

// Company is one incorporation request, from intake draft to registration.
type Company struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID *uint  `gorm:"index" json:"user_id,omitempty"`

	Name                string         `gorm:"size:255;not null" json:"name"`
	LegalStructure      LegalStructure `gorm:"size:32;not null" json:"legal_structure"`
	ActivityDomain      ActivityDomain `gorm:"size:32;not null" json:"activity_domain"`
	ActivityDescription string         `gorm:"type:text" json:"activity_description,omitempty"`

	Status      CompanyStatus `gorm:"size:32;not null;default:draft;index" json:"status"`
	CurrentStep int           `gorm:"not null;default:1" json:"current_step"`

	ContactEmail string `gorm:"size:255;not null;index" json:"contact_email"`
	ContactPhone string `gorm:"size:50" json:"contact_phone,omitempty"`

	Address       string `gorm:"size:500" json:"address,omitempty"`
	PostalCode    string `gorm:"size:20" json:"postal_code,omitempty"`
	City          string `gorm:"size:100" json:"city,omitempty"`
	CapitalAmount *int   `json:"capital_amount,omitempty"`

	PresidentFirstName   string `gorm:"size:100" json:"president_first_name,omitempty"`
	PresidentLastName    string `gorm:"size:100" json:"president_last_name,omitempty"`
	PresidentBirthDate   string `gorm:"size:20" json:"president_birth_date,omitempty"`
	PresidentBirthPlace  string `gorm:"size:255" json:"president_birth_place,omitempty"`
	PresidentNationality string `gorm:"size:100" json:"president_nationality,omitempty"`
	PresidentAddress     string `gorm:"size:500" json:"president_address,omitempty"`

	Associates []Associate `gorm:"type:text;serializer:json" json:"associates,omitempty"`

	PaymentIntentID string     `gorm:"size:255" json:"payment_intent_id,omitempty"`
	Amount          *int64     `json:"amount,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Documents []Document `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a random id when none is set.
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// GetUserID implements the Ownable interface. Unowned companies report 0.
func (c *Company) GetUserID() uint {
	if c.UserID == nil {
		return 0
	}
	return *c.UserID
}

// Owned reports whether an account has been linked to the company.
func (c *Company) Owned() bool { return c.UserID != nil }

// OwnedBy reports whether userID is the linked account.
func (c *Company) OwnedBy(userID uint) bool {
	return c.UserID != nil && userID != 0 && *c.UserID == userID
}
