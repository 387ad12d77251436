// Package models contains the record and match group types used by the
// identity resolution engine.
package models

// EntityKind identifies which record variant a resolution run operates on.
type EntityKind string

const (
	EntityKindContact EntityKind = "contacts"
	EntityKindAccount EntityKind = "accounts"
)

// ContactRecord is a contact row from the warehouse CONTACTS table.
// Optional fields are empty strings, never null, so similarity functions
// stay total over dirty data.
type ContactRecord struct {
	ContactID    string `json:"contact_id" db:"contact_id"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
	MobilePhone  string `json:"mobile_phone" db:"mobile_phone"`
	ContactType  string `json:"contact_type" db:"contact_type"`
	AccountID    string `json:"account_id" db:"account_id"`
	JobTitle     string `json:"job_title" db:"job_title"`
	Department   string `json:"department" db:"department"`
	AddressLine1 string `json:"address_line1" db:"address_line1"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
	ZipCode      string `json:"zip_code" db:"zip_code"`
	Status       string `json:"status" db:"status"`
}

// AccountRecord is an account row from the warehouse ACCOUNTS table.
type AccountRecord struct {
	AccountID       string  `json:"account_id" db:"account_id"`
	AccountName     string  `json:"account_name" db:"account_name"`
	AccountType     string  `json:"account_type" db:"account_type"`
	ParentAccountID string  `json:"parent_account_id" db:"parent_account_id"`
	Segment         string  `json:"segment" db:"segment"`
	Address         string  `json:"address" db:"address"`
	City            string  `json:"city" db:"city"`
	State           string  `json:"state" db:"state"`
	ZipCode         string  `json:"zip_code" db:"zip_code"`
	Country         string  `json:"country" db:"country"`
	Phone           string  `json:"phone" db:"phone"`
	Email           string  `json:"email" db:"email"`
	AnnualRevenue   float64 `json:"annual_revenue" db:"annual_revenue"`
	EmployeeCount   int     `json:"employee_count" db:"employee_count"`
	EnterpriseID    string  `json:"enterprise_id" db:"enterprise_id"`
	Status          string  `json:"status" db:"status"`
}

// Segment names used by the business rule engine. Contact segments come
// from the contact type column; account segments are derived from revenue
// and headcount.
const (
	SegmentConsumer   = "Consumer"
	SegmentBusiness   = "Business"
	SegmentPartner    = "Partner"
	SegmentEnterprise = "Enterprise"
	SegmentMidMarket  = "Mid-Market"
	SegmentSMB        = "SMB"
)
