package dto

type AuthAttestRequest struct {
	AttestRef string `json:"attest_ref"`
	Handle    string `json:"handle"`
}

type CreateListingRequest struct {
	PropertyAttestRef string `json:"property_attest_ref"`
	Address           string `json:"address"`
	Rent              int64  `json:"rent"`
	Deposit           int64  `json:"deposit"`
	GraceDays         int    `json:"grace_days"`
}

type UpdateListingRequest struct {
	Rent      *int64 `json:"rent"`
	Deposit   *int64 `json:"deposit"`
	GraceDays *int   `json:"grace_days"`
}

type ApplyRequest struct {
	ListingID       string `json:"listing_id"`
	TenantAttestRef string `json:"tenant_attest_ref"`
	OfferRent       int64  `json:"offer_rent"`
	OfferDeposit    int64  `json:"offer_deposit"`
	Message         string `json:"message"`
}

type CounterOfferRequest struct {
	OfferRent    int64 `json:"offer_rent"`
	OfferDeposit int64 `json:"offer_deposit"`
}

type SignLeaseRequest struct {
	ApplicationID string `json:"application_id"`
	StartDate     int64  `json:"start_date"`
	EndDate       int64  `json:"end_date"`
	PaymentDay    int    `json:"payment_day"`
	TotalPayments int    `json:"total_payments"`
}

type PayRentRequest struct {
	PaymentIndex int `json:"payment_index"`
}

type TerminateLeaseRequest struct {
	Reason string `json:"reason"`
}

type InitiateReleaseRequest struct {
	ToLandlord int64 `json:"to_landlord"`
	ToTenant   int64 `json:"to_tenant"`
}

type RequestSettleRequest struct {
	TotalDeductions int64 `json:"total_deductions"`
	DeductionCount  int   `json:"deduction_count"`
}

type RaiseDisputeRequest struct {
	Reason string `json:"reason"`
}

type ResolveDisputeRequest struct {
	ToLandlord int64  `json:"to_landlord"`
	ToTenant   int64  `json:"to_tenant"`
	Note       string `json:"note"`
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}
