// Package model defines the deal, expense, and team records the metrics
// engine computes over.
package model

// OperationStatus is the lifecycle state of a deal.
type OperationStatus string

const (
	StatusInProgress OperationStatus = "in_progress"
	StatusClosed     OperationStatus = "closed"
	StatusFallen     OperationStatus = "fallen"
)

// IsTerminal reports whether the status can no longer change.
func (s OperationStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusFallen
}

// OperationType classifies a deal.
type OperationType string

const (
	TypeSale              OperationType = "sale"
	TypePurchase          OperationType = "purchase"
	TypeTraditionalRental OperationType = "traditional_rental"
	TypeTemporaryRental   OperationType = "temporary_rental"
	TypeCommercialRental  OperationType = "commercial_rental"
	TypeBusinessFund      OperationType = "business_fund"
	TypeDevelopment       OperationType = "development"
	TypeGarage            OperationType = "garage"
	TypeSubdivision       OperationType = "subdivision"
	TypeDevelopmentLots   OperationType = "development_lots"
)

// OperationTypes lists every operation type in display order.
var OperationTypes = []OperationType{
	TypeSale,
	TypePurchase,
	TypeTraditionalRental,
	TypeTemporaryRental,
	TypeCommercialRental,
	TypeBusinessFund,
	TypeDevelopment,
	TypeGarage,
	TypeSubdivision,
	TypeDevelopmentLots,
}

var operationTypeLabels = map[OperationType]string{
	TypeSale:              "Sale",
	TypePurchase:          "Purchase",
	TypeTraditionalRental: "Traditional Rental",
	TypeTemporaryRental:   "Temporary Rental",
	TypeCommercialRental:  "Commercial Rental",
	TypeBusinessFund:      "Business Fund",
	TypeDevelopment:       "Development",
	TypeGarage:            "Garage",
	TypeSubdivision:       "Subdivision",
	TypeDevelopmentLots:   "Development Lots",
}

// Label returns the display name, or the raw value for unknown types.
func (t OperationType) Label() string {
	if l, ok := operationTypeLabels[t]; ok {
		return l
	}
	if t == "" {
		return "Unspecified"
	}
	return string(t)
}

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	_, ok := operationTypeLabels[t]
	return ok
}

// IsRental reports whether t is one of the rental types.
func (t OperationType) IsRental() bool {
	switch t {
	case TypeTraditionalRental, TypeTemporaryRental, TypeCommercialRental:
		return true
	}
	return false
}

// IsSaleOrPurchase reports whether property type applies to t.
func (t OperationType) IsSaleOrPurchase() bool {
	return t == TypeSale || t == TypePurchase
}

// PropertyType describes the property of a sale or purchase.
type PropertyType string

const (
	PropertyHouse               PropertyType = "house"
	PropertyPH                  PropertyType = "ph"
	PropertyApartment           PropertyType = "apartment"
	PropertyCommercialPremises  PropertyType = "commercial_premises"
	PropertyOffice              PropertyType = "office"
	PropertyIndustrialWarehouse PropertyType = "industrial_warehouse"
	PropertyLand                PropertyType = "land"
	PropertyUnspecified         PropertyType = "unspecified"
)

// OrUnspecified maps the empty property type to PropertyUnspecified.
func (p PropertyType) OrUnspecified() PropertyType {
	if p == "" {
		return PropertyUnspecified
	}
	return p
}

// Operation is one real-estate deal. Percentages are 0-100; absent values
// are zero. StoredGrossFee and StoredNetFee are whatever the recording form
// saved and are never read by the engine.
type Operation struct {
	ID           string          `json:"id" yaml:"id"`
	OwnerID      string          `json:"owner_id" yaml:"owner_id"`
	DealValue    float64         `json:"deal_value" yaml:"deal_value"`
	Type         OperationType   `json:"type" yaml:"type"`
	PropertyType PropertyType    `json:"property_type,omitempty" yaml:"property_type,omitempty"`
	Status       OperationStatus `json:"status" yaml:"status"`

	CaptureDate          Date `json:"capture_date" yaml:"capture_date"`
	ReservationDate      Date `json:"reservation_date" yaml:"reservation_date"`
	ClosingDate          Date `json:"closing_date" yaml:"closing_date"`
	RentalExpirationDate Date `json:"rental_expiration_date" yaml:"rental_expiration_date"`

	BuyerSide     bool    `json:"buyer_side" yaml:"buyer_side"`
	SellerSide    bool    `json:"seller_side" yaml:"seller_side"`
	BuyerSidePct  float64 `json:"buyer_side_pct" yaml:"buyer_side_pct"`
	SellerSidePct float64 `json:"seller_side_pct" yaml:"seller_side_pct"`

	Exclusive    bool `json:"exclusive" yaml:"exclusive"`
	NonExclusive bool `json:"non_exclusive" yaml:"non_exclusive"`

	BrokerageRate   float64 `json:"brokerage_rate" yaml:"brokerage_rate"`
	AdvisorSharePct float64 `json:"advisor_share_pct" yaml:"advisor_share_pct"`
	AdvisorID       string  `json:"advisor_id,omitempty" yaml:"advisor_id,omitempty"`

	AdditionalAdvisorID       string  `json:"additional_advisor_id,omitempty" yaml:"additional_advisor_id,omitempty"`
	AdditionalAdvisorSharePct float64 `json:"additional_advisor_share_pct" yaml:"additional_advisor_share_pct"`

	ReferralID   string  `json:"referral_id,omitempty" yaml:"referral_id,omitempty"`
	ReferralPct  float64 `json:"referral_pct" yaml:"referral_pct"`
	SharedWith   string  `json:"shared_with,omitempty" yaml:"shared_with,omitempty"`
	SharedPct    float64 `json:"shared_pct" yaml:"shared_pct"`
	FranchisePct float64 `json:"franchise_pct" yaml:"franchise_pct"`

	ListingNotMine bool    `json:"listing_not_mine" yaml:"listing_not_mine"`
	Expenses       float64 `json:"expenses" yaml:"expenses"`
	FallenReason   string  `json:"fallen_reason,omitempty" yaml:"fallen_reason,omitempty"`

	StoredGrossFee float64 `json:"stored_gross_fee" yaml:"stored_gross_fee"`
	StoredNetFee   float64 `json:"stored_net_fee" yaml:"stored_net_fee"`
}

// HasTwoAdvisors reports whether a distinct second advisor took part.
func (o Operation) HasTwoAdvisors() bool {
	return o.AdvisorID != "" && o.AdditionalAdvisorID != "" && o.AdvisorID != o.AdditionalAdvisorID
}

// SidesRepresented counts the buyer and seller sides the agency represented.
func (o Operation) SidesRepresented() int {
	n := 0
	if o.BuyerSide {
		n++
	}
	if o.SellerSide {
		n++
	}
	return n
}

// EventDate is the date that places a terminal deal on the calendar: the
// closing date, falling back to the reservation date.
func (o Operation) EventDate() Date {
	if o.ClosingDate.Present() {
		return o.ClosingDate
	}
	return o.ReservationDate
}
