package request

type ReconcileRequest struct {
	PropertyID string `json:"propertyId,omitempty"`
	FromDate   string `json:"fromDate,omitempty"`
	ToDate     string `json:"toDate,omitempty"`
	Cleanup    bool   `json:"cleanup"`
	Validate   bool   `json:"validate"`
}
