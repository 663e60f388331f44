package enums

import "fmt"

// CustomProductStatus tracks a configurator-built hat through fulfillment.
type CustomProductStatus string

const (
	CustomProductStatusDraft      CustomProductStatus = "draft"
	CustomProductStatusInProgress CustomProductStatus = "in-progress"
	CustomProductStatusReview     CustomProductStatus = "review"
	CustomProductStatusApproved   CustomProductStatus = "approved"
	CustomProductStatusProduction CustomProductStatus = "production"
	CustomProductStatusCompleted  CustomProductStatus = "completed"
	CustomProductStatusShipped    CustomProductStatus = "shipped"
	CustomProductStatusCancelled  CustomProductStatus = "cancelled"
)

var validCustomProductStatuses = []CustomProductStatus{
	CustomProductStatusDraft,
	CustomProductStatusInProgress,
	CustomProductStatusReview,
	CustomProductStatusApproved,
	CustomProductStatusProduction,
	CustomProductStatusCompleted,
	CustomProductStatusShipped,
	CustomProductStatusCancelled,
}

// String implements fmt.Stringer.
func (s CustomProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CustomProductStatus.
func (s CustomProductStatus) IsValid() bool {
	for _, candidate := range validCustomProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCustomProductStatus converts raw input into a CustomProductStatus.
func ParseCustomProductStatus(value string) (CustomProductStatus, error) {
	for _, candidate := range validCustomProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid custom product status %q", value)
}
