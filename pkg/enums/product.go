package enums

import "fmt"

// ProductType groups storefront products for shop filtering.
type ProductType string

const (
	ProductTypeBucketHat ProductType = "Bucket Hat"
	ProductTypeBeanie    ProductType = "Beanie"
	ProductTypeSkiMask   ProductType = "Ski Mask"
	ProductTypeCustom    ProductType = "Custom"
	ProductTypeOther     ProductType = "Other"
)

var validProductTypes = []ProductType{
	ProductTypeBucketHat,
	ProductTypeBeanie,
	ProductTypeSkiMask,
	ProductTypeCustom,
	ProductTypeOther,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// HatType is the silhouette of a base hat; customization categories declare
// which hat types they are compatible with.
type HatType string

const (
	HatTypeBucketHat   HatType = "bucket-hat"
	HatTypeBeanie      HatType = "beanie"
	HatTypeSkiMask     HatType = "ski-mask"
	HatTypeBaseballCap HatType = "baseball-cap"
	HatTypeOther       HatType = "other"
)

var validHatTypes = []HatType{
	HatTypeBucketHat,
	HatTypeBeanie,
	HatTypeSkiMask,
	HatTypeBaseballCap,
	HatTypeOther,
}

// String implements fmt.Stringer.
func (h HatType) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HatType.
func (h HatType) IsValid() bool {
	for _, candidate := range validHatTypes {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHatType converts raw input into a HatType.
func ParseHatType(value string) (HatType, error) {
	for _, candidate := range validHatTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hat type %q", value)
}
